package main

import (
	"fmt"

	"github.com/kailas-cloud/solrsync/internal/config"
	"github.com/kailas-cloud/solrsync/internal/domain/index"
)

// buildRegistry turns the enabled index configurations into definitions.
func buildRegistry(indexes []config.IndexConfig) (*index.Registry, error) {
	defs := make([]*index.Definition, 0, len(indexes))
	for _, ic := range indexes {
		def, err := index.New(ic.Name, ic.Classes)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", ic.Name, err)
		}

		facets := make([]index.Facet, 0, len(ic.Facets))
		for _, f := range ic.Facets {
			facets = append(facets, index.Facet{Class: f.Class, Field: f.Field, Title: f.Title})
		}

		def.SetFulltextFields(ic.FulltextFields...).
			SetSortFields(ic.SortFields...).
			SetFilterFields(ic.FilterFields...).
			SetFacets(facets...).
			SetBoostedFields(ic.Boosts).
			SetReturnFields(ic.ReturnFields...)
		defs = append(defs, def)
	}

	reg, err := index.NewRegistry(defs...)
	if err != nil {
		return nil, fmt.Errorf("build index registry: %w", err)
	}
	return reg, nil
}
