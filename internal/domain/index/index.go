package index

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Facet describes a facetable field and the title facet counts are reported under.
type Facet struct {
	Class string
	Field string
	Title string
}

// Definition is the configuration of one named Solr core.
type Definition struct {
	name         string
	classes      []string
	fulltext     []string
	sort         []string
	filter       []string
	facets       []Facet
	boosts       map[string]int
	returnFields []string
}

// New creates an index definition. At least one class is required.
func New(name string, classes []string) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if !nameRegex.MatchString(name) {
		return nil, fmt.Errorf("index name %q must match [a-zA-Z0-9_-]+", name)
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("index %q: at least one class is required", name)
	}
	return &Definition{name: name, classes: slices.Clone(classes)}, nil
}

// Name returns the core name.
func (d *Definition) Name() string { return d.name }

// Classes returns the declared classes.
func (d *Definition) Classes() []string { return slices.Clone(d.classes) }

// FulltextFields returns the fields searched by free text.
func (d *Definition) FulltextFields() []string { return slices.Clone(d.fulltext) }

// SortFields returns the sortable fields.
func (d *Definition) SortFields() []string { return slices.Clone(d.sort) }

// FilterFields returns the filterable fields.
func (d *Definition) FilterFields() []string { return slices.Clone(d.filter) }

// Facets returns the facet definitions.
func (d *Definition) Facets() []Facet { return slices.Clone(d.facets) }

// BoostedFields returns the query-time boost per field.
func (d *Definition) BoostedFields() map[string]int { return maps.Clone(d.boosts) }

// ReturnFields returns the stored fields requested from Solr.
func (d *Definition) ReturnFields() []string { return slices.Clone(d.returnFields) }

// AddClass declares another class as part of the index.
func (d *Definition) AddClass(class string) *Definition {
	if !slices.Contains(d.classes, class) {
		d.classes = append(d.classes, class)
	}
	return d
}

// SetFulltextFields replaces the fulltext field list.
func (d *Definition) SetFulltextFields(fields ...string) *Definition {
	d.fulltext = slices.Clone(fields)
	return d
}

// SetSortFields replaces the sort field list.
func (d *Definition) SetSortFields(fields ...string) *Definition {
	d.sort = slices.Clone(fields)
	return d
}

// SetFilterFields replaces the filter field list.
func (d *Definition) SetFilterFields(fields ...string) *Definition {
	d.filter = slices.Clone(fields)
	return d
}

// SetFacets replaces the facet definitions.
func (d *Definition) SetFacets(facets ...Facet) *Definition {
	d.facets = slices.Clone(facets)
	return d
}

// SetBoostedFields replaces the query-time boosts.
func (d *Definition) SetBoostedFields(boosts map[string]int) *Definition {
	d.boosts = maps.Clone(boosts)
	return d
}

// SetReturnFields replaces the stored fields requested from Solr.
func (d *Definition) SetReturnFields(fields ...string) *Definition {
	d.returnFields = slices.Clone(fields)
	return d
}

// FieldsForIndexing returns the deduplicated union of fulltext, sort,
// facet and filter fields, in that order.
func (d *Definition) FieldsForIndexing() []string {
	facetFields := make([]string, 0, len(d.facets))
	for _, f := range d.facets {
		facetFields = append(facetFields, f.Field)
	}

	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]string{d.fulltext, d.sort, facetFields, d.filter} {
		for _, f := range list {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// IsFilterable reports whether field can be used in a filter query.
// Indexes without declared filter or facet fields accept any field.
func (d *Definition) IsFilterable(field string) bool {
	if len(d.filter) == 0 && len(d.facets) == 0 {
		return true
	}
	if slices.Contains(d.filter, field) {
		return true
	}
	for _, f := range d.facets {
		if f.Field == field {
			return true
		}
	}
	return false
}

// IsSortable reports whether field can be sorted on.
// Indexes without declared sort fields accept any field.
func (d *Definition) IsSortable(field string) bool {
	if len(d.sort) == 0 {
		return true
	}
	return field == "score" || slices.Contains(d.sort, field)
}
