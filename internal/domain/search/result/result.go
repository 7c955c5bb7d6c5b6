// Package result holds what a search returns to its caller.
package result

import (
	"maps"
	"slices"
)

// Document is one returned Solr document keyed by field name.
type Document map[string]any

// FacetValue is one value of a facet with its hit count.
type FacetValue struct {
	Value string
	Count int
}

// Set is the outcome of one search call, including a spellcheck retry if one ran.
type Set struct {
	total      int64
	documents  []Document
	facets     map[string][]FacetValue
	highlights map[string]map[string][]string
	collation  string
	terms      []string
	isRetry    bool
}

// New creates a result set for total hits and the returned page.
func New(total int64, documents []Document) Set {
	return Set{total: total, documents: documents}
}

// WithFacets returns a copy carrying facet counts keyed by facet title.
func (s Set) WithFacets(facets map[string][]FacetValue) Set {
	s.facets = facets
	return s
}

// WithHighlights returns a copy carrying highlight snippets per document id and field.
func (s Set) WithHighlights(h map[string]map[string][]string) Set {
	s.highlights = h
	return s
}

// WithCollation returns a copy carrying the collated spellcheck suggestion.
func (s Set) WithCollation(collation string) Set {
	s.collation = collation
	return s
}

// WithTerms returns a copy recording the term strings sent to Solr.
func (s Set) WithTerms(terms []string) Set {
	s.terms = slices.Clone(terms)
	return s
}

// AsRetry returns a copy marked as the outcome of a spellcheck retry whose
// collation is the suggestion that triggered the retry.
func (s Set) AsRetry(originalCollation string) Set {
	s.isRetry = true
	s.collation = originalCollation
	return s
}

// Total returns the number of matching documents.
func (s Set) Total() int64 { return s.total }

// Documents returns the returned page.
func (s Set) Documents() []Document { return s.documents }

// Facets returns facet counts keyed by facet title.
func (s Set) Facets() map[string][]FacetValue { return maps.Clone(s.facets) }

// Highlights returns snippets per document id and field.
func (s Set) Highlights() map[string]map[string][]string { return s.highlights }

// Collation returns the collated spellcheck suggestion, if any.
func (s Set) Collation() string { return s.collation }

// Terms returns the term strings of the final attempt.
func (s Set) Terms() []string { return slices.Clone(s.terms) }

// IsRetry reports whether the set came from a spellcheck retry.
func (s Set) IsRetry() bool { return s.isRetry }
