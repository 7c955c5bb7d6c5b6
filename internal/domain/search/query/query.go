// Package query holds the caller-built structured search intent.
package query

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/solrsync/internal/domain"
	"github.com/kailas-cloud/solrsync/internal/domain/search/filter"
)

const (
	// DefaultRows is the page size used when the caller sets none.
	DefaultRows = 10
	// MaxRows caps a single page.
	MaxRows = 1000
	// DefaultFacetsMinCount hides facet values without hits.
	DefaultFacetsMinCount = 1
)

// Direction is a sort direction.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "asc"
	// Desc sorts descending.
	Desc Direction = "desc"
)

// IsValid reports whether the direction is known.
func (d Direction) IsValid() bool { return d == Asc || d == Desc }

// Sort is one ordered sort clause.
type Sort struct {
	Field     string
	Direction Direction
}

// Query is a structured search request against one index.
// The zero value is not usable; create one with New.
type Query struct {
	terms            []Term
	filter           filter.Expression
	facetFilters     []filter.Condition
	facetsMinCount   int
	sorts            []Sort
	highlight        []string
	fields           []string
	start            int
	rows             int
	spellcheck       bool
	followSpellcheck bool
}

// New creates a query with spellchecking on and a facet minimum count of one.
func New() *Query {
	return &Query{
		facetsMinCount: DefaultFacetsMinCount,
		rows:           DefaultRows,
		spellcheck:     true,
	}
}

// AddTerm appends a free-text term. Term order is significant.
func (q *Query) AddTerm(t Term) *Query {
	q.terms = append(q.terms, t)
	return q
}

// Terms returns a copy of the terms in insertion order.
func (q *Query) Terms() []Term {
	out := make([]Term, len(q.terms))
	for i, t := range q.terms {
		out[i] = t.clone()
	}
	return out
}

// AddFilter narrows results to documents whose field matches any of the values.
func (q *Query) AddFilter(field string, values ...string) error {
	c, err := filter.NewMatch(field, values...)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return q.extend([]filter.Condition{c}, nil, nil)
}

// AddExclude removes documents whose field matches any of the values.
func (q *Query) AddExclude(field string, values ...string) error {
	c, err := filter.NewMatch(field, values...)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return q.extend(nil, nil, []filter.Condition{c})
}

// AddRange narrows results to a numeric range on field.
func (q *Query) AddRange(field string, r filter.Range) error {
	c, err := filter.NewRange(field, r)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return q.extend([]filter.Condition{c}, nil, nil)
}

// SetFilter replaces the whole filter expression.
func (q *Query) SetFilter(expr filter.Expression) *Query {
	q.filter = expr
	return q
}

// Filter returns the filter expression.
func (q *Query) Filter() filter.Expression { return q.filter }

func (q *Query) extend(must, should, mustNot []filter.Condition) error {
	expr, err := q.filter.With(must, should, mustNot)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	q.filter = expr
	return nil
}

// AddFacetFilter narrows results by a facet selection. Facet filters are
// tagged so facet counts still cover the unselected values.
func (q *Query) AddFacetFilter(field string, values ...string) error {
	c, err := filter.NewMatch(field, values...)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	q.facetFilters = append(q.facetFilters, c)
	return nil
}

// FacetFilters returns the facet selections.
func (q *Query) FacetFilters() []filter.Condition { return slices.Clone(q.facetFilters) }

// SetFacetsMinCount sets the minimum hit count for a facet value to be returned.
func (q *Query) SetFacetsMinCount(n int) *Query {
	q.facetsMinCount = max(n, 0)
	return q
}

// FacetsMinCount returns the facet minimum count.
func (q *Query) FacetsMinCount() int { return q.facetsMinCount }

// AddSort appends a sort clause.
func (q *Query) AddSort(field string, dir Direction) error {
	if field == "" {
		return fmt.Errorf("%w: sort field is required", domain.ErrInvalidQuery)
	}
	if !dir.IsValid() {
		return fmt.Errorf("%w: invalid sort direction %q", domain.ErrInvalidQuery, dir)
	}
	q.sorts = append(q.sorts, Sort{Field: field, Direction: dir})
	return nil
}

// Sorts returns the sort clauses in order.
func (q *Query) Sorts() []Sort { return slices.Clone(q.sorts) }

// AddHighlight requests highlighting for a field.
func (q *Query) AddHighlight(field string) *Query {
	if field != "" && !slices.Contains(q.highlight, field) {
		q.highlight = append(q.highlight, field)
	}
	return q
}

// Highlight returns the highlighted fields.
func (q *Query) Highlight() []string { return slices.Clone(q.highlight) }

// SetFields sets the fields returned per document.
func (q *Query) SetFields(fields ...string) *Query {
	q.fields = slices.Clone(fields)
	return q
}

// Fields returns the requested return fields.
func (q *Query) Fields() []string { return slices.Clone(q.fields) }

// SetPaging sets the page window.
func (q *Query) SetPaging(start, rows int) error {
	if start < 0 {
		return fmt.Errorf("%w: start must be non-negative, got %d", domain.ErrInvalidQuery, start)
	}
	if rows < 0 || rows > MaxRows {
		return fmt.Errorf("%w: rows must be between 0 and %d, got %d", domain.ErrInvalidQuery, MaxRows, rows)
	}
	q.start, q.rows = start, rows
	return nil
}

// Start returns the offset of the first hit.
func (q *Query) Start() int { return q.start }

// Rows returns the page size.
func (q *Query) Rows() int { return q.rows }

// SetSpellcheck toggles spellchecking.
func (q *Query) SetSpellcheck(on bool) *Query {
	q.spellcheck = on
	return q
}

// HasSpellcheck reports whether spellchecking is requested.
func (q *Query) HasSpellcheck() bool { return q.spellcheck }

// SetFollowSpellcheck makes the search retry with the collation even when hits exist.
func (q *Query) SetFollowSpellcheck(on bool) *Query {
	q.followSpellcheck = on
	return q
}

// ShouldFollowSpellcheck reports whether collations are followed regardless of hits.
func (q *Query) ShouldFollowSpellcheck() bool { return q.followSpellcheck }

// Clone returns a deep copy.
func (q *Query) Clone() *Query {
	c := *q
	c.terms = q.Terms()
	c.facetFilters = slices.Clone(q.facetFilters)
	c.sorts = slices.Clone(q.sorts)
	c.highlight = slices.Clone(q.highlight)
	c.fields = slices.Clone(q.fields)
	return &c
}

// WithFirstTermText returns a copy whose first non-blank term carries a
// corrected text. The corrected text is exact, so the term's fuzziness is
// dropped; its boosts are kept. A query without searchable terms gains a
// plain term.
func (q *Query) WithFirstTermText(text string) *Query {
	c := q.Clone()
	i := slices.IndexFunc(c.terms, func(t Term) bool { return !t.IsBlank() })
	if i < 0 {
		c.terms = append(c.terms, NewTerm(text))
		return c
	}
	c.terms[i].text = text
	c.terms[i].fuzziness = 0
	return c
}
