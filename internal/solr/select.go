package solr

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// SelectQuery is the compiled, engine-native form of one search attempt.
type SelectQuery struct {
	Core            string
	Filters         []string
	Sorts           []string
	Fields          []string
	Start           int
	Rows            int
	FacetFields     []string
	FacetMinCount   int
	Highlight       []string
	Spellcheck      bool
	SpellcheckQuery string

	terms []string
}

// NewSelectQuery creates a query for core whose q parameter is the terms
// joined by single spaces.
func NewSelectQuery(core string, terms []string) *SelectQuery {
	return &SelectQuery{Core: core, terms: slices.Clone(terms)}
}

// Terms returns the flattened term strings in the order they were added.
func (q *SelectQuery) Terms() []string { return slices.Clone(q.terms) }

// Q returns the q parameter. A query without terms matches all documents.
func (q *SelectQuery) Q() string {
	if len(q.terms) == 0 {
		return MatchAll
	}
	return strings.Join(q.terms, " ")
}

// Params renders the select request parameters.
func (q *SelectQuery) Params() url.Values {
	p := url.Values{
		"q":     {q.Q()},
		"wt":    {"json"},
		"start": {strconv.Itoa(q.Start)},
		"rows":  {strconv.Itoa(q.Rows)},
	}
	if len(q.Filters) > 0 {
		p["fq"] = slices.Clone(q.Filters)
	}
	if len(q.Sorts) > 0 {
		p["sort"] = []string{strings.Join(q.Sorts, ",")}
	}
	if len(q.Fields) > 0 {
		p["fl"] = []string{strings.Join(q.Fields, ",")}
	}
	if len(q.FacetFields) > 0 {
		p["facet"] = []string{"true"}
		p["facet.field"] = slices.Clone(q.FacetFields)
		p["facet.mincount"] = []string{strconv.Itoa(q.FacetMinCount)}
	}
	if len(q.Highlight) > 0 {
		p["hl"] = []string{"true"}
		p["hl.fl"] = []string{strings.Join(q.Highlight, ",")}
	}
	if q.Spellcheck {
		p["spellcheck"] = []string{"true"}
		p["spellcheck.collate"] = []string{"true"}
		p["spellcheck.extendedResults"] = []string{"true"}
		if q.SpellcheckQuery != "" {
			p["spellcheck.q"] = []string{q.SpellcheckQuery}
		}
	}
	return p
}
