package chi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/solrsync/internal/domain"
	domdirty "github.com/kailas-cloud/solrsync/internal/domain/dirty"
	"github.com/kailas-cloud/solrsync/internal/domain/object"
	"github.com/kailas-cloud/solrsync/internal/domain/search/filter"
	"github.com/kailas-cloud/solrsync/internal/domain/search/query"
	"github.com/kailas-cloud/solrsync/internal/domain/search/result"
)

// ObjectRequest is a changed object as reported by the object store.
type ObjectRequest struct {
	ID           int64          `json:"id"`
	Class        string         `json:"class"`
	ShowInSearch *bool          `json:"show_in_search,omitempty"`
	Values       map[string]any `json:"values"`
	Live         map[string]any `json:"live,omitempty"` // set for versioned objects
}

// SyncRequest is the body of an explicit sync call.
type SyncRequest struct {
	Type  string          `json:"type"`
	Items []ObjectRequest `json:"items"`
}

// SyncResponse reports the last Solr update result.
type SyncResponse struct {
	Status int `json:"status"`
	QTime  int `json:"qtime"`
}

// TermRequest is one free-text term.
type TermRequest struct {
	Text      string   `json:"text"`
	Fields    []string `json:"fields,omitempty"`
	Boost     int      `json:"boost,omitempty"`
	Fuzziness int      `json:"fuzziness,omitempty"`
}

// FilterRequest matches a field against any of the values.
type FilterRequest struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// RangeRequest bounds a numeric or date field.
type RangeRequest struct {
	Field string      `json:"field"`
	GT    *RangeValue `json:"gt,omitempty"`
	GTE   *RangeValue `json:"gte,omitempty"`
	LT    *RangeValue `json:"lt,omitempty"`
	LTE   *RangeValue `json:"lte,omitempty"`
}

// RangeValue is a range bound sent either as a JSON number or as a string
// such as "2024-01-01T00:00:00Z" or "NOW-7DAYS".
type RangeValue string

func (v *RangeValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = RangeValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("range bound must be a number or a string: %w", err)
	}
	*v = RangeValue(n.String())
	return nil
}

func rangeFromRequest(rr RangeRequest) (filter.Range, error) {
	if rr.GT != nil && rr.GTE != nil {
		return filter.Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if rr.LT != nil && rr.LTE != nil {
		return filter.Range{}, fmt.Errorf("cannot specify both lt and lte")
	}

	var lower, upper filter.Bound
	switch {
	case rr.GT != nil:
		lower = filter.Exclusive(string(*rr.GT))
	case rr.GTE != nil:
		lower = filter.Inclusive(string(*rr.GTE))
	}
	switch {
	case rr.LT != nil:
		upper = filter.Exclusive(string(*rr.LT))
	case rr.LTE != nil:
		upper = filter.Inclusive(string(*rr.LTE))
	}
	return filter.NewRangeFilter(lower, upper)
}

// SortRequest orders results by a field.
type SortRequest struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// SearchRequest is a structured query.
type SearchRequest struct {
	Terms            []TermRequest   `json:"terms"`
	Filters          []FilterRequest `json:"filters,omitempty"`
	Excludes         []FilterRequest `json:"excludes,omitempty"`
	Ranges           []RangeRequest  `json:"ranges,omitempty"`
	FacetFilters     []FilterRequest `json:"facet_filters,omitempty"`
	FacetsMinCount   *int            `json:"facets_min_count,omitempty"`
	Sort             []SortRequest   `json:"sort,omitempty"`
	Highlight        []string        `json:"highlight,omitempty"`
	Fields           []string        `json:"fields,omitempty"`
	Start            int             `json:"start,omitempty"`
	Rows             *int            `json:"rows,omitempty"`
	Spellcheck       *bool           `json:"spellcheck,omitempty"`
	FollowSpellcheck bool            `json:"follow_spellcheck,omitempty"`
}

// SearchResponse is the result of a search.
type SearchResponse struct {
	Total      int64                           `json:"total"`
	Documents  []result.Document               `json:"documents"`
	Facets     map[string][]FacetValueResponse `json:"facets,omitempty"`
	Highlights map[string]map[string][]string  `json:"highlights,omitempty"`
	Collation  string                          `json:"collation,omitempty"`
	Terms      []string                        `json:"terms"`
	IsRetry    bool                            `json:"is_retry"`
}

// FacetValueResponse is one facet bucket.
type FacetValueResponse struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DirtyResponse lists the ids pending reconciliation.
type DirtyResponse struct {
	Class string  `json:"class"`
	Type  string  `json:"type"`
	IDs   []int64 `json:"ids"`
}

// DirtyListResponse lists every record with pending ids.
type DirtyListResponse struct {
	Records []DirtyResponse `json:"records"`
}

func dirtyResponse(rec domdirty.Record) DirtyResponse {
	ids := rec.IDs()
	if ids == nil {
		ids = []int64{}
	}
	return DirtyResponse{Class: rec.Class(), Type: string(rec.Operation()), IDs: ids}
}

// MaintenanceRequest toggles push suppression.
type MaintenanceRequest struct {
	Suppress bool `json:"suppress"`
}

// MaintenanceResponse reports the current suppression state.
type MaintenanceResponse struct {
	Suppressed bool `json:"suppressed"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	SolrVersion string            `json:"solr_version,omitempty"`
}

func objectFromRequest(req ObjectRequest) (object.Object, error) {
	obj, err := object.New(req.ID, req.Class, req.Values)
	if err != nil {
		return object.Object{}, err //nolint:wrapcheck // already carries ErrInvalidObject
	}
	if req.ShowInSearch != nil {
		obj = obj.WithShowInSearch(*req.ShowInSearch)
	}
	if req.Live != nil {
		obj = obj.WithLive(req.Live)
	}
	return obj, nil
}

func queryFromRequest(req SearchRequest) (*query.Query, error) {
	q := query.New()

	for i, t := range req.Terms {
		if strings.TrimSpace(t.Text) == "" {
			return nil, fmt.Errorf("%w: terms[%d]: text is required", domain.ErrInvalidQuery, i)
		}
		term := query.NewTerm(t.Text).WithFuzziness(t.Fuzziness)
		if t.Boost > 0 {
			term = term.WithBoost(t.Boost, t.Fields...)
		}
		q.AddTerm(term)
	}

	for _, f := range req.Filters {
		if err := q.AddFilter(f.Field, f.Values...); err != nil {
			return nil, fmt.Errorf("filters: %w", err)
		}
	}
	for _, f := range req.Excludes {
		if err := q.AddExclude(f.Field, f.Values...); err != nil {
			return nil, fmt.Errorf("excludes: %w", err)
		}
	}
	for _, rr := range req.Ranges {
		r, err := rangeFromRequest(rr)
		if err != nil {
			return nil, fmt.Errorf("%w: ranges: %w", domain.ErrInvalidQuery, err)
		}
		if err := q.AddRange(rr.Field, r); err != nil {
			return nil, fmt.Errorf("ranges: %w", err)
		}
	}
	for _, f := range req.FacetFilters {
		if err := q.AddFacetFilter(f.Field, f.Values...); err != nil {
			return nil, fmt.Errorf("facet_filters: %w", err)
		}
	}
	if req.FacetsMinCount != nil {
		q.SetFacetsMinCount(*req.FacetsMinCount)
	}

	for _, s := range req.Sort {
		dir := query.Direction(s.Direction)
		if s.Direction == "" {
			dir = query.Asc
		}
		if err := q.AddSort(s.Field, dir); err != nil {
			return nil, fmt.Errorf("sort: %w", err)
		}
	}

	for _, h := range req.Highlight {
		q.AddHighlight(h)
	}
	if len(req.Fields) > 0 {
		q.SetFields(req.Fields...)
	}

	rows := query.DefaultRows
	if req.Rows != nil {
		rows = *req.Rows
	}
	if err := q.SetPaging(req.Start, rows); err != nil {
		return nil, fmt.Errorf("paging: %w", err)
	}

	if req.Spellcheck != nil {
		q.SetSpellcheck(*req.Spellcheck)
	}
	q.SetFollowSpellcheck(req.FollowSpellcheck)
	return q, nil
}

func searchResponseFromSet(set result.Set) SearchResponse {
	resp := SearchResponse{
		Total:      set.Total(),
		Documents:  set.Documents(),
		Highlights: set.Highlights(),
		Collation:  set.Collation(),
		Terms:      set.Terms(),
		IsRetry:    set.IsRetry(),
	}
	if resp.Documents == nil {
		resp.Documents = []result.Document{}
	}
	if facets := set.Facets(); len(facets) > 0 {
		resp.Facets = make(map[string][]FacetValueResponse, len(facets))
		for title, values := range facets {
			out := make([]FacetValueResponse, 0, len(values))
			for _, v := range values {
				out = append(out, FacetValueResponse{Value: v.Value, Count: v.Count})
			}
			resp.Facets[title] = out
		}
	}
	return resp
}
