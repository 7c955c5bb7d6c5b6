package search

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/solrsync/internal/domain"
	"github.com/kailas-cloud/solrsync/internal/domain/index"
	"github.com/kailas-cloud/solrsync/internal/domain/search/filter"
	"github.com/kailas-cloud/solrsync/internal/domain/search/query"
	"github.com/kailas-cloud/solrsync/internal/solr"
)

var defaultReturnFields = []string{"*", "score"}

// Build compiles q into a select query for def's core. It performs no I/O and
// yields an equivalent result when called twice with the same input.
func Build(q *query.Query, def *index.Definition) (*solr.SelectQuery, error) {
	if err := validate(q, def); err != nil {
		return nil, err
	}

	boosts := def.BoostedFields()
	var terms []string
	var raw []string
	for _, t := range q.Terms() {
		terms = append(terms, formatTerm(t, boosts)...)
		if !t.IsBlank() {
			raw = append(raw, strings.TrimSpace(t.Text()))
		}
	}

	sq := solr.NewSelectQuery(def.Name(), terms)
	sq.Filters = buildFilters(q.Filter())
	sq.Start = q.Start()
	sq.Rows = q.Rows()

	for _, s := range q.Sorts() {
		sq.Sorts = append(sq.Sorts, solr.FieldName(s.Field)+" "+string(s.Direction))
	}

	tagged := make(map[string]bool)
	for _, c := range q.FacetFilters() {
		name := solr.FieldName(c.Field())
		tagged[name] = true
		sq.Filters = append(sq.Filters, "{!tag="+name+"}"+buildMatch(name, c.Values()))
	}

	for _, f := range def.Facets() {
		name := solr.FieldName(f.Field)
		if tagged[name] {
			name = "{!ex=" + name + "}" + name
		}
		sq.FacetFields = append(sq.FacetFields, name)
	}
	sq.FacetMinCount = q.FacetsMinCount()

	for _, f := range q.Highlight() {
		sq.Highlight = append(sq.Highlight, solr.FieldName(f))
	}

	sq.Fields = q.Fields()
	if len(sq.Fields) == 0 {
		sq.Fields = def.ReturnFields()
	}
	if len(sq.Fields) == 0 {
		sq.Fields = slices.Clone(defaultReturnFields)
	}

	if q.HasSpellcheck() {
		sq.Spellcheck = true
		sq.SpellcheckQuery = strings.Join(raw, " ")
	}

	return sq, nil
}

// formatTerm renders a term as its main clause followed by one boosted
// clause per term field and per index-level boosted field.
func formatTerm(t query.Term, indexBoosts map[string]int) []string {
	text := solr.EscapeText(t.Text())
	if text == "" {
		return nil
	}

	main := text
	if t.Fuzziness() > 0 {
		main += "~" + strconv.Itoa(t.Fuzziness())
	}
	out := []string{main}

	grouped := text
	if strings.ContainsAny(text, " \t") {
		grouped = "(" + text + ")"
	}

	seen := make(map[string]bool)
	if t.Boost() > 0 {
		for _, f := range t.Fields() {
			if seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, fmt.Sprintf("%s:%s^%d", solr.FieldName(f), grouped, t.Boost()))
		}
	}

	fields := make([]string, 0, len(indexBoosts))
	for f, w := range indexBoosts {
		if w > 0 && !seen[f] {
			fields = append(fields, f)
		}
	}
	slices.Sort(fields)
	for _, f := range fields {
		out = append(out, fmt.Sprintf("%s:%s^%d", solr.FieldName(f), grouped, indexBoosts[f]))
	}
	return out
}

// buildFilters renders every must condition and must-not condition as its own
// fq, so Solr caches them independently; should conditions share one fq.
func buildFilters(expr filter.Expression) []string {
	if expr.IsEmpty() {
		return nil
	}

	var fqs []string
	for _, cond := range expr.Must() {
		fqs = append(fqs, buildCondition(cond))
	}

	if should := buildShouldGroup(expr.Should()); should != "" {
		fqs = append(fqs, should)
	}

	for _, cond := range expr.MustNot() {
		fqs = append(fqs, "-"+buildCondition(cond))
	}
	return fqs
}

func buildCondition(cond filter.Condition) string {
	name := solr.FieldName(cond.Field())
	if cond.IsMatch() {
		return buildMatch(name, cond.Values())
	}
	if cond.IsRange() {
		return buildRange(name, *cond.Range())
	}
	return ""
}

func buildShouldGroup(conditions []filter.Condition) string {
	if len(conditions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(conditions))
	for _, cond := range conditions {
		parts = append(parts, buildCondition(cond))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func buildMatch(name string, values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, solr.EscapePhrase(v))
	}
	return name + ":(" + strings.Join(quoted, " OR ") + ")"
}

func buildRange(name string, r filter.Range) string {
	lower, upper := r.Lower(), r.Upper()

	from := "[*"
	if !lower.IsOpen() {
		from = openBracket(lower.Inclusive()) + lower.Value()
	}
	to := "*]"
	if !upper.IsOpen() {
		to = upper.Value() + closeBracket(upper.Inclusive())
	}
	return name + ":" + from + " TO " + to
}

func openBracket(inclusive bool) string {
	if inclusive {
		return "["
	}
	return "{"
}

func closeBracket(inclusive bool) string {
	if inclusive {
		return "]"
	}
	return "}"
}

func validate(q *query.Query, def *index.Definition) error {
	for _, c := range slices.Concat(q.Filter().Conditions(), q.FacetFilters()) {
		if !def.IsFilterable(c.Field()) {
			return fmt.Errorf("%w: field %q is not filterable in index %q",
				domain.ErrInvalidQuery, c.Field(), def.Name())
		}
	}
	for _, s := range q.Sorts() {
		if !def.IsSortable(s.Field) {
			return fmt.Errorf("%w: field %q is not sortable in index %q",
				domain.ErrInvalidQuery, s.Field, def.Name())
		}
	}
	return nil
}
