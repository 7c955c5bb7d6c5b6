// Package filter holds the fq clauses a search query narrows results with.
package filter

import (
	"fmt"
	"slices"
	"strings"
)

// MaxConditionsPerGroup caps each boolean group so a single request cannot
// exceed Solr's maxBooleanClauses.
const MaxConditionsPerGroup = 32

// Expression groups conditions by how they combine: every must condition
// applies, at least one should condition applies, no must-not condition applies.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates group sizes and creates an Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	for _, g := range []struct {
		name  string
		conds []Condition
	}{{"must", must}, {"should", should}, {"must_not", mustNot}} {
		if len(g.conds) > MaxConditionsPerGroup {
			return Expression{}, fmt.Errorf("too many %s conditions (max %d)", g.name, MaxConditionsPerGroup)
		}
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

func (e Expression) Must() []Condition    { return e.must }
func (e Expression) Should() []Condition  { return e.should }
func (e Expression) MustNot() []Condition { return e.mustNot }

// Conditions returns every condition in must, should, must-not order.
func (e Expression) Conditions() []Condition {
	return slices.Concat(e.must, e.should, e.mustNot)
}

// With returns a copy with the extra conditions appended to each group.
func (e Expression) With(must, should, mustNot []Condition) (Expression, error) {
	return NewExpression(
		slices.Concat(e.must, must),
		slices.Concat(e.should, should),
		slices.Concat(e.mustNot, mustNot),
	)
}

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Condition restricts one index field, either to a set of accepted values or
// to a range.
type Condition struct {
	field  string
	values []string
	bounds *Range
}

// NewMatch creates a condition satisfied when field equals any of values.
func NewMatch(field string, values ...string) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if len(values) == 0 || slices.Contains(values, "") {
		return Condition{}, fmt.Errorf("match value is required for field %q", field)
	}
	return Condition{field: field, values: slices.Clone(values)}, nil
}

// NewRange creates a range condition over field.
func NewRange(field string, r Range) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	return Condition{field: field, bounds: &r}, nil
}

// Field returns the index field name as configured, before Solr renaming.
func (c Condition) Field() string { return c.field }

// Values returns a copy of the accepted match values.
func (c Condition) Values() []string { return slices.Clone(c.values) }

// Range returns the bounds of a range condition, nil for a match.
func (c Condition) Range() *Range { return c.bounds }

func (c Condition) IsMatch() bool { return len(c.values) > 0 }
func (c Condition) IsRange() bool { return c.bounds != nil }

// Bound is one end of a Range. The zero Bound is open (Solr's "*").
type Bound struct {
	value     string
	inclusive bool
}

// Inclusive returns a bound that admits value itself.
func Inclusive(value string) Bound { return Bound{value: value, inclusive: true} }

// Exclusive returns a bound that stops short of value.
func Exclusive(value string) Bound { return Bound{value: value} }

// Value returns the raw bound, a number or a Solr date expression.
func (b Bound) Value() string { return b.value }

func (b Bound) Inclusive() bool { return b.inclusive }
func (b Bound) IsOpen() bool    { return b.value == "" }

// Range bounds a numeric or date field, e.g. [10 TO *] or {NOW-7DAYS TO NOW].
type Range struct {
	lower Bound
	upper Bound
}

// NewRangeFilter validates the bounds and creates a Range. At least one bound
// must be closed.
func NewRangeFilter(lower, upper Bound) (Range, error) {
	if lower.IsOpen() && upper.IsOpen() {
		return Range{}, fmt.Errorf("at least one range bound is required")
	}
	for _, b := range []Bound{lower, upper} {
		if err := validateBound(b); err != nil {
			return Range{}, err
		}
	}
	return Range{lower: lower, upper: upper}, nil
}

func (r Range) Lower() Bound { return r.lower }
func (r Range) Upper() Bound { return r.upper }

// validateBound rejects values that would break out of the [a TO b] syntax.
func validateBound(b Bound) error {
	if b.IsOpen() {
		return nil
	}
	if b.value == "*" {
		return fmt.Errorf("range bound %q: leave the bound empty for an open range", b.value)
	}
	if strings.ContainsAny(b.value, " \t\n[]{}\"\\") {
		return fmt.Errorf("range bound %q contains reserved characters", b.value)
	}
	return nil
}
