package query

import (
	"slices"
	"strings"
)

// Term is one free-text clause with optional per-field boosts and fuzziness.
type Term struct {
	text      string
	fields    []string
	boost     int
	fuzziness int
}

// NewTerm creates a plain term.
func NewTerm(text string) Term {
	return Term{text: text}
}

// WithBoost returns a copy boosting matches in the given fields by weight.
func (t Term) WithBoost(boost int, fields ...string) Term {
	t.boost = boost
	t.fields = slices.Clone(fields)
	return t
}

// WithFuzziness returns a copy allowing the given edit distance.
func (t Term) WithFuzziness(distance int) Term {
	t.fuzziness = max(distance, 0)
	return t
}

// Text returns the raw term text.
func (t Term) Text() string { return t.text }

// IsBlank reports whether the term has no searchable text.
func (t Term) IsBlank() bool { return strings.TrimSpace(t.text) == "" }

// Fields returns the boosted fields.
func (t Term) Fields() []string { return slices.Clone(t.fields) }

// Boost returns the boost weight, zero when unset.
func (t Term) Boost() int { return t.boost }

// Fuzziness returns the edit distance, zero when unset.
func (t Term) Fuzziness() int { return t.fuzziness }

func (t Term) clone() Term {
	t.fields = slices.Clone(t.fields)
	return t
}
