package query

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/solrsync/internal/domain"
	"github.com/kailas-cloud/solrsync/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	q := New()
	if !q.HasSpellcheck() {
		t.Error("HasSpellcheck() = false, want true")
	}
	if q.ShouldFollowSpellcheck() {
		t.Error("ShouldFollowSpellcheck() = true, want false")
	}
	if q.FacetsMinCount() != DefaultFacetsMinCount {
		t.Errorf("FacetsMinCount() = %d", q.FacetsMinCount())
	}
	if q.Rows() != DefaultRows || q.Start() != 0 {
		t.Errorf("paging = %d/%d", q.Start(), q.Rows())
	}
	if !q.Filter().IsEmpty() {
		t.Error("Filter() should be empty")
	}
}

func TestQuery_TermOrder(t *testing.T) {
	q := New().
		AddTerm(NewTerm("cat").WithFuzziness(1)).
		AddTerm(NewTerm("dog").WithBoost(2, "Title"))

	terms := q.Terms()
	if len(terms) != 2 {
		t.Fatalf("len(Terms()) = %d", len(terms))
	}
	if terms[0].Text() != "cat" || terms[0].Fuzziness() != 1 {
		t.Errorf("terms[0] = %+v", terms[0])
	}
	if terms[1].Text() != "dog" || terms[1].Boost() != 2 || terms[1].Fields()[0] != "Title" {
		t.Errorf("terms[1] = %+v", terms[1])
	}
}

func TestQuery_FiltersAndExcludes(t *testing.T) {
	q := New()
	if err := q.AddFilter("Category", "news", "blog"); err != nil {
		t.Fatalf("AddFilter: %v", err)
	}
	if err := q.AddExclude("Author", "bot"); err != nil {
		t.Fatalf("AddExclude: %v", err)
	}
	r, _ := filter.NewRangeFilter(filter.Inclusive("1"), filter.Bound{})
	if err := q.AddRange("Price", r); err != nil {
		t.Fatalf("AddRange: %v", err)
	}

	f := q.Filter()
	if len(f.Must()) != 2 || len(f.MustNot()) != 1 {
		t.Errorf("must=%d mustNot=%d", len(f.Must()), len(f.MustNot()))
	}
}

func TestQuery_InvalidInputs(t *testing.T) {
	q := New()
	tests := []struct {
		name string
		err  error
	}{
		{"empty filter value", q.AddFilter("Category", "")},
		{"empty exclude field", q.AddExclude("", "x")},
		{"facet filter without values", q.AddFacetFilter("Category")},
		{"empty sort field", q.AddSort("", Asc)},
		{"bad direction", q.AddSort("Title", "sideways")},
		{"negative start", q.SetPaging(-1, 10)},
		{"rows over max", q.SetPaging(0, MaxRows+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, domain.ErrInvalidQuery) {
				t.Errorf("error = %v, want ErrInvalidQuery", tt.err)
			}
		})
	}
}

func TestQuery_HighlightDedup(t *testing.T) {
	q := New().AddHighlight("Content").AddHighlight("Content").AddHighlight("")
	if got := q.Highlight(); len(got) != 1 || got[0] != "Content" {
		t.Errorf("Highlight() = %v", got)
	}
}

func TestQuery_SetFacetsMinCountClamps(t *testing.T) {
	if got := New().SetFacetsMinCount(-3).FacetsMinCount(); got != 0 {
		t.Errorf("FacetsMinCount() = %d, want 0", got)
	}
}

func TestQuery_CloneIsDeep(t *testing.T) {
	q := New().AddTerm(NewTerm("cat").WithBoost(2, "Title")).SetFields("ID")
	_ = q.AddSort("Created", Desc)

	c := q.Clone()
	c.AddTerm(NewTerm("dog"))
	c.SetFields("Title")
	_ = c.AddSort("Title", Asc)
	c.terms[0].fields[0] = "Content"

	if len(q.Terms()) != 1 {
		t.Errorf("original terms = %d", len(q.Terms()))
	}
	if q.Terms()[0].Fields()[0] != "Title" {
		t.Error("clone shares term fields with the original")
	}
	if q.Fields()[0] != "ID" || len(q.Sorts()) != 1 {
		t.Error("clone shares slices with the original")
	}
}

func TestQuery_WithFirstTermText(t *testing.T) {
	q := New().
		AddTerm(NewTerm("cat").WithFuzziness(1).WithBoost(2, "Title")).
		AddTerm(NewTerm("food").WithFuzziness(1))

	r := q.WithFirstTermText("dog")

	got := r.Terms()[0]
	if got.Text() != "dog" || got.Fuzziness() != 0 {
		t.Errorf("retry term = %+v", got)
	}
	if got.Boost() != 2 || got.Fields()[0] != "Title" {
		t.Errorf("retry term lost its boost: %+v", got)
	}
	if r.Terms()[1].Fuzziness() != 1 {
		t.Error("second term changed")
	}
	if r.Terms()[1].Text() != "food" {
		t.Errorf("second term = %q", r.Terms()[1].Text())
	}
	if q.Terms()[0].Text() != "cat" {
		t.Error("WithFirstTermText mutated the original")
	}
}

func TestQuery_WithFirstTermText_SkipsBlankTerms(t *testing.T) {
	q := New().
		AddTerm(NewTerm("   ")).
		AddTerm(NewTerm("cta").WithFuzziness(1))

	r := q.WithFirstTermText("dog")

	terms := r.Terms()
	if len(terms) != 2 {
		t.Fatalf("Terms() = %+v", terms)
	}
	if !terms[0].IsBlank() {
		t.Errorf("blank term rewritten to %q", terms[0].Text())
	}
	if terms[1].Text() != "dog" || terms[1].Fuzziness() != 0 {
		t.Errorf("corrected term = %+v", terms[1])
	}
}

func TestQuery_WithFirstTermText_NoTerms(t *testing.T) {
	r := New().WithFirstTermText("dog")
	if len(r.Terms()) != 1 || r.Terms()[0].Text() != "dog" {
		t.Errorf("Terms() = %+v", r.Terms())
	}
}

func TestTerm_Immutable(t *testing.T) {
	base := NewTerm("cat")
	boosted := base.WithBoost(3, "Title", "Content")
	if base.Boost() != 0 || len(base.Fields()) != 0 {
		t.Error("WithBoost mutated the receiver")
	}
	if boosted.Boost() != 3 || len(boosted.Fields()) != 2 {
		t.Errorf("boosted = %+v", boosted)
	}
	if got := base.WithFuzziness(-1).Fuzziness(); got != 0 {
		t.Errorf("Fuzziness() = %d, want 0", got)
	}
}

