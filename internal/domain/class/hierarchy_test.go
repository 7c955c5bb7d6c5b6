package class

import (
	"fmt"
	"slices"
	"sync"
	"testing"
)

func testHierarchy() *Hierarchy {
	return NewHierarchy(map[string]string{
		"Page":        "SiteTree",
		"BlogPost":    "Page",
		"SiteTree":    "",
		"Article":     "DataObject",
		"VirtualPage": "Page",
	})
}

func TestAncestry(t *testing.T) {
	h := testHierarchy()
	tests := []struct {
		class string
		want  []string
	}{
		{"BlogPost", []string{"BlogPost", "Page", "SiteTree"}},
		{"SiteTree", []string{"SiteTree"}},
		{"Article", []string{"Article", "DataObject"}},
		{"Unregistered", []string{"Unregistered"}},
	}
	for _, tc := range tests {
		if got := h.Ancestry(tc.class); !slices.Equal(got, tc.want) {
			t.Errorf("Ancestry(%q) = %v, want %v", tc.class, got, tc.want)
		}
	}
}

func TestAncestry_CycleTerminates(t *testing.T) {
	h := NewHierarchy(map[string]string{"A": "B", "B": "C", "C": "A"})
	got := h.Ancestry("A")
	if !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("Ancestry(A) = %v", got)
	}
}

func TestAncestry_ReturnsCopy(t *testing.T) {
	h := testHierarchy()
	first := h.Ancestry("Page")
	first[0] = "mutated"
	if got := h.Ancestry("Page"); got[0] != "Page" {
		t.Errorf("cache mutated through returned slice: %v", got)
	}
}

func TestIntersect(t *testing.T) {
	h := testHierarchy()
	got := h.Intersect("BlogPost", []string{"Article", "SiteTree", "Page"})
	if !slices.Equal(got, []string{"SiteTree", "Page"}) {
		t.Errorf("Intersect = %v", got)
	}
	if h.Covers("Article", []string{"SiteTree"}) {
		t.Error("Article must not be covered by SiteTree")
	}
	if !h.Covers("VirtualPage", []string{"SiteTree"}) {
		t.Error("VirtualPage must be covered by SiteTree")
	}
}

func TestAncestry_Concurrent(t *testing.T) {
	h := testHierarchy()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := h.Ancestry("BlogPost"); len(got) != 3 {
				t.Errorf("Ancestry(BlogPost) = %v", got)
			}
		}()
	}
	wg.Wait()
}

func TestAncestry_CacheIsBounded(t *testing.T) {
	h := testHierarchy()
	for i := 0; i < 4*minCacheSize; i++ {
		h.Ancestry(fmt.Sprintf("Unknown%d", i))
	}
	if n := h.cache.Len(); n > minCacheSize {
		t.Errorf("cache holds %d entries, want at most %d", n, minCacheSize)
	}
	if got := h.Ancestry("BlogPost"); !slices.Equal(got, []string{"BlogPost", "Page", "SiteTree"}) {
		t.Errorf("Ancestry(BlogPost) after eviction = %v", got)
	}
}
