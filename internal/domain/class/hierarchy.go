// Package class resolves object class ancestry for index applicability.
package class

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// minCacheSize bounds memoized ancestries when few classes are configured.
// Unknown class names arrive from hook callers, so the memo is an LRU.
const minCacheSize = 256

// Hierarchy maps every class to its parent and memoizes ancestor lists.
// Safe for concurrent use.
type Hierarchy struct {
	parents map[string]string
	cache   *lru.Cache[string, []string]
}

// NewHierarchy creates a hierarchy from a child -> parent map.
// Root classes are either absent from the map or mapped to "".
func NewHierarchy(parents map[string]string) *Hierarchy {
	p := make(map[string]string, len(parents))
	for child, parent := range parents {
		p[child] = parent
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, []string](max(minCacheSize, 2*len(p)))
	return &Hierarchy{parents: p, cache: cache}
}

// Ancestry returns the class followed by its ancestors, nearest first.
// The walk stops at a root or at the first repeated class.
func (h *Hierarchy) Ancestry(class string) []string {
	if cached, ok := h.cache.Get(class); ok {
		return slices.Clone(cached)
	}

	chain := []string{class}
	seen := map[string]struct{}{class: {}}
	for current := class; ; current = chain[len(chain)-1] {
		parent, ok := h.parents[current]
		if !ok || parent == "" {
			break
		}
		if _, dup := seen[parent]; dup {
			break
		}
		seen[parent] = struct{}{}
		chain = append(chain, parent)
	}

	h.cache.Add(class, chain)
	return slices.Clone(chain)
}

// Intersect returns the declared classes that appear in the ancestry of class,
// in declaration order.
func (h *Hierarchy) Intersect(class string, declared []string) []string {
	ancestry := h.Ancestry(class)
	set := make(map[string]struct{}, len(ancestry))
	for _, c := range ancestry {
		set[c] = struct{}{}
	}
	var out []string
	for _, c := range declared {
		if _, ok := set[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Covers reports whether any declared class is class itself or one of its ancestors.
func (h *Hierarchy) Covers(class string, declared []string) bool {
	return len(h.Intersect(class, declared)) > 0
}
