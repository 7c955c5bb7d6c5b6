package index

import (
	"fmt"

	"github.com/kailas-cloud/solrsync/internal/domain"
)

// Registry holds the enabled index definitions by name.
type Registry struct {
	byName map[string]*Definition
	order  []*Definition
}

// NewRegistry creates a registry. Duplicate names are rejected.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if _, dup := r.byName[d.Name()]; dup {
			return nil, fmt.Errorf("duplicate index %q", d.Name())
		}
		r.byName[d.Name()] = d
		r.order = append(r.order, d)
	}
	return r, nil
}

// Get returns the definition with the given name.
func (r *Registry) Get(name string) (*Definition, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, domain.NewUnknownIndex(name)
	}
	return d, nil
}

// All returns every enabled definition in configuration order.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns all definitions when name is empty, or the named one.
func (r *Registry) Resolve(name string) ([]*Definition, error) {
	if name == "" {
		return r.All(), nil
	}
	d, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return []*Definition{d}, nil
}
