// Package object models a changed record of the relational store as seen by the indexer.
package object

import (
	"fmt"
	"maps"

	"github.com/kailas-cloud/solrsync/internal/domain"
)

// ReadingMode selects which stage of a versioned object is read.
type ReadingMode string

const (
	// Draft reads the caller's working copy.
	Draft ReadingMode = "Stage"
	// Live reads the published copy.
	Live ReadingMode = "Live"
)

// Object is a changed record: identity, visibility and field values per stage.
type Object struct {
	id           int64
	class        string
	showInSearch *bool
	versioned    bool
	draft        map[string]any
	live         map[string]any
}

// New creates an object with its draft values.
func New(id int64, class string, values map[string]any) (Object, error) {
	if id <= 0 {
		return Object{}, fmt.Errorf("%w: id must be positive, got %d", domain.ErrInvalidObject, id)
	}
	if class == "" {
		return Object{}, fmt.Errorf("%w: class is required", domain.ErrInvalidObject)
	}
	return Object{id: id, class: class, draft: maps.Clone(values)}, nil
}

// WithShowInSearch returns a copy with the visibility flag set explicitly.
func (o Object) WithShowInSearch(show bool) Object {
	o.showInSearch = &show
	return o
}

// WithLive returns a copy marked as versioned with the given published values.
func (o Object) WithLive(values map[string]any) Object {
	o.versioned = true
	o.live = maps.Clone(values)
	return o
}

// ID returns the object identifier.
func (o Object) ID() int64 { return o.id }

// Class returns the concrete class name.
func (o Object) Class() string { return o.class }

// Versioned reports whether the object has separate draft and live stages.
func (o Object) Versioned() bool { return o.versioned }

// ShowInSearch returns the visibility flag; nil means unset.
func (o Object) ShowInSearch() *bool {
	if o.showInSearch == nil {
		return nil
	}
	v := *o.showInSearch
	return &v
}

// Hidden reports whether visibility is explicitly false. An unset flag is not hidden.
func (o Object) Hidden() bool {
	return o.showInSearch != nil && !*o.showInSearch
}

// Value reads a field under the given mode. Unversioned objects have a single
// stage, so Live falls back to the draft values.
func (o Object) Value(field string, mode ReadingMode) (any, bool) {
	values := o.draft
	if mode == Live && o.versioned {
		values = o.live
	}
	v, ok := values[field]
	return v, ok
}

// DocumentID returns the composite Solr key "{id}-{class}".
func (o Object) DocumentID() string {
	return DocumentID(o.id, o.class)
}

// DocumentID builds the composite Solr key shared by objects of different
// classes that live in one core.
func DocumentID(id int64, class string) string {
	return fmt.Sprintf("%d-%s", id, class)
}
