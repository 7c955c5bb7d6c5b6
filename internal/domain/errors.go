package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownIndex signals that a caller named an index that is not configured.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrRemoteSync signals that Solr rejected or failed to process a mutation.
	ErrRemoteSync = errors.New("remote sync failure")
	// ErrRemoteQuery signals that Solr rejected or failed a search request.
	ErrRemoteQuery = errors.New("remote query failure")
	// ErrMalformedDirtyRecord signals a persisted dirty id list that does not parse.
	ErrMalformedDirtyRecord = errors.New("malformed dirty record")
	// ErrInvalidQuery signals a structured query that cannot be compiled for an index.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidObject signals a changed object without identity.
	ErrInvalidObject = errors.New("invalid object")
	// ErrNoItems signals a sync call without any objects.
	ErrNoItems = errors.New("no items to sync")
	// ErrInvalidOperation signals an unsupported operation type.
	ErrInvalidOperation = errors.New("invalid operation")
)

// UnknownIndexError wraps ErrUnknownIndex with the requested index name.
type UnknownIndexError struct {
	Name string
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownIndex.Error(), e.Name)
}

func (e *UnknownIndexError) Unwrap() error { return ErrUnknownIndex }

// NewUnknownIndex creates an unknown index error.
func NewUnknownIndex(name string) error {
	return &UnknownIndexError{Name: name}
}
