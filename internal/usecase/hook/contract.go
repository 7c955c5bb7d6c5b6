package hook

import (
	"context"

	"github.com/kailas-cloud/solrsync/internal/domain"
	domdirty "github.com/kailas-cloud/solrsync/internal/domain/dirty"
	"github.com/kailas-cloud/solrsync/internal/domain/object"
	"github.com/kailas-cloud/solrsync/internal/solr"
)

// Syncer pushes object mutations to the index.
type Syncer interface {
	Sync(
		ctx context.Context, items []object.Object, op domain.Operation, indexName string, mode object.ReadingMode,
	) (solr.UpdateResult, error)
	IsValidClass(className string) bool
}

// DirtyStore keeps the ids whose last sync failed.
type DirtyStore interface {
	GetOrCreate(ctx context.Context, class string, op domain.Operation) (domdirty.Record, error)
	RemoveIdentifier(ctx context.Context, rec domdirty.Record, id int64) (domdirty.Record, error)
	AppendIdentifier(ctx context.Context, rec domdirty.Record, id int64) (domdirty.Record, error)
}
