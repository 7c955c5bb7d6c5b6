package chi

import (
	"context"

	"github.com/kailas-cloud/solrsync/internal/domain"
	domdirty "github.com/kailas-cloud/solrsync/internal/domain/dirty"
	"github.com/kailas-cloud/solrsync/internal/domain/object"
	"github.com/kailas-cloud/solrsync/internal/domain/search/query"
	"github.com/kailas-cloud/solrsync/internal/domain/search/result"
	"github.com/kailas-cloud/solrsync/internal/solr"
	healthuc "github.com/kailas-cloud/solrsync/internal/usecase/health"
)

// ChangeHook receives object lifecycle events.
type ChangeHook interface {
	OnCreate(ctx context.Context, obj object.Object) error
	OnUpdate(ctx context.Context, obj object.Object) error
	OnPublish(ctx context.Context, obj object.Object) error
	OnDelete(ctx context.Context, obj object.Object) error
	Reindex(ctx context.Context, obj object.Object) error
	SetSuppressed(on bool)
	ShouldPush() bool
}

// Syncer pushes explicit batches to the index.
type Syncer interface {
	Sync(
		ctx context.Context, items []object.Object, op domain.Operation, indexName string, mode object.ReadingMode,
	) (solr.UpdateResult, error)
}

// Searcher runs structured queries.
type Searcher interface {
	Search(ctx context.Context, indexName string, q *query.Query) (result.Set, error)
}

// DirtyReader reads dirty records without creating them.
type DirtyReader interface {
	Get(ctx context.Context, class string, op domain.Operation) (domdirty.Record, error)
	List(ctx context.Context) ([]domdirty.Record, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
