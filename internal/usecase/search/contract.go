package search

import (
	"context"

	"github.com/kailas-cloud/solrsync/internal/domain/index"
	"github.com/kailas-cloud/solrsync/internal/domain/search/query"
	"github.com/kailas-cloud/solrsync/internal/solr"
)

// Engine runs compiled queries against Solr.
type Engine interface {
	Select(ctx context.Context, q *solr.SelectQuery) (*solr.Response, error)
}

// IndexResolver looks up configured indexes by name.
type IndexResolver interface {
	Get(name string) (*index.Definition, error)
}

// QueryAlterer adjusts a query before it is built, e.g. to scope it to the
// current site state. It receives a private copy of the caller's query.
type QueryAlterer interface {
	AlterQuery(q *query.Query)
}
