package indexsync

import (
	"context"

	"github.com/kailas-cloud/solrsync/internal/domain/index"
	"github.com/kailas-cloud/solrsync/internal/solr"
)

// Updater submits update commands to Solr.
type Updater interface {
	Update(ctx context.Context, req *solr.UpdateRequest) (solr.UpdateResult, error)
}

// IndexResolver resolves the enabled index definitions.
type IndexResolver interface {
	All() []*index.Definition
	Resolve(name string) ([]*index.Definition, error)
}
