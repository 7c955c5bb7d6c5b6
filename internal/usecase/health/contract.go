package health

import "context"

// DBPinger checks dirty store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SolrChecker checks Solr availability.
type SolrChecker interface {
	Version(ctx context.Context) (string, error)
	Ping(ctx context.Context, core string) error
}
