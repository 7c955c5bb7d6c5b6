package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status      Status
	Checks      map[string]CheckResult
	SolrVersion string
}

const (
	checkTimeout        = 3 * time.Second
	maxConcurrentChecks = 8
)

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	solr    SolrChecker
	cores   []string
	timeout time.Duration
}

// New creates a Service. solr can be nil; cores lists the Solr cores to ping.
func New(db DBPinger, solr SolrChecker, cores []string) *Service {
	return &Service{db: db, solr: solr, cores: cores, timeout: checkTimeout}
}

// Check runs health checks against all components concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu      sync.Mutex
		checks  = make(map[string]CheckResult)
		version string
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		checks[name] = resultOf(err)
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentChecks)
	s.run(ctx, &g, func(ctx context.Context) { record("database", s.db.Ping(ctx)) })
	if s.solr != nil {
		s.run(ctx, &g, func(ctx context.Context) {
			v, err := s.solr.Version(ctx)
			record("solr", err)
			if err == nil {
				mu.Lock()
				version = v
				mu.Unlock()
			}
		})
		for _, core := range s.cores {
			s.run(ctx, &g, func(ctx context.Context) { record("solr:"+core, s.solr.Ping(ctx, core)) })
		}
	}
	_ = g.Wait()

	return Report{Status: aggregate(checks), Checks: checks, SolrVersion: version}
}

func (s *Service) run(ctx context.Context, g *errgroup.Group, check func(context.Context)) {
	g.Go(func() error {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		check(ctx)
		return nil
	})
}

func resultOf(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}

// aggregate is Unhealthy only when every check failed.
func aggregate(checks map[string]CheckResult) Status {
	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}
	switch {
	case failed == len(checks):
		return Unhealthy
	case failed > 0:
		return Degraded
	}
	return Healthy
}
