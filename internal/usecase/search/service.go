package search

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrsync/internal/domain"
	"github.com/kailas-cloud/solrsync/internal/domain/index"
	"github.com/kailas-cloud/solrsync/internal/domain/search/query"
	"github.com/kailas-cloud/solrsync/internal/domain/search/result"
	"github.com/kailas-cloud/solrsync/internal/metrics"
	"github.com/kailas-cloud/solrsync/internal/solr"
)

var fuzzinessPattern = regexp.MustCompile(`~\d+`)

// Service executes structured queries, retrying once with Solr's collated
// spellcheck suggestion when the first attempt warrants it.
type Service struct {
	engine   Engine
	indexes  IndexResolver
	alterers []QueryAlterer
	logger   *zap.Logger
}

// New creates a search service.
func New(engine Engine, indexes IndexResolver, logger *zap.Logger, alterers ...QueryAlterer) *Service {
	return &Service{engine: engine, indexes: indexes, alterers: alterers, logger: logger}
}

// Search runs q against the named index. The caller's query is never modified.
func (s *Service) Search(ctx context.Context, indexName string, q *query.Query) (result.Set, error) {
	def, err := s.indexes.Get(indexName)
	if err != nil {
		return result.Set{}, fmt.Errorf("resolve index: %w", err)
	}

	work := q.Clone()
	for _, a := range s.alterers {
		a.AlterQuery(work)
	}

	set, err := s.execute(ctx, def, work, false)
	if err != nil {
		metrics.SearchTotal.WithLabelValues(def.Name(), "error").Inc()
		return result.Set{}, err
	}
	metrics.SearchTotal.WithLabelValues(def.Name(), "success").Inc()
	return set, nil
}

// execute runs one attempt. retried is true only inside the single retry.
func (s *Service) execute(
	ctx context.Context, def *index.Definition, q *query.Query, retried bool,
) (result.Set, error) {
	compiled, err := Build(q, def)
	if err != nil {
		return result.Set{}, fmt.Errorf("build query: %w", err)
	}

	start := time.Now()
	resp, err := s.engine.Select(ctx, compiled)
	if err != nil {
		s.logger.Error("Search request failed",
			zap.String("index", def.Name()),
			zap.Strings("terms", compiled.Terms()),
			zap.Bool("retry", retried),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return result.Set{}, fmt.Errorf("%w: index %q: %w", domain.ErrRemoteQuery, def.Name(), err)
	}

	set := wrap(resp, compiled, def)
	if !shouldRetry(q, retried, set) {
		return set, nil
	}

	collation := set.Collation()
	corrected := fuzzinessPattern.ReplaceAllString(collation, "")

	s.logger.Debug("Retrying search with spellcheck collation",
		zap.String("index", def.Name()),
		zap.Strings("terms", compiled.Terms()),
		zap.String("collation", collation),
		zap.Int64("hits", set.Total()),
	)
	metrics.SpellcheckRetriesTotal.WithLabelValues(def.Name()).Inc()

	retry, err := s.execute(ctx, def, q.WithFirstTermText(corrected), true)
	if err != nil {
		return result.Set{}, err
	}
	return retry.AsRetry(collation), nil
}

// shouldRetry holds when no retry ran yet, spellchecking is on, the caller
// follows suggestions or nothing matched, and Solr offered a collation.
func shouldRetry(q *query.Query, retried bool, set result.Set) bool {
	return !retried &&
		q.HasSpellcheck() &&
		(q.ShouldFollowSpellcheck() || set.Total() == 0) &&
		set.Collation() != ""
}

func wrap(resp *solr.Response, compiled *solr.SelectQuery, def *index.Definition) result.Set {
	docs := make([]result.Document, 0, len(resp.Result.Docs))
	for _, d := range resp.Result.Docs {
		docs = append(docs, result.Document(d))
	}

	set := result.New(resp.Result.NumFound, docs).
		WithTerms(compiled.Terms()).
		WithHighlights(resp.Highlights)

	if facets := def.Facets(); len(facets) > 0 {
		byTitle := make(map[string][]result.FacetValue, len(facets))
		for _, f := range facets {
			title := f.Title
			if title == "" {
				title = f.Field
			}
			for _, v := range resp.FacetCounts.Field(solr.FieldName(f.Field)) {
				byTitle[title] = append(byTitle[title], result.FacetValue{Value: v.Value, Count: v.Count})
			}
		}
		set = set.WithFacets(byTitle)
	}

	if compiled.Spellcheck {
		set = set.WithCollation(resp.Spellcheck.Collation())
	}
	return set
}
