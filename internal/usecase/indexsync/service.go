// Package indexsync pushes object mutations to every Solr core whose classes
// cover the object's class hierarchy.
package indexsync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrsync/internal/domain"
	"github.com/kailas-cloud/solrsync/internal/domain/class"
	"github.com/kailas-cloud/solrsync/internal/domain/index"
	"github.com/kailas-cloud/solrsync/internal/domain/object"
	"github.com/kailas-cloud/solrsync/internal/metrics"
	"github.com/kailas-cloud/solrsync/internal/solr"
)

// Service builds and submits index mutations.
type Service struct {
	solr      Updater
	indexes   IndexResolver
	hierarchy *class.Hierarchy
	logger    *zap.Logger
}

// New creates an index sync service.
func New(updater Updater, indexes IndexResolver, hierarchy *class.Hierarchy, logger *zap.Logger) *Service {
	return &Service{solr: updater, indexes: indexes, hierarchy: hierarchy, logger: logger}
}

// Sync pushes items to the named index, or to every enabled index when
// indexName is empty. Items form a homogeneous batch: the class of the first
// item decides which indexes apply. Field values are read under mode.
// The result of the last submitted request is returned; the first remote
// failure aborts the call.
func (s *Service) Sync(
	ctx context.Context, items []object.Object, op domain.Operation, indexName string, mode object.ReadingMode,
) (solr.UpdateResult, error) {
	if !op.IsValid() {
		return solr.UpdateResult{}, fmt.Errorf("%w: %q", domain.ErrInvalidOperation, op)
	}
	if len(items) == 0 && op != domain.OpDeleteAll {
		return solr.UpdateResult{}, domain.ErrNoItems
	}

	candidates, err := s.indexes.Resolve(indexName)
	if err != nil {
		return solr.UpdateResult{}, fmt.Errorf("resolve index: %w", err)
	}

	var (
		last      solr.UpdateResult
		submitted int
	)
	for _, def := range candidates {
		if len(items) > 0 && !s.hierarchy.Covers(items[0].Class(), def.Classes()) {
			continue
		}

		req := s.buildRequest(def, items, op, mode)
		if req.IsEmpty() {
			continue
		}

		res, err := s.solr.Update(ctx, req)
		if err != nil {
			metrics.SyncTotal.WithLabelValues(string(op), "error").Inc()
			return solr.UpdateResult{}, fmt.Errorf("%w: index %q: %w", domain.ErrRemoteSync, def.Name(), err)
		}
		s.logger.Debug("Index updated",
			zap.String("index", def.Name()),
			zap.String("operation", string(op)),
			zap.Int("items", len(items)),
			zap.Int("qtime", res.QTime),
		)
		last = res
		submitted++
	}

	if submitted == 0 {
		metrics.SyncTotal.WithLabelValues(string(op), "skipped").Inc()
	} else {
		metrics.SyncTotal.WithLabelValues(string(op), "success").Inc()
	}
	return last, nil
}

// IsValidClass reports whether any enabled index covers class or one of its ancestors.
func (s *Service) IsValidClass(className string) bool {
	for _, def := range s.indexes.All() {
		if s.hierarchy.Covers(className, def.Classes()) {
			return true
		}
	}
	return false
}

// EffectiveOperation returns the operation actually sent for obj: an update of
// an object explicitly hidden from search becomes a delete.
func EffectiveOperation(obj object.Object, op domain.Operation) domain.Operation {
	if op == domain.OpUpdate && obj.Hidden() {
		return domain.OpDelete
	}
	return op
}

func (s *Service) buildRequest(
	def *index.Definition, items []object.Object, op domain.Operation, mode object.ReadingMode,
) *solr.UpdateRequest {
	req := &solr.UpdateRequest{Core: def.Name(), Commit: true}

	switch op {
	case domain.OpDeleteAll:
		req.DeleteQuery = solr.MatchAll
	case domain.OpDelete:
		for _, obj := range items {
			req.DeleteIDs = append(req.DeleteIDs, obj.DocumentID())
		}
	case domain.OpCreate, domain.OpUpdate:
		fields := def.FieldsForIndexing()
		for _, obj := range items {
			if EffectiveOperation(obj, op) == domain.OpDelete {
				req.DeleteIDs = append(req.DeleteIDs, obj.DocumentID())
				continue
			}
			req.Add = append(req.Add, s.buildDocument(obj, fields, mode))
		}
	}
	return req
}

func (s *Service) buildDocument(obj object.Object, fields []string, mode object.ReadingMode) solr.Document {
	doc := solr.Document{
		"id":             obj.DocumentID(),
		"ObjectID":       obj.ID(),
		"ClassName":      obj.Class(),
		"ClassHierarchy": s.hierarchy.Ancestry(obj.Class()),
	}
	for _, field := range fields {
		if v, ok := obj.Value(field, mode); ok {
			doc[solr.FieldName(field)] = v
		}
	}
	return doc
}
