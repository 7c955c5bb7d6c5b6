// Package hook reacts to object lifecycle events by syncing the object to Solr
// and recording failed pushes in the dirty store.
package hook

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrsync/internal/domain"
	"github.com/kailas-cloud/solrsync/internal/domain/object"
	"github.com/kailas-cloud/solrsync/internal/solr"
	"github.com/kailas-cloud/solrsync/internal/usecase/indexsync"
)

// Hook handles create, update, publish and delete events.
// A failed sync never fails the event; only dirty bookkeeping errors are returned.
type Hook struct {
	syncer     Syncer
	dirty      DirtyStore
	logger     *zap.Logger
	suppressed atomic.Bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a change hook.
func New(syncer Syncer, dirty DirtyStore, logger *zap.Logger) *Hook {
	return &Hook{syncer: syncer, dirty: dirty, logger: logger, locks: make(map[string]*sync.Mutex)}
}

// SetSuppressed switches event propagation off (true) or back on (false),
// e.g. around a bulk rebuild.
func (h *Hook) SetSuppressed(on bool) {
	h.suppressed.Store(on)
	h.logger.Info("Index push suppression changed", zap.Bool("suppressed", on))
}

// ShouldPush reports whether events currently propagate to the index.
func (h *Hook) ShouldPush() bool {
	return !h.suppressed.Load()
}

// OnCreate pushes a newly created object.
func (h *Hook) OnCreate(ctx context.Context, obj object.Object) error {
	if !h.ShouldPush() {
		return nil
	}
	return h.push(ctx, obj, domain.OpCreate)
}

// OnUpdate pushes a written object. Versioned objects wait for OnPublish.
func (h *Hook) OnUpdate(ctx context.Context, obj object.Object) error {
	if !h.ShouldPush() || obj.Versioned() {
		return nil
	}
	return h.push(ctx, obj, domain.OpUpdate)
}

// OnPublish pushes the published stage of an object.
func (h *Hook) OnPublish(ctx context.Context, obj object.Object) error {
	if !h.ShouldPush() {
		return nil
	}
	return h.push(ctx, obj, domain.OpUpdate)
}

// OnDelete removes an object from the index.
func (h *Hook) OnDelete(ctx context.Context, obj object.Object) error {
	if !h.ShouldPush() {
		return nil
	}
	return h.push(ctx, obj, domain.OpDelete)
}

// Reindex pushes obj regardless of suppression.
func (h *Hook) Reindex(ctx context.Context, obj object.Object) error {
	return h.push(ctx, obj, domain.OpUpdate)
}

func (h *Hook) push(ctx context.Context, obj object.Object, op domain.Operation) error {
	if !h.syncer.IsValidClass(obj.Class()) {
		return nil
	}

	// The dirty record follows the event; only the Solr command is downgraded.
	unlock := h.lock(obj.Class(), op)
	defer unlock()

	rec, err := h.dirty.GetOrCreate(ctx, obj.Class(), op)
	if err != nil {
		return fmt.Errorf("load dirty record: %w", err)
	}

	_, syncErr := h.syncer.Sync(ctx, []object.Object{obj}, indexsync.EffectiveOperation(obj, op), "", object.Live)
	if syncErr == nil {
		if _, err := h.dirty.RemoveIdentifier(ctx, rec, obj.ID()); err != nil {
			return fmt.Errorf("clear dirty id %d: %w", obj.ID(), err)
		}
		return nil
	}

	if _, err := h.dirty.AppendIdentifier(ctx, rec, obj.ID()); err != nil {
		return fmt.Errorf("record dirty id %d: %w", obj.ID(), err)
	}
	h.logger.Warn("Object marked dirty",
		zap.String("class", obj.Class()),
		zap.Int64("id", obj.ID()),
		zap.String("operation", string(op)),
	)
	h.logger.Error("Index sync failed",
		zap.String("class", obj.Class()),
		zap.Int64("id", obj.ID()),
		zap.Bool("rejected", solr.IsRejected(syncErr)),
		zap.Error(syncErr),
	)
	return nil
}

// lock serializes read-modify-write of one dirty record within the process.
func (h *Hook) lock(className string, op domain.Operation) func() {
	key := className + ":" + string(op)

	h.mu.Lock()
	m, ok := h.locks[key]
	if !ok {
		m = &sync.Mutex{}
		h.locks[key] = m
	}
	h.mu.Unlock()

	m.Lock()
	return m.Unlock
}
