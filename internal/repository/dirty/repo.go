// Package dirty persists dirty records in a key-value store.
package dirty

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrsync/internal/db"
	"github.com/kailas-cloud/solrsync/internal/domain"
	domdirty "github.com/kailas-cloud/solrsync/internal/domain/dirty"
)

// store is the consumer interface for dirty records (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Repo reads and writes dirty records. Every mutation persists before it returns.
type Repo struct {
	store     store
	mutations *prometheus.CounterVec
	logger    *zap.Logger
}

// New creates a dirty record repository.
// mutations is a counter vec with labels "class", "operation", "action", passed explicitly.
func New(s store, mutations *prometheus.CounterVec, logger *zap.Logger) *Repo {
	return &Repo{store: s, mutations: mutations, logger: logger}
}

// Get returns the record for (class, op) without creating it.
func (r *Repo) Get(ctx context.Context, class string, op domain.Operation) (domdirty.Record, error) {
	rec, _, err := r.load(ctx, class, op)
	return rec, err
}

// List returns every record that still has pending ids, ordered by class
// then operation. Keys that do not name a tracked record are skipped.
func (r *Repo) List(ctx context.Context) ([]domdirty.Record, error) {
	prefix := domain.KeyPrefix + domdirty.KeyNamespace
	keys, err := r.store.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list dirty records: %w", err)
	}

	var out []domdirty.Record
	for _, k := range keys {
		class, op, ok := domdirty.ParseKey(strings.TrimPrefix(k, domain.KeyPrefix))
		if !ok {
			r.logger.Debug("skipping foreign dirty key", zap.String("key", k))
			continue
		}
		rec, _, err := r.load(ctx, class, op)
		if err != nil {
			return nil, err
		}
		if rec.Len() > 0 {
			out = append(out, rec)
		}
	}

	slices.SortFunc(out, func(a, b domdirty.Record) int {
		if c := cmp.Compare(a.Class(), b.Class()); c != 0 {
			return c
		}
		return cmp.Compare(a.Operation(), b.Operation())
	})
	return out, nil
}

// GetOrCreate returns the record for (class, op), persisting an empty one when absent.
func (r *Repo) GetOrCreate(ctx context.Context, class string, op domain.Operation) (domdirty.Record, error) {
	rec, found, err := r.load(ctx, class, op)
	if err != nil || found {
		return rec, err
	}

	data, err := rec.Encode()
	if err != nil {
		return domdirty.Record{}, err //nolint:wrapcheck // already wrapped by Encode
	}
	created, err := r.store.SetNX(ctx, key(class, op), data)
	if err != nil {
		return domdirty.Record{}, fmt.Errorf("create dirty record %s: %w", rec.Key(), err)
	}
	if created {
		return rec, nil
	}

	// Lost the creation race; read what the winner stored.
	rec, _, err = r.load(ctx, class, op)
	return rec, err
}

// RemoveIdentifier drops id from the record and persists it. A missing id is a no-op that still persists.
func (r *Repo) RemoveIdentifier(ctx context.Context, rec domdirty.Record, id int64) (domdirty.Record, error) {
	next := rec.Without(id)
	if err := r.save(ctx, next); err != nil {
		return rec, err
	}
	r.incMutation(next, "remove")
	return next, nil
}

// AppendIdentifier adds id to the record and persists it.
func (r *Repo) AppendIdentifier(ctx context.Context, rec domdirty.Record, id int64) (domdirty.Record, error) {
	next := rec.With(id)
	if err := r.save(ctx, next); err != nil {
		return rec, err
	}
	r.incMutation(next, "append")
	return next, nil
}

func (r *Repo) load(ctx context.Context, class string, op domain.Operation) (domdirty.Record, bool, error) {
	data, err := r.store.Get(ctx, key(class, op))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdirty.New(class, op, nil), false, nil
		}
		return domdirty.Record{}, false, fmt.Errorf("get dirty record %s: %w", domdirty.Key(class, op), err)
	}

	rec, err := domdirty.Decode(class, op, data)
	if err != nil {
		r.logger.Warn("dirty record unreadable, treating as empty",
			zap.String("class", class),
			zap.String("operation", string(op)),
			zap.Error(err),
		)
	}
	return rec, true, nil
}

func (r *Repo) save(ctx context.Context, rec domdirty.Record) error {
	data, err := rec.Encode()
	if err != nil {
		return err //nolint:wrapcheck // already wrapped by Encode
	}
	if err := r.store.Set(ctx, key(rec.Class(), rec.Operation()), data); err != nil {
		return fmt.Errorf("save dirty record %s: %w", rec.Key(), err)
	}
	return nil
}

func (r *Repo) incMutation(rec domdirty.Record, action string) {
	if r.mutations != nil {
		r.mutations.WithLabelValues(rec.Class(), string(rec.Operation()), action).Inc()
	}
}

func key(class string, op domain.Operation) string {
	return domain.KeyPrefix + domdirty.Key(class, op)
}
