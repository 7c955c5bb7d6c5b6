package hook

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/solrsync/internal/domain"
	domdirty "github.com/kailas-cloud/solrsync/internal/domain/dirty"
	"github.com/kailas-cloud/solrsync/internal/domain/object"
	"github.com/kailas-cloud/solrsync/internal/solr"
)

var errBackend = errors.New("backend down")

type syncCall struct {
	ids  []int64
	op   domain.Operation
	mode object.ReadingMode
}

// mockSyncer covers the classes in valid and fails ids in failing.
type mockSyncer struct {
	mu      sync.Mutex
	valid   map[string]bool
	failing map[int64]bool
	calls   []syncCall
}

func (m *mockSyncer) Sync(
	_ context.Context, items []object.Object, op domain.Operation, _ string, mode object.ReadingMode,
) (solr.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := syncCall{op: op, mode: mode}
	for _, it := range items {
		call.ids = append(call.ids, it.ID())
	}
	m.calls = append(m.calls, call)
	for _, it := range items {
		if m.failing[it.ID()] {
			return solr.UpdateResult{}, &solr.Error{Status: 500, Message: "boom"}
		}
	}
	return solr.UpdateResult{}, nil
}

func (m *mockSyncer) IsValidClass(className string) bool { return m.valid[className] }

// memDirty keeps records in memory and can fail any step.
type memDirty struct {
	mu        sync.Mutex
	records   map[string]domdirty.Record
	getErr    error
	appendErr error
	removeErr error
}

func (m *memDirty) GetOrCreate(_ context.Context, class string, op domain.Operation) (domdirty.Record, error) {
	if m.getErr != nil {
		return domdirty.Record{}, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domdirty.Key(class, op)
	rec, ok := m.records[key]
	if !ok {
		rec = domdirty.New(class, op, nil)
		m.records[key] = rec
	}
	return rec, nil
}

func (m *memDirty) RemoveIdentifier(_ context.Context, rec domdirty.Record, id int64) (domdirty.Record, error) {
	if m.removeErr != nil {
		return rec, m.removeErr
	}
	return m.save(rec.Without(id)), nil
}

func (m *memDirty) AppendIdentifier(_ context.Context, rec domdirty.Record, id int64) (domdirty.Record, error) {
	if m.appendErr != nil {
		return rec, m.appendErr
	}
	return m.save(rec.With(id)), nil
}

func (m *memDirty) save(rec domdirty.Record) domdirty.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key()] = rec
	return rec
}

func (m *memDirty) ids(class string, op domain.Operation) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[domdirty.Key(class, op)].IDs()
}

func newTestHook(t *testing.T) (*Hook, *mockSyncer, *memDirty, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	syncer := &mockSyncer{
		valid:   map[string]bool{"Page": true, "Article": true},
		failing: map[int64]bool{},
	}
	dirty := &memDirty{records: map[string]domdirty.Record{}}
	return New(syncer, dirty, zap.New(core)), syncer, dirty, logs
}

func newPage(t *testing.T, id int64) object.Object {
	t.Helper()
	obj, err := object.New(id, "Page", map[string]any{"Title": "t"})
	if err != nil {
		t.Fatalf("object.New: %v", err)
	}
	return obj
}
