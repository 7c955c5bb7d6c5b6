package db

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type flakyPinger struct {
	failures atomic.Int32
}

func (p *flakyPinger) Ping(context.Context) error {
	if p.failures.Add(-1) >= 0 {
		return errors.New("not yet")
	}
	return nil
}

func TestWaitForReady_EventuallyReady(t *testing.T) {
	p := &flakyPinger{}
	p.failures.Store(2)

	if err := WaitForReady(context.Background(), p, time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	p := &flakyPinger{}
	p.failures.Store(1 << 20)

	err := WaitForReady(context.Background(), p, 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpGet, Err: ErrKeyNotFound}
	if !errors.Is(err, ErrKeyNotFound) {
		t.Error("errors.Is failed through db.Error")
	}
	if err.Error() != "GET: db: key not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}
