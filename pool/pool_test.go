package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_Name(t *testing.T) {
	p := New("checkout-workers", 4, time.Second)
	defer p.Shutdown()

	if got := p.Name(); got != "checkout-workers" {
		t.Fatalf("Name() = %q, want %q", got, "checkout-workers")
	}
}

func TestPool_PostRunsTask(t *testing.T) {
	p := New("t", 2, time.Second)
	defer p.Shutdown()

	done := make(chan struct{})
	if err := p.Post(context.Background(), func(ctx context.Context) {
		close(done)
	}); err != nil {
		t.Fatalf("Post: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestSubmit_ReturnsValue(t *testing.T) {
	p := New("t", 2, time.Second)
	defer p.Shutdown()

	res, err := Submit(p, context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	v, err := res.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 42 {
		t.Fatalf("Get() = %d, want 42", v)
	}
}

var errBoom = errors.New("boom")

func TestSubmit_PropagatesError(t *testing.T) {
	p := New("t", 2, time.Second)
	defer p.Shutdown()

	res, err := Submit(p, context.Background(), func(ctx context.Context) (int, error) {
		return 0, errBoom
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = res.Get(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("Get() err = %v, want %v", err, errBoom)
	}
}

func TestSubmit_RecoversPanic(t *testing.T) {
	p := New("t", 2, time.Second)
	defer p.Shutdown()

	res, err := Submit(p, context.Background(), func(ctx context.Context) (int, error) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = res.Get(context.Background())
	var pe *panicError
	if !errors.As(err, &pe) {
		t.Fatalf("Get() err = %v, want *panicError", err)
	}
}

func TestPool_PostAfterShutdown(t *testing.T) {
	p := New("t", 2, time.Second)
	p.Shutdown()

	if err := p.Post(context.Background(), func(ctx context.Context) {}); !errors.Is(err, ErrExecutorShutdown) {
		t.Fatalf("Post after shutdown = %v, want ErrExecutorShutdown", err)
	}
	if !p.ShutdownRequested() {
		t.Fatal("ShutdownRequested() = false after Shutdown()")
	}
}

func TestBulkPost_RunsEveryTask(t *testing.T) {
	p := New("t", 3, time.Second)
	defer p.Shutdown()

	const n = 200
	var ran atomic.Int64
	done := make(chan struct{})

	fns := make([]func(context.Context), n)
	for i := range fns {
		fns[i] = func(ctx context.Context) {
			if ran.Add(1) == n {
				close(done)
			}
		}
	}

	if err := p.BulkPost(context.Background(), fns); err != nil {
		t.Fatalf("BulkPost: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("only %d/%d tasks ran", ran.Load(), n)
	}
}

func TestBulkSubmit_OrderedResults(t *testing.T) {
	p := New("t", 4, time.Second)
	defer p.Shutdown()

	const n = 50
	fns := make([]func(context.Context) (int, error), n)
	for i := range fns {
		i := i
		fns[i] = func(ctx context.Context) (int, error) { return i, nil }
	}

	results, err := BulkSubmit(p, context.Background(), fns)
	if err != nil {
		t.Fatalf("BulkSubmit: %v", err)
	}
	for i, r := range results {
		v, err := r.Get(context.Background())
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if v != i {
			t.Fatalf("results[%d] = %d, want %d", i, v, i)
		}
	}
}
