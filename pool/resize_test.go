package pool

import (
	"context"
	"testing"
	"time"
)

// TestResize_ReclaimsIdleWorker confirms a worker slot goes dormant after
// maxIdleTime with no work, and the pool correctly respawns a fresh OS
// thread for it (a higher threadGen) the next time it is dispatched to.
func TestResize_ReclaimsIdleWorker(t *testing.T) {
	p := New("t", 1, 30*time.Millisecond)
	defer p.Shutdown()

	done := make(chan struct{})
	_ = p.Post(context.Background(), func(ctx context.Context) { close(done) })
	<-done

	w := p.workers[0]

	// Wait comfortably past the idle timeout for the worker to retire.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w.mu.Lock()
		active := w.isActive
		w.mu.Unlock()
		if !active {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	w.mu.Lock()
	active := w.isActive
	w.mu.Unlock()
	if active {
		t.Fatal("worker did not retire after maxIdleTime")
	}

	firstGen := w.threadGen.Load()

	done2 := make(chan struct{})
	if err := p.Post(context.Background(), func(ctx context.Context) { close(done2) }); err != nil {
		t.Fatalf("Post after reclamation: %v", err)
	}
	select {
	case <-done2:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran after reclamation")
	}

	secondGen := w.threadGen.Load()
	if secondGen <= firstGen {
		t.Fatalf("worker was not respawned: threadGen %d -> %d", firstGen, secondGen)
	}
	if p.ObservedThreadCount() < 2 {
		t.Fatalf("ObservedThreadCount() = %d, want >= 2", p.ObservedThreadCount())
	}
}

// TestResize_NoReclamationUnderContinuousLoad keeps a single worker
// continuously busy well past maxIdleTime and confirms it never retires
// mid-stream: the timer only fires once no task appears within the idle
// window, not on a fixed wall-clock schedule.
func TestResize_NoReclamationUnderContinuousLoad(t *testing.T) {
	p := New("t", 1, 30*time.Millisecond)
	defer p.Shutdown()

	w := p.workers[0]

	const n = 50
	for i := 0; i < n; i++ {
		done := make(chan struct{})
		if err := p.Post(context.Background(), func(ctx context.Context) { close(done) }); err != nil {
			t.Fatalf("Post %d: %v", i, err)
		}
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("task %d never ran", i)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if p.ObservedThreadCount() != 1 {
		t.Fatalf("ObservedThreadCount() = %d, want 1 (no reclamation should have occurred)", p.ObservedThreadCount())
	}
	w.mu.Lock()
	active := w.isActive
	w.mu.Unlock()
	if !active {
		t.Fatal("worker unexpectedly retired under continuous load")
	}
}
