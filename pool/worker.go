package pool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/go-threadpool/threadpool/internal/threadid"
)

// workerIdentityKey is the context key a worker stamps onto every ctx it
// hands to a task body, so a task that re-enters the pool can be
// recognized by the self-enqueue placement rule (spec.md §4.3 rule 2).
type workerIdentityKey struct{}

// worker is a persistent slot: its index stays valid across the active
// OS thread coming and going on idle-timeout. localQueue, hasPendingWork
// and isActive are guarded by mu. wake stands in for spec.md's condition
// variable: a buffered channel that a placement decision signals and the
// loop selects on alongside a per-iteration idle timer — the idiomatic
// Go substitute for a mutex+condvar wait-with-timeout (the teacher's own
// scheduling strategies in schdulers.go are built the same way, around
// select over channels rather than sync.Cond).
type worker struct {
	index int
	pool  *Pool

	mu             sync.Mutex
	wake           chan struct{}
	localQueue     *queue.Queue
	hasPendingWork bool
	isActive       bool
	done           chan struct{}

	// threadGen is bumped once per spawn of this slot: a plain
	// monotonic counter, deliberately independent of the kernel thread
	// identity recorded via recordThread. Surfaced only for diagnostics
	// (dynamic-resizing tests), never consulted for placement
	// correctness. Accessed without w.mu, so it is an atomic.
	threadGen atomic.Int64
}

func newWorker(index int, p *Pool) *worker {
	return &worker{
		index:      index,
		pool:       p,
		localQueue: queue.New(),
		wake:       make(chan struct{}, 1),
	}
}

// enqueueLocked pushes t onto the worker's local queue and wakes it if
// it's waiting. Caller must hold w.mu.
func (w *worker) enqueueLocked(t task) {
	w.localQueue.Add(t)
	w.hasPendingWork = true
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// spawnLocked starts a fresh OS thread for this (possibly dormant) slot.
// Caller must hold w.mu; the new goroutine first takes w.mu in awaitWork
// and simply waits there until the caller releases it, so this never
// blocks on anything but a goroutine creation.
func (w *worker) spawnLocked() {
	w.isActive = true
	w.done = make(chan struct{})
	go w.run()
}

// run is the worker loop body: spec.md §4.2, realized with LockOSThread
// so the goroutine really does own a dedicated kernel thread for the
// duration it is active. It deliberately never calls UnlockOSThread: a
// goroutine that exits while still locked takes its OS thread down with
// it (see runtime.LockOSThread), so the next spawnLocked for this slot
// is guaranteed a genuinely fresh kernel thread rather than a recycled
// one from the runtime's M-pool — recycling would let a retired and a
// respawned worker observe the same kernel thread id.
func (w *worker) run() {
	runtime.LockOSThread()
	defer close(w.done)

	w.threadGen.Add(1)
	w.pool.recordThread(threadid.New())

	ctx := context.WithValue(context.Background(), workerIdentityKey{}, w)

	for {
		t, timedOut, shuttingDown := w.awaitWork()
		if shuttingDown {
			w.drain()
			return
		}
		if timedOut {
			return
		}
		w.runTask(ctx, t)
	}
}

// awaitWork blocks until a task is available, shutdown is requested, or
// the worker has been idle for maxIdleTime. On timeout it marks the slot
// inactive itself, under w.mu, so the exit is visible to any placement
// decision that races to reactivate the slot (spec.md §9): the dispatcher
// also only ever inspects/flips isActive while holding w.mu, so the two
// paths can never disagree about whether the slot is dormant.
func (w *worker) awaitWork() (t task, timedOut bool, shuttingDown bool) {
	timer := time.NewTimer(w.pool.maxIdleTime)
	defer timer.Stop()

	for {
		w.mu.Lock()
		// Shutdown always wins over a queued-but-not-started task: once
		// requested, remaining local-queue tasks are drained and broken
		// rather than run, even if they were queued before the request.
		if w.pool.shutdownRequested() {
			w.mu.Unlock()
			return nil, false, true
		}
		if w.localQueue.Length() > 0 {
			t = w.localQueue.Remove().(task)
			if w.localQueue.Length() == 0 {
				w.hasPendingWork = false
			}
			w.mu.Unlock()
			return t, false, false
		}
		w.mu.Unlock()

		w.pool.markIdle(w)

		select {
		case <-w.wake:
			w.pool.markBusy(w)
			continue

		case <-timer.C:
			w.pool.markBusy(w)

			w.mu.Lock()
			if w.pool.shutdownRequested() {
				w.mu.Unlock()
				return nil, false, true
			}
			if w.localQueue.Length() > 0 {
				t = w.localQueue.Remove().(task)
				if w.localQueue.Length() == 0 {
					w.hasPendingWork = false
				}
				w.mu.Unlock()
				return t, false, false
			}
			w.isActive = false
			w.mu.Unlock()
			return nil, true, false
		}
	}
}

// runTask executes t with the worker's mutex released, recovering from a
// fault in the task-execution machinery itself (outside user code — a
// user panic inside Post/Submit is already caught by task.run) so a
// broken task can never take the worker thread down silently.
func (w *worker) runTask(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			w.pool.logFault("worker loop fault", w.index, r)
		}
	}()
	t.run(ctx)
}

// drain destroys every task still in the local queue without running it,
// breaking each task's Result with ErrBrokenTask.
func (w *worker) drain() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.localQueue.Length() > 0 {
		t := w.localQueue.Remove().(task)
		t.destroy()
	}
	w.hasPendingWork = false
	w.isActive = false
}
