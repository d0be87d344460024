package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Pool is a dynamically-sized thread-pool executor: a fixed-capacity
// roster of worker slots, a placement algorithm, and a shutdown
// protocol. See the package doc for an overview.
type Pool struct {
	name        string
	maxWorkers  int
	maxIdleTime time.Duration
	cfg         *poolConfig

	// mu guards idleWorkers. roundRobinCursor is an atomic advanced
	// without mu.
	mu               sync.Mutex
	workers          []*worker
	idleWorkers      map[int]struct{}
	roundRobinCursor atomic.Uint64

	shutdownFlag atomic.Bool
	shutdownOnce sync.Once

	threadsMu sync.Mutex
	threads   map[int64]struct{}
}

// New constructs a Pool with the given diagnostic name, a fixed worker
// capacity (>=1), and an idle-reclamation timeout (>0). No worker
// threads are spawned until the first task is placed.
func New(name string, maxWorkers int, maxIdleTime time.Duration, opts ...Option) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxIdleTime <= 0 {
		maxIdleTime = time.Second
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	p := &Pool{
		name:        name,
		maxWorkers:  maxWorkers,
		maxIdleTime: maxIdleTime,
		cfg:         cfg,
		idleWorkers: make(map[int]struct{}, maxWorkers),
		threads:     make(map[int64]struct{}),
	}

	p.workers = make([]*worker, maxWorkers)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}

	return p
}

// Name returns the diagnostic name captured at construction, unchanged.
func (p *Pool) Name() string { return p.name }

// ShutdownRequested reports whether Shutdown has been called.
func (p *Pool) ShutdownRequested() bool { return p.shutdownFlag.Load() }

func (p *Pool) shutdownRequested() bool { return p.shutdownFlag.Load() }

// Post accepts a fire-and-forget callable. A panic inside fn is captured
// and routed to the configured failure sink; it never terminates the
// worker.
func (p *Pool) Post(ctx context.Context, fn func(context.Context)) error {
	if p.shutdownRequested() {
		return ErrExecutorShutdown
	}
	if err := p.throttle(ctx); err != nil {
		return err
	}
	return p.place(ctx, &callableTask{fn: fn, pool: p})
}

// Submit accepts a value-producing callable, wraps it so its outcome
// lands in a fresh Result, and returns that Result to the caller. Submit
// is a free function because Go methods cannot introduce new type
// parameters.
func Submit[T any](p *Pool, ctx context.Context, fn func(context.Context) (T, error)) (*Result[T], error) {
	if p.shutdownRequested() {
		return nil, ErrExecutorShutdown
	}
	if err := p.throttle(ctx); err != nil {
		return nil, err
	}
	res := newResult[T]()
	if err := p.place(ctx, &valueTask[T]{fn: fn, result: res}); err != nil {
		return nil, err
	}
	return res, nil
}

// BulkPost places each of fns independently, in order, applying the
// placement algorithm once per task (spec.md §4.3: "must not batch the
// placement decisions"). The check against shutdown is all-or-nothing:
// either every task is placed or none are.
func (p *Pool) BulkPost(ctx context.Context, fns []func(context.Context)) error {
	if p.shutdownRequested() {
		return ErrExecutorShutdown
	}
	for _, fn := range fns {
		if err := p.throttle(ctx); err != nil {
			return err
		}
		if err := p.place(ctx, &callableTask{fn: fn, pool: p}); err != nil {
			return err
		}
	}
	return nil
}

// BulkSubmit is BulkPost's value-producing counterpart: it returns a
// slice of Results with the same length and order as fns.
func BulkSubmit[T any](p *Pool, ctx context.Context, fns []func(context.Context) (T, error)) ([]*Result[T], error) {
	if p.shutdownRequested() {
		return nil, ErrExecutorShutdown
	}
	results := make([]*Result[T], len(fns))
	for i, fn := range fns {
		if err := p.throttle(ctx); err != nil {
			return nil, err
		}
		res := newResult[T]()
		if err := p.place(ctx, &valueTask[T]{fn: fn, result: res}); err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}

// Enqueue accepts an already-constructed resumable handle, the
// integration point used by coroutine-style callers. Ownership of h
// transfers to the pool only on success.
func (p *Pool) Enqueue(ctx context.Context, h ResumableHandle) error {
	if p.shutdownRequested() {
		return ErrExecutorShutdown
	}
	return p.place(ctx, &handleTask{handle: h})
}

// EnqueueSpan enqueues a batch of resumable handles. On failure it
// returns the unenqueued suffix of hs, unchanged, so the caller retains
// ownership of exactly the handles that were not placed.
func (p *Pool) EnqueueSpan(ctx context.Context, hs []ResumableHandle) ([]ResumableHandle, error) {
	if p.shutdownRequested() {
		return hs, ErrExecutorShutdown
	}
	for i, h := range hs {
		if p.shutdownRequested() {
			return hs[i:], ErrExecutorShutdown
		}
		if err := p.place(ctx, &handleTask{handle: h}); err != nil {
			return hs[i:], err
		}
	}
	return nil, nil
}

func (p *Pool) throttle(ctx context.Context) error {
	if p.cfg.rateLimiter == nil {
		return nil
	}
	return p.cfg.rateLimiter.Wait(ctx)
}

func (p *Pool) reportFault(recovered any) {
	if p.cfg.failureSink != nil {
		p.cfg.failureSink(recovered)
		return
	}
	p.cfg.logger.Sugar().Warnw("post task panicked", "pool", p.name, "recovered", recovered)
}

func (p *Pool) logFault(msg string, workerIndex int, recovered any) {
	p.cfg.logger.Sugar().Errorw(msg, "pool", p.name, "worker", workerIndex, "recovered", recovered)
}

func (p *Pool) recordThread(id int64) {
	p.threadsMu.Lock()
	p.threads[id] = struct{}{}
	p.threadsMu.Unlock()
}

// ObservedThreadCount returns the number of distinct OS threads this
// pool has spawned since construction. It is a diagnostic convenience
// mirroring the coroutine runtime's external test observer, not part of
// the placement or shutdown algorithm.
func (p *Pool) ObservedThreadCount() int {
	p.threadsMu.Lock()
	defer p.threadsMu.Unlock()
	return len(p.threads)
}

// WorkerIndex reports the roster index of the worker executing ctx, if
// ctx was handed to a task body by this pool. It exists for callers that
// want to report placement distribution (e.g. which worker ran which
// job); it is never consulted by the placement algorithm itself, which
// uses the unexported *worker identity directly.
func WorkerIndex(ctx context.Context) (int, bool) {
	w, ok := ctx.Value(workerIdentityKey{}).(*worker)
	if !ok {
		return 0, false
	}
	return w.index, true
}

func (p *Pool) markIdle(w *worker) {
	p.mu.Lock()
	p.idleWorkers[w.index] = struct{}{}
	p.mu.Unlock()
}

func (p *Pool) markBusy(w *worker) {
	p.mu.Lock()
	delete(p.idleWorkers, w.index)
	p.mu.Unlock()
}
