package pool

import "context"

// place applies the three-rule placement algorithm from spec.md §4.3,
// stopping at the first rule that matches.
func (p *Pool) place(ctx context.Context, t task) error {
	// Rule 1: idle-thread. Any currently-idle worker is a valid target;
	// the lowest index is picked for deterministic test reasoning.
	if w, ok := p.pickIdle(); ok {
		p.dispatchTo(w, t)
		return nil
	}

	// Rule 2: self-enqueue. If the calling goroutine is itself running
	// a task on one of this pool's workers, keep the new task local.
	if self, ok := ctx.Value(workerIdentityKey{}).(*worker); ok && self.pool == p {
		self.mu.Lock()
		self.enqueueLocked(t)
		self.mu.Unlock()
		return nil
	}

	// Rule 3: round-robin across the fixed roster.
	w := p.pickRoundRobin()
	p.dispatchTo(w, t)
	return nil
}

// pickIdle returns the lowest-indexed worker currently in the idle set,
// if any, and atomically claims it by removing it from the set. Without
// this removal, two placements racing ahead of the woken worker's own
// markBusy call would both see the same worker as idle and pile onto it
// while another genuinely idle worker gets nothing (spec.md §4.3 rule 1:
// each of the first N tasks lands on a distinct worker).
func (p *Pool) pickIdle() (*worker, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	best := -1
	for idx := range p.idleWorkers {
		if best == -1 || idx < best {
			best = idx
		}
	}
	if best == -1 {
		return nil, false
	}
	delete(p.idleWorkers, best)
	return p.workers[best], true
}

// pickRoundRobin advances the pool-wide cursor and returns the worker at
// the resulting index. A single atomic fetch-and-add is sufficient;
// determinism of the resulting sequence matters only for test reasoning.
func (p *Pool) pickRoundRobin() *worker {
	idx := int(p.roundRobinCursor.Add(1) % uint64(p.maxWorkers)) // #nosec G115 -- maxWorkers is always positive
	return p.workers[idx]
}

// dispatchTo delivers t to w, spawning a fresh OS thread first if the
// slot is currently dormant. The isActive check and the spawn-then-
// enqueue sequence happen atomically under w.mu, the same mutex a
// worker's own idle-timeout exit uses to flip isActive, so the two paths
// can never disagree about whether the slot is dormant (spec.md §9).
//
// Shutdown is re-checked here, under w.mu, because a Post/Submit call
// can pass its own shutdownRequested check a hair before Shutdown sets
// the flag. If the targeted slot is dormant at that point, spawning a
// worker for it here would both outlive Shutdown's join (it was never
// in the snapshot Shutdown joined on) and orphan t: a dormant slot has
// no goroutine running to ever drain its queue. So a dormant slot is
// never spawned once shutdown has been requested; t is destroyed
// immediately instead, the same outcome a drain would have produced.
func (p *Pool) dispatchTo(w *worker, t task) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isActive {
		if p.shutdownRequested() {
			t.destroy()
			return
		}
		w.spawnLocked()
	}
	w.enqueueLocked(t)
}
