package pool

import "golang.org/x/sync/errgroup"

// Shutdown stops accepting new work and waits for every worker that was
// ever active to exit. It is idempotent: calling it more than once, or
// concurrently, has no additional effect and the second call returns
// once the first has finished (spec.md §5).
//
// Once shutdownFlag is set, each active worker observes it the next time
// it re-checks its local queue in awaitWork (either immediately, or the
// next time its idle timer or wake channel fires) and drains any tasks
// still queued for it, breaking their Results with ErrBrokenTask rather
// than running them. A worker that is currently mid-task always finishes
// that task first.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.shutdownFlag.Store(true)

		// Nudge every worker's wake channel so one blocked on an idle
		// timer that still has minutes left on it re-checks
		// shutdownRequested() immediately instead of waiting it out.
		for _, w := range p.workers {
			w.mu.Lock()
			active := w.isActive
			w.mu.Unlock()
			if !active {
				continue
			}
			select {
			case w.wake <- struct{}{}:
			default:
			}
		}

		var g errgroup.Group
		for _, w := range p.workers {
			w.mu.Lock()
			done := w.done
			active := w.isActive || done != nil
			w.mu.Unlock()
			if !active {
				continue
			}
			g.Go(func() error {
				<-done
				return nil
			})
		}
		_ = g.Wait()
	})
}
