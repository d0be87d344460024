package pool

import (
	"golang.org/x/time/rate"

	"go.uber.org/zap"
)

// Option configures optional ambient behavior of a Pool. The required
// (name, maxWorkers, maxIdleTime) triple is passed positionally to New,
// matching the fixed-at-construction attributes in spec.md §3; Option
// only ever adjusts ambient concerns, never the placement algorithm.
type Option func(*poolConfig)

type poolConfig struct {
	logger      *zap.Logger
	failureSink func(recovered any)
	rateLimiter *rate.Limiter
}

func defaultConfig() *poolConfig {
	return &poolConfig{
		logger: zap.NewNop(),
	}
}

// WithLogger sets the structured logger used for worker-loop faults and,
// when no failure sink is set, Post/BulkPost faults. Shutdown and resize
// events are not logged. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *poolConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFailureSink routes faults recovered from Post/BulkPost tasks
// (spec.md §4.2: "swallowed and reported to a configured failure sink").
// The default sink logs the fault via the pool's logger and otherwise
// discards it.
func WithFailureSink(sink func(recovered any)) Option {
	return func(c *poolConfig) {
		c.failureSink = sink
	}
}

// WithRateLimiter attaches an optional token-bucket throttle that Post,
// Submit, BulkPost and BulkSubmit wait on before each placement, ahead of
// the three placement rules; Enqueue and EnqueueSpan are not throttled.
// It never changes
// which worker a task lands on; it only paces how fast tasks are handed
// to the placement algorithm. Off by default.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *poolConfig) {
		c.rateLimiter = l
	}
}
