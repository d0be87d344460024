//go:build !linux

package threadid

import "sync/atomic"

// generation is the portable fallback identity source for platforms
// without a cheap syscall for the kernel thread id (darwin, windows): a
// process-unique counter, bumped once per spawned worker OS thread.
var generation atomic.Int64

// New allocates a fresh, process-unique identity for a newly spawned
// worker OS thread.
func New() int64 {
	return generation.Add(1)
}
