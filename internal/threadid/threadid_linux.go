//go:build linux

// Package threadid identifies the OS thread a pool worker is pinned to.
// It exists so the pool can honor spec.md's "OS thread" vocabulary
// literally: a worker that calls runtime.LockOSThread really does own a
// kernel thread for its active lifetime, and tests can observe the set
// of distinct kernel threads a pool spawned over the life of a benchmark.
package threadid

import "golang.org/x/sys/unix"

// New returns the kernel thread id (Linux TID) of the calling goroutine's
// current OS thread. Callers must already be pinned via
// runtime.LockOSThread; the id is stable for as long as that pin holds.
func New() int64 {
	return int64(unix.Gettid())
}
