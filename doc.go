// Package forkonce provides fork-safe "run exactly once" primitives.
//
// After fork(2) the child inherits a byte-for-byte copy of the parent's
// memory, including values a once-initialization primitive already computed.
// Cached PIDs, file descriptors, random seeds, and lock owners are invalid
// in the child, so returning the parent's cached value there is a bug. The
// primitives in this package stamp every initialized value with the process
// fork generation and discard it on the first access after a fork, forcing
// a fresh initialization in the child while leaving the parent untouched.
//
// Four cell flavors share the same operation set:
//
//   - [OnceCell] and [LazyCell] are confined to a single goroutine.
//   - [OnceLock] and [LazyLock] are safe for concurrent use.
//   - [Once] is the underlying state machine, a fork-aware sync.Once with
//     poisoning.
//
//	var tz = forkonce.NewLazyLock(func() *time.Location {
//		loc, _ := time.LoadLocation("UTC")
//		return loc
//	})
//
//	loc := tz.Value() // computed once per fork generation
//
// Fork detection is lazy: the generation counter installs itself on first
// use, and processes that never touch these primitives pay nothing. Hosts
// that fork through cgo or an embedding runtime should call
// [AfterForkInChild] in the child; on Unix a PID probe catches forks that
// were never announced. On platforms without fork semantics the wipe check
// compiles to a no-op and every type degrades to plain once-initialization.
package forkonce
