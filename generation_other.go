//go:build !unix

package forkonce

// No fork semantics on this platform; the wipe protocol is compiled out.
const forkAware = false

var getpid = func() int { return 0 }
