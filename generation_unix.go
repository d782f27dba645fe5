//go:build unix

package forkonce

import "golang.org/x/sys/unix"

// forkAware enables the wipe protocol. Where it is false the should-wipe
// checks compile down to a constant and the primitives behave like plain
// once-initialization.
const forkAware = true

// Swapped out by tests to simulate process lineages.
var getpid = unix.Getpid
