package forkonce

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID returns the current goroutine's ID by parsing the header of
// runtime.Stack output ("goroutine 12 [running]:"). It is only consulted
// on the Once slow path, where it turns a reentrant initialization into a
// clear panic instead of a self-deadlock on the condition variable.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	id, err := strconv.ParseUint(string(s), 10, 64)
	if err != nil {
		panic("forkonce: cannot parse goroutine ID from " + strconv.Quote(string(buf[:n])))
	}
	return id
}
