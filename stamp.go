package forkonce

// epochStamp records which fork generation produced a cached value. The
// zero value means "never initialized since the last wipe".
type epochStamp struct {
	set bool
	gen uint64
}

// mark stamps the current fork generation.
func (s *epochStamp) mark() {
	s.set = true
	s.gen = Generation()
}

func (s *epochStamp) clear() {
	*s = epochStamp{}
}

// stale reports whether a fork has occurred since mark. An unmarked stamp
// is never stale.
func (s *epochStamp) stale() bool {
	if !forkAware {
		return false
	}
	return s.set && s.gen != Generation()
}
