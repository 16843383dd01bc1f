package ecs

// Tick is a wrap-aware monotonically increasing world change counter.
// Every component value and every resource cell carries an (added,
// changed) pair of ticks; comparisons must go through tickIsNewerThan
// rather than plain >, since the underlying counter wraps.
type Tick uint32

// tickPair is the (added, changed) bookkeeping attached to one
// component value on one entity, or to one resource cell.
type tickPair struct {
	added   Tick
	changed Tick
}

// tickIsNewerThan reports whether tick is strictly newer than
// reference, using wrap-aware subtraction so the comparison stays
// correct as Tick wraps around 2^32: treat the difference as a signed
// 32-bit value rather than comparing the raw unsigned ticks directly.
func tickIsNewerThan(tick, reference Tick) bool {
	delta := int32(tick - reference)
	return delta > 0
}

// tickWindow is the (last_run, this_run) window a query's change
// filters compare recorded ticks against.
type tickWindow struct {
	lastRun Tick
	thisRun Tick
}

// componentAdded reports whether a tick pair was added within window.
func (w tickWindow) componentAdded(t tickPair) bool {
	return tickIsNewerThan(t.added, w.lastRun) && !tickIsNewerThan(t.added, w.thisRun)
}

// componentChanged reports whether a tick pair was changed within window.
func (w tickWindow) componentChanged(t tickPair) bool {
	return tickIsNewerThan(t.changed, w.lastRun) && !tickIsNewerThan(t.changed, w.thisRun)
}
