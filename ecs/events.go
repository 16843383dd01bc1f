package ecs

// Events is a double-buffered event queue for type T: writers append
// to the current frame's buffer, readers drain the previous frame's
// buffer plus whatever has accumulated in the current one since their
// last read, and Update swaps the buffers once per schedule run.
// Events[T] is installed as a World resource, typically via
// InitResource, and read/written through the EventReader[T] /
// EventWriter[T] system params (ecs/schedule).
type Events[T any] struct {
	buffers [2][]T
	current int
}

// EventReaderState is the per-consumer read cursor a schedule.EventReader
// parameter owns; each independent reader tracks its own position so
// multiple systems can read the same Events[T] stream without
// interfering with each other.
type EventReaderState struct {
	lastSeenTotal int
}

// FromWorld satisfies ecs.FromWorld so Events[T] can be
// InitResource'd with no prior Send call.
func (Events[T]) FromWorld(*World) Events[T] { return Events[T]{} }

// Send appends event to the current frame's buffer.
func (e *Events[T]) Send(event T) {
	e.buffers[e.current] = append(e.buffers[e.current], event)
}

// Update swaps buffers, moving the current frame's events into the
// "previous" slot and starting a fresh buffer for the next frame; a
// reader that has not yet drained the soon-to-be-discarded buffer
// before two Updates have elapsed misses those events, matching
// Bevy's Events<T> semantics.
func (e *Events[T]) Update() {
	next := 1 - e.current
	e.buffers[next] = e.buffers[next][:0]
	e.current = next
}

// totalLen is the number of events currently retained across both
// buffers, oldest first.
func (e *Events[T]) totalLen() int {
	return len(e.buffers[1-e.current]) + len(e.buffers[e.current])
}

func (e *Events[T]) all() []T {
	out := make([]T, 0, e.totalLen())
	out = append(out, e.buffers[1-e.current]...)
	out = append(out, e.buffers[e.current]...)
	return out
}

// ReadSince returns every event sent since state.lastSeenTotal and
// advances state past them.
func (e *Events[T]) ReadSince(state *EventReaderState) []T {
	all := e.all()
	if state.lastSeenTotal >= len(all) {
		state.lastSeenTotal = len(all)
		return nil
	}
	out := all[state.lastSeenTotal:]
	state.lastSeenTotal = len(all)
	return out
}
