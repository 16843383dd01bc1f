package ecs

// queuedCommand is one entry in a CommandQueue: a type-erased closure
// standing in for a CommandMeta{size, drop, move, apply} vtable. Go's
// garbage collector makes the drop/move thunks unnecessary; apply is
// all that survives the port — see
// DESIGN.md for why a closure slice replaces the raw byte arena.
type queuedCommand struct {
	apply func(w *World)
}

// CommandQueue is a deferred-mutation buffer: Push enqueues a command,
// Apply runs every queued command against a World in push order. A
// system's *Commands parameter writes into one of these; the schedule
// dispatcher drains it into the World between a system's completion
// and its successors becoming ready.
type CommandQueue struct {
	commands []queuedCommand
}

func newCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// NewCommandQueue creates an empty, detached CommandQueue. System
// parameters of type Commands (ecs/schedule) each get their own, so
// concurrently-running systems buffer their deferred mutations
// separately; the dispatcher applies each system's queue directly to
// the World when that system completes.
func NewCommandQueue() *CommandQueue { return newCommandQueue() }

// Push enqueues fn to run against the World the next time Apply is
// called.
func (q *CommandQueue) Push(fn func(w *World)) {
	q.commands = append(q.commands, queuedCommand{apply: fn})
}

// Len reports the number of commands currently queued.
func (q *CommandQueue) Len() int { return len(q.commands) }

// Append moves other's queued commands onto the end of q, in order,
// leaving other empty. This rendition stores commands as closures
// rather than raw bytes, so there is no alignment to preserve (see
// DESIGN.md's note on the append-alignment open question).
func (q *CommandQueue) Append(other *CommandQueue) {
	q.commands = append(q.commands, other.commands...)
	other.commands = nil
}

// Apply runs every queued command against w, in push order, removing
// each from the queue as it runs so that a command which itself
// enqueues more commands is drained iteratively until the queue is
// empty.
func (q *CommandQueue) Apply(w *World) {
	for len(q.commands) > 0 {
		cmd := q.commands[0]
		q.commands = q.commands[1:]
		cmd.apply(w)
	}
	q.commands = nil
}

// Commands is the system-parameter-facing handle onto a CommandQueue:
// a small builder of common deferred operations (spawn, insert,
// remove, despawn, arbitrary closures).
type Commands struct {
	queue *CommandQueue
}

// NewCommands wraps queue in the Commands convenience builder.
func NewCommands(queue *CommandQueue) Commands {
	return Commands{queue: queue}
}

// Spawn enqueues the creation of a new entity carrying values, deferred
// until the next Apply.
func (c Commands) Spawn(values ...any) {
	c.queue.Push(func(w *World) {
		w.Spawn(values...)
	})
}

// Despawn enqueues the removal of entity e.
func (c Commands) Despawn(e Entity) {
	c.queue.Push(func(w *World) {
		_ = w.Despawn(e)
	})
}

// InsertOn enqueues the insertion of component T onto entity e.
func InsertOn[T any](c Commands, e Entity, value T) {
	c.queue.Push(func(w *World) {
		_ = Insert(w, e, value)
	})
}

// RemoveFrom enqueues the removal of component T from entity e.
func RemoveFrom[T any](c Commands, e Entity) {
	c.queue.Push(func(w *World) {
		_ = RemoveComponent[T](w, e)
	})
}

// Add enqueues an arbitrary closure to run against the World at the
// next Apply, for deferred operations the typed helpers above do not
// cover.
func (c Commands) Add(fn func(w *World)) {
	c.queue.Push(fn)
}
