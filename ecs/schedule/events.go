package schedule

import "github.com/epix-go/epix/ecs"

// EventReader drains events of type T sent via EventWriter[T] in the
// same or an earlier system, using a reader cursor private to this
// system parameter instance (so two systems reading the same event
// type never steal each other's events).
type EventReader[T any] struct {
	world *ecs.World
	state *ecs.EventReaderState
}

func (EventReader[T]) Init(*ecs.World) Param {
	return EventReader[T]{state: &ecs.EventReaderState{}}
}
func (EventReader[T]) Access() ecs.Access { return ecs.Access{} }
func (EventReader[T]) ApplyDeferred(*ecs.World) {}
func (r EventReader[T]) FetchArg(w *ecs.World) any {
	return EventReader[T]{world: w, state: r.state}
}

// Read returns every event of type T sent since this reader last read.
func (r EventReader[T]) Read() []T {
	events := ecs.InitResource[ecs.Events[T]](r.world)
	return events.ReadSince(r.state)
}

// EventWriter sends events of type T, read back by any EventReader[T]
// in a later (or the same, per ordering) system.
type EventWriter[T any] struct{ world *ecs.World }

func (EventWriter[T]) Init(*ecs.World) Param              { return EventWriter[T]{} }
func (EventWriter[T]) Access() ecs.Access                 { return ecs.Access{} }
func (EventWriter[T]) ApplyDeferred(*ecs.World)            {}
func (EventWriter[T]) FetchArg(w *ecs.World) any           { return EventWriter[T]{world: w} }

// Send appends event to the World's Events[T] resource, initializing
// it on first use.
func (w EventWriter[T]) Send(event T) {
	events := ecs.InitResource[ecs.Events[T]](w.world)
	events.Send(event)
}
