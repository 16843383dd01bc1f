/*
Package schedule adapts plain Go functions into Systems executed over
an ecs.World, and runs a graph of such systems subject to both
explicit ordering and declared-access conflict constraints. Parameter
declarations (Res, ResMut, Local, Commands, queries, events) stand in
for the template parameter packs a C++ engine would use here, routed
through Go generics plus a thin reflection layer for the "adapt any
func(P1, P2, ...) into a System" step.
*/
package schedule

import (
	"github.com/epix-go/epix/ecs"
	"github.com/epix-go/epix/typeid"
)

// Param is a system parameter: something a plain function can accept
// that schedule.NewFn knows how to fetch from a World and whose
// declared access the conflict detector can read. Init is called once
// when the owning system is initialized; FetchArg is called once per
// system Run and returns the concrete value (of the parameter's own
// static type) to pass as that argument.
type Param interface {
	Init(w *ecs.World) Param
	Access() ecs.Access
	FetchArg(w *ecs.World) any
	ApplyDeferred(w *ecs.World)
}

// Res is a read-only system parameter fetching resource T.
type Res[T any] struct{ ptr *T }

func (Res[T]) Init(*ecs.World) Param              { return Res[T]{} }
func (Res[T]) Access() ecs.Access                 { return ecs.Access{Reads: []typeid.ID{typeid.Of[T]()}} }
func (Res[T]) ApplyDeferred(*ecs.World)            {}
func (Res[T]) FetchArg(w *ecs.World) any {
	v, _ := ecs.GetResource[T](w)
	return Res[T]{ptr: v}
}

// Get returns the fetched resource, or nil if it was absent this run.
func (r Res[T]) Get() *T { return r.ptr }

// ResMut is a mutable system parameter for resource T; fetching it
// panics (a programmer error) if the resource is absent.
type ResMut[T any] struct{ ptr *T }

func (ResMut[T]) Init(*ecs.World) Param   { return ResMut[T]{} }
func (ResMut[T]) Access() ecs.Access      { return ecs.Access{Writes: []typeid.ID{typeid.Of[T]()}} }
func (ResMut[T]) ApplyDeferred(*ecs.World) {}
func (ResMut[T]) FetchArg(w *ecs.World) any {
	return ResMut[T]{ptr: ecs.ResourceMut[T](w)}
}

// Get returns the fetched mutable resource pointer.
func (r ResMut[T]) Get() *T { return r.ptr }

// Local is per-system state that survives across runs of the same
// system but is invisible to every other system: a Go stand-in for
// the source's Local<T> system param.
type Local[T any] struct{ ptr *T }

func (Local[T]) Init(*ecs.World) Param    { return Local[T]{ptr: new(T)} }
func (Local[T]) Access() ecs.Access       { return ecs.Access{} }
func (Local[T]) ApplyDeferred(*ecs.World) {}
func (l Local[T]) FetchArg(*ecs.World) any { return l }

// Get returns this system's persistent local value.
func (l Local[T]) Get() *T { return l.ptr }

// Commands is a deferred-mutation system parameter: each system gets
// its own queue, buffered and applied to the World by the dispatcher
// in system-completion order between a system finishing and its
// successors becoming ready.
type Commands struct{ queue *ecs.CommandQueue }

func (Commands) Init(*ecs.World) Param { return Commands{queue: ecs.NewCommandQueue()} }
func (Commands) Access() ecs.Access    { return ecs.Access{} }
func (c Commands) ApplyDeferred(w *ecs.World) {
	if c.queue != nil {
		c.queue.Apply(w)
	}
}
func (c Commands) FetchArg(*ecs.World) any { return c }

// Handle returns the ecs.Commands builder bound to this parameter's
// per-system queue.
func (c Commands) Handle() ecs.Commands { return ecs.NewCommands(c.queue) }
