package schedule

import (
	"reflect"

	"github.com/epix-go/epix/ecs"
)

// System is an object with a declared-access Initialize step, a Run
// step that executes under the access already checked by the
// schedule, and an ApplyDeferred step flushing any per-system deferred
// state.
type System interface {
	Label() string
	Initialize(w *ecs.World) ecs.Access
	Run(w *ecs.World)
	ApplyDeferred(w *ecs.World)
}

// ConditionFn is a run_if condition: a system only runs if every one
// of its attached conditions returns true for the current World.
type ConditionFn func(w *ecs.World) bool

// fnSystem adapts a plain Go function into a System. Since Go cannot
// express "this parameter is accessed mutably" through bare reflection
// over a function's argument types the way the source's template
// parameter packs do (there is no &T vs &mut T distinction to read
// back off a reflect.Type), NewFn takes the parameter declarations
// explicitly, in the same order as fn's arguments, rather than
// inferring them purely by reflecting on fn — see DESIGN.md.
type fnSystem struct {
	label   string
	fn      reflect.Value
	decls   []Param
	fetched []Param
}

// NewFn adapts fn into a System. params must list one Param per
// positional argument of fn, in order; each concrete Param type
// (Res[T], ResMut[T], Query... etc.) supplies its own Init/Access/
// FetchArg/ApplyDeferred behavior.
func NewFn(label string, fn any, params ...Param) System {
	return &fnSystem{label: label, fn: reflect.ValueOf(fn), decls: params}
}

func (s *fnSystem) Label() string { return s.label }

// Initialize calls Init on every declared parameter (allocating
// per-system state such as a Local's storage or a Query's matched-
// archetype cache) and returns the union of their declared access.
func (s *fnSystem) Initialize(w *ecs.World) ecs.Access {
	s.fetched = make([]Param, len(s.decls))
	var access ecs.Access
	for i, p := range s.decls {
		s.fetched[i] = p.Init(w)
		access = access.Merge(s.fetched[i].Access())
	}
	return access
}

// Run fetches each parameter's per-run Item and invokes fn with them.
func (s *fnSystem) Run(w *ecs.World) {
	args := make([]reflect.Value, len(s.fetched))
	for i, p := range s.fetched {
		args[i] = reflect.ValueOf(p.FetchArg(w))
	}
	s.fn.Call(args)
}

// ApplyDeferred flushes every parameter's deferred state (in practice,
// only Commands does anything here).
func (s *fnSystem) ApplyDeferred(w *ecs.World) {
	for _, p := range s.fetched {
		p.ApplyDeferred(w)
	}
}
