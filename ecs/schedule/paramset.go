package schedule

import "github.com/epix-go/epix/ecs"

// ParamSet2 groups two mutually-exclusive parameters that would
// otherwise conflict (e.g. two queries over overlapping archetypes,
// one of them writing): the pair's declared access is the union of
// both branches for conflict detection against OTHER systems, but
// accessing them through ParamSet2 documents that the calling system
// only ever uses one branch at a time within a single Run.
type ParamSet2[P0, P1 Param] struct {
	a P0
	b P1
}

func (s ParamSet2[P0, P1]) Init(w *ecs.World) Param {
	a, _ := s.a.Init(w).(P0)
	b, _ := s.b.Init(w).(P1)
	return ParamSet2[P0, P1]{a: a, b: b}
}

func (s ParamSet2[P0, P1]) Access() ecs.Access { return s.a.Access().Merge(s.b.Access()) }

func (ParamSet2[P0, P1]) ApplyDeferred(*ecs.World) {}

func (s ParamSet2[P0, P1]) FetchArg(w *ecs.World) any {
	return ParamSet2[P0, P1]{a: s.a, b: s.b}
}

// P0 returns the first branch, fetched fresh against w.
func (s ParamSet2[P0, P1]) P0(w *ecs.World) any { return s.a.FetchArg(w) }

// P1 returns the second branch, fetched fresh against w.
func (s ParamSet2[P0, P1]) P1(w *ecs.World) any { return s.b.FetchArg(w) }
