package schedule

import "github.com/epix-go/epix/ecs"

// Q1 is the one-component Query system parameter: the function body
// calls Iter() with no arguments since the bound World is captured at
// FetchArg time.
type Q1[A any] struct {
	write   bool
	filters []ecs.Filter
	q       *ecs.Query1[A]
	w       *ecs.World
}

// NewQ1 declares a one-component query parameter; set write true if
// the system mutates A.
func NewQ1[A any](write bool, filters ...ecs.Filter) Q1[A] {
	return Q1[A]{write: write, filters: filters}
}

func (p Q1[A]) Init(w *ecs.World) Param {
	return Q1[A]{write: p.write, filters: p.filters, q: ecs.NewQuery1[A](w, p.write, p.filters...)}
}
func (p Q1[A]) Access() ecs.Access { return p.q.Access() }
func (Q1[A]) ApplyDeferred(*ecs.World) {}
func (p Q1[A]) FetchArg(w *ecs.World) any { return Q1[A]{write: p.write, filters: p.filters, q: p.q, w: w} }

// Iter returns a fresh iterator over every entity currently matching
// this query.
func (p Q1[A]) Iter() *ecs.Iter1[A] { return p.q.Iter(p.w) }

// Single returns the query's unique match.
func (p Q1[A]) Single() (*A, error) { return p.q.Single(p.w) }

// Q2 is the two-component Query system parameter.
type Q2[A, B any] struct {
	writeA, writeB bool
	filters        []ecs.Filter
	q              *ecs.Query2[A, B]
	w              *ecs.World
}

// NewQ2 declares a two-component query parameter.
func NewQ2[A, B any](writeA, writeB bool, filters ...ecs.Filter) Q2[A, B] {
	return Q2[A, B]{writeA: writeA, writeB: writeB, filters: filters}
}

func (p Q2[A, B]) Init(w *ecs.World) Param {
	return Q2[A, B]{writeA: p.writeA, writeB: p.writeB, filters: p.filters,
		q: ecs.NewQuery2[A, B](w, p.writeA, p.writeB, p.filters...)}
}
func (p Q2[A, B]) Access() ecs.Access { return p.q.Access() }
func (Q2[A, B]) ApplyDeferred(*ecs.World) {}
func (p Q2[A, B]) FetchArg(w *ecs.World) any {
	return Q2[A, B]{writeA: p.writeA, writeB: p.writeB, filters: p.filters, q: p.q, w: w}
}

// Iter returns a fresh iterator over every entity currently matching
// this query.
func (p Q2[A, B]) Iter() *ecs.Iter2[A, B] { return p.q.Iter(p.w) }

// Single returns the query's unique match.
func (p Q2[A, B]) Single() (*A, *B, error) { return p.q.Single(p.w) }

// Q3 is the three-component Query system parameter.
type Q3[A, B, C any] struct {
	writeA, writeB, writeC bool
	filters                []ecs.Filter
	q                      *ecs.Query3[A, B, C]
	w                      *ecs.World
}

// NewQ3 declares a three-component query parameter.
func NewQ3[A, B, C any](writeA, writeB, writeC bool, filters ...ecs.Filter) Q3[A, B, C] {
	return Q3[A, B, C]{writeA: writeA, writeB: writeB, writeC: writeC, filters: filters}
}

func (p Q3[A, B, C]) Init(w *ecs.World) Param {
	return Q3[A, B, C]{writeA: p.writeA, writeB: p.writeB, writeC: p.writeC, filters: p.filters,
		q: ecs.NewQuery3[A, B, C](w, p.writeA, p.writeB, p.writeC, p.filters...)}
}
func (p Q3[A, B, C]) Access() ecs.Access { return p.q.Access() }
func (Q3[A, B, C]) ApplyDeferred(*ecs.World) {}
func (p Q3[A, B, C]) FetchArg(w *ecs.World) any {
	return Q3[A, B, C]{writeA: p.writeA, writeB: p.writeB, writeC: p.writeC, filters: p.filters, q: p.q, w: w}
}

// Iter returns a fresh iterator over every entity currently matching
// this query.
func (p Q3[A, B, C]) Iter() *ecs.Iter3[A, B, C] { return p.q.Iter(p.w) }
