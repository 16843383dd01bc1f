package ecs

import (
	"fmt"

	"github.com/epix-go/epix/typeid"
)

// Access declares the read/write component and resource ids a query
// (or, at a higher level, a system) touches. The schedule's conflict
// detector (ecs/schedule) compares two Access sets to decide whether
// two systems may run concurrently.
type Access struct {
	Reads  []typeid.ID
	Writes []typeid.ID
}

// Conflicts reports whether a and b declare overlapping access where
// at least one side is a write.
func (a Access) Conflicts(b Access) bool {
	writeSet := func(acc Access) map[typeid.ID]bool {
		m := make(map[typeid.ID]bool, len(acc.Writes))
		for _, id := range acc.Writes {
			m[id] = true
		}
		return m
	}
	aw, bw := writeSet(a), writeSet(b)
	for _, id := range a.Reads {
		if bw[id] {
			return true
		}
	}
	for _, id := range a.Writes {
		if bw[id] {
			return true
		}
	}
	for _, id := range b.Reads {
		if aw[id] {
			return true
		}
	}
	return false
}

// Merge returns the union of a and b's declared access.
func (a Access) Merge(b Access) Access {
	return Access{Reads: append(append([]typeid.ID(nil), a.Reads...), b.Reads...),
		Writes: append(append([]typeid.ID(nil), a.Writes...), b.Writes...)}
}

// Filter narrows which archetypes and which rows within them a query
// matches. With/Without operate at archetype granularity; Added/Changed
// additionally consult per-row ticks against the query's run window.
type Filter interface {
	matchesArchetype(arche *Archetype, w *World) bool
	matchesRow(arche *Archetype, e Entity, win tickWindow, w *World) bool
	access() Access
}

type withFilter struct{ id typeid.ID }

func (f withFilter) matchesArchetype(arche *Archetype, w *World) bool {
	return arche.Contains(f.id) || sparseHas(w, arche, f.id)
}
func (f withFilter) matchesRow(*Archetype, Entity, tickWindow, *World) bool { return true }
func (f withFilter) access() Access                                        { return Access{} }

// With requires component T be present on a matching entity, without
// fetching its value (use a Data type parameter for that).
func With[T any]() Filter { return withFilter{id: typeid.Of[T]()} }

type withoutFilter struct{ id typeid.ID }

func (f withoutFilter) matchesArchetype(arche *Archetype, w *World) bool {
	return !arche.Contains(f.id) && !sparseHas(w, arche, f.id)
}
func (f withoutFilter) matchesRow(*Archetype, Entity, tickWindow, *World) bool { return true }
func (f withoutFilter) access() Access                                        { return Access{} }

// Without excludes any entity carrying component T.
func Without[T any]() Filter { return withoutFilter{id: typeid.Of[T]()} }

type addedFilter struct{ id typeid.ID }

func (f addedFilter) matchesArchetype(arche *Archetype, w *World) bool {
	return arche.Contains(f.id) || sparseHas(w, arche, f.id)
}
func (f addedFilter) matchesRow(arche *Archetype, e Entity, win tickWindow, w *World) bool {
	t, ok := w.ticks[f.id][e]
	return ok && win.componentAdded(t)
}
func (f addedFilter) access() Access { return Access{Reads: []typeid.ID{f.id}} }

// Added matches entities where component T's added tick falls within
// the query's (last_run, this_run) window.
func Added[T any]() Filter { return addedFilter{id: typeid.Of[T]()} }

type changedFilter struct{ id typeid.ID }

func (f changedFilter) matchesArchetype(arche *Archetype, w *World) bool {
	return arche.Contains(f.id) || sparseHas(w, arche, f.id)
}
func (f changedFilter) matchesRow(arche *Archetype, e Entity, win tickWindow, w *World) bool {
	t, ok := w.ticks[f.id][e]
	return ok && win.componentChanged(t)
}
func (f changedFilter) access() Access { return Access{Reads: []typeid.ID{f.id}} }

// Changed matches entities where component T's changed tick falls
// within the query's (last_run, this_run) window.
func Changed[T any]() Filter { return changedFilter{id: typeid.Of[T]()} }

func sparseHas(w *World, arche *Archetype, id typeid.ID) bool {
	_ = arche
	ss, ok := w.sparse[id]
	return ok && len(ss.values) > 0
}

// queryCore holds the parts of a query shared regardless of arity: the
// required/fetched component ids, the precomputed+incrementally
// updated set of matching archetype ids, and the declared access set
// gating schedule parallelism.
type queryCore struct {
	fetchIDs     []typeid.ID
	fetchWrite   []bool
	filters      []Filter
	matched      map[ArchetypeID]bool
	lastArchSeen int
	lastRun      Tick
}

func newQueryCore(fetchIDs []typeid.ID, fetchWrite []bool, filters []Filter) *queryCore {
	return &queryCore{fetchIDs: fetchIDs, fetchWrite: fetchWrite, filters: filters, matched: map[ArchetypeID]bool{}}
}

// access returns the union of the query's own fetch access and every
// filter's declared access.
func (qc *queryCore) access() Access {
	var a Access
	for i, id := range qc.fetchIDs {
		if qc.fetchWrite[i] {
			a.Writes = append(a.Writes, id)
		} else {
			a.Reads = append(a.Reads, id)
		}
	}
	for _, f := range qc.filters {
		a = a.Merge(f.access())
	}
	return a
}

// sync incrementally extends qc.matched to cover archetypes created
// since the last call.
func (qc *queryCore) sync(w *World) {
	for i := qc.lastArchSeen; i < len(w.archetypes); i++ {
		arche := w.archetypes[i]
		if qc.archetypeMatches(arche, w) {
			qc.matched[arche.id] = true
		}
	}
	qc.lastArchSeen = len(w.archetypes)
}

func (qc *queryCore) archetypeMatches(arche *Archetype, w *World) bool {
	for i, id := range qc.fetchIDs {
		_ = i
		if !arche.Contains(id) && !sparseHas(w, arche, id) {
			return false
		}
	}
	for _, f := range qc.filters {
		if !f.matchesArchetype(arche, w) {
			return false
		}
	}
	return true
}

// matchedArchetypes returns the World's archetypes matching this
// query, after synchronizing against any newly created ones.
func (qc *queryCore) matchedArchetypes(w *World) []*Archetype {
	qc.sync(w)
	out := make([]*Archetype, 0, len(qc.matched))
	for _, arche := range w.archetypes {
		if qc.matched[arche.id] {
			out = append(out, arche)
		}
	}
	return out
}

// ErrNoMatch and ErrMultipleMatches are returned by Single when the
// query matched zero or more than one entity.
var (
	ErrNoMatch         = fmt.Errorf("ecs: query: no entity matches")
	ErrMultipleMatches = fmt.Errorf("ecs: query: more than one entity matches")
)

// --- one-component query ---

// Query1 fetches a single component type per matched entity.
type Query1[A any] struct {
	core   *queryCore
	aID    typeid.ID
	aWrite bool
}

// NewQuery1 builds a query fetching *A on every entity additionally
// satisfying filters. write selects whether A is declared as a write
// or a read in the query's Access.
func NewQuery1[A any](w *World, write bool, filters ...Filter) *Query1[A] {
	id := typeid.Of[A]()
	return &Query1[A]{core: newQueryCore([]typeid.ID{id}, []bool{write}, filters), aID: id, aWrite: write}
}

// Access returns the query's declared read/write set.
func (q *Query1[A]) Access() Access { return q.core.access() }

// Iter1 is the per-entity cursor for a Query1.
type Iter1[A any] struct {
	q         *Query1[A]
	w         *World
	archetype []*Archetype
	archIdx   int
	row       int
	win       tickWindow
	ent       Entity
}

// Iter returns a fresh iterator over every entity currently matching q.
func (q *Query1[A]) Iter(w *World) *Iter1[A] {
	return &Iter1[A]{q: q, w: w, archetype: q.core.matchedArchetypes(w), row: -1,
		win: tickWindow{lastRun: q.core.lastRun, thisRun: w.Tick()}}
}

// Next advances the cursor, returning false once exhausted.
func (it *Iter1[A]) Next() bool {
	for {
		if it.archIdx >= len(it.archetype) {
			return false
		}
		arche := it.archetype[it.archIdx]
		it.row++
		if it.row >= arche.Len() {
			it.archIdx++
			it.row = -1
			continue
		}
		ent := rowEntity(arche, it.row)
		if !filtersMatchRow(it.q.core.filters, arche, ent, it.win, it.w) {
			continue
		}
		it.ent = ent
		return true
	}
}

// Entity returns the entity at the iterator's current position.
func (it *Iter1[A]) Entity() Entity { return it.ent }

// Get returns the fetched component for the iterator's current
// position.
func (it *Iter1[A]) Get() *A {
	v, _ := Get[A](it.w, it.ent)
	return v
}

// Single returns the query's unique match, or an error if it matched
// zero or more than one entity.
func (q *Query1[A]) Single(w *World) (*A, error) {
	it := q.Iter(w)
	if !it.Next() {
		return nil, ErrNoMatch
	}
	v := it.Get()
	if it.Next() {
		return nil, ErrMultipleMatches
	}
	return v, nil
}

func rowEntity(arche *Archetype, row int) Entity {
	if row < len(arche.rowToEntity) {
		return arche.rowToEntity[row]
	}
	return Entity{}
}

func filtersMatchRow(filters []Filter, arche *Archetype, e Entity, win tickWindow, w *World) bool {
	for _, f := range filters {
		if !f.matchesRow(arche, e, win, w) {
			return false
		}
	}
	return true
}

// --- two-component query ---

// Query2 fetches two component types per matched entity.
type Query2[A, B any] struct {
	core *queryCore
}

// NewQuery2 builds a two-component query; writeA/writeB declare
// whether each side is accessed mutably for schedule conflict
// detection.
func NewQuery2[A, B any](w *World, writeA, writeB bool, filters ...Filter) *Query2[A, B] {
	ids := []typeid.ID{typeid.Of[A](), typeid.Of[B]()}
	return &Query2[A, B]{core: newQueryCore(ids, []bool{writeA, writeB}, filters)}
}

// Access returns the query's declared read/write set.
func (q *Query2[A, B]) Access() Access { return q.core.access() }

// Iter2 is the per-entity cursor for a Query2.
type Iter2[A, B any] struct {
	q         *Query2[A, B]
	w         *World
	archetype []*Archetype
	archIdx   int
	row       int
	win       tickWindow
	ent       Entity
}

// Iter returns a fresh iterator over every entity currently matching q.
func (q *Query2[A, B]) Iter(w *World) *Iter2[A, B] {
	return &Iter2[A, B]{q: q, w: w, archetype: q.core.matchedArchetypes(w), row: -1,
		win: tickWindow{lastRun: q.core.lastRun, thisRun: w.Tick()}}
}

// Next advances the cursor, returning false once exhausted.
func (it *Iter2[A, B]) Next() bool {
	for {
		if it.archIdx >= len(it.archetype) {
			return false
		}
		arche := it.archetype[it.archIdx]
		it.row++
		if it.row >= arche.Len() {
			it.archIdx++
			it.row = -1
			continue
		}
		ent := rowEntity(arche, it.row)
		if !filtersMatchRow(it.q.core.filters, arche, ent, it.win, it.w) {
			continue
		}
		it.ent = ent
		return true
	}
}

// Entity returns the entity at the iterator's current position.
func (it *Iter2[A, B]) Entity() Entity { return it.ent }

// Get returns both fetched components for the iterator's current
// position.
func (it *Iter2[A, B]) Get() (*A, *B) {
	a, _ := Get[A](it.w, it.ent)
	b, _ := Get[B](it.w, it.ent)
	return a, b
}

// Single returns the query's unique match, or an error if it matched
// zero or more than one entity.
func (q *Query2[A, B]) Single(w *World) (*A, *B, error) {
	it := q.Iter(w)
	if !it.Next() {
		return nil, nil, ErrNoMatch
	}
	a, b := it.Get()
	if it.Next() {
		return nil, nil, ErrMultipleMatches
	}
	return a, b, nil
}

// --- three-component query ---

// Query3 fetches three component types per matched entity.
type Query3[A, B, C any] struct {
	core *queryCore
}

// NewQuery3 builds a three-component query.
func NewQuery3[A, B, C any](w *World, writeA, writeB, writeC bool, filters ...Filter) *Query3[A, B, C] {
	ids := []typeid.ID{typeid.Of[A](), typeid.Of[B](), typeid.Of[C]()}
	return &Query3[A, B, C]{core: newQueryCore(ids, []bool{writeA, writeB, writeC}, filters)}
}

// Access returns the query's declared read/write set.
func (q *Query3[A, B, C]) Access() Access { return q.core.access() }

// Iter3 is the per-entity cursor for a Query3.
type Iter3[A, B, C any] struct {
	q         *Query3[A, B, C]
	w         *World
	archetype []*Archetype
	archIdx   int
	row       int
	win       tickWindow
	ent       Entity
}

// Iter returns a fresh iterator over every entity currently matching q.
func (q *Query3[A, B, C]) Iter(w *World) *Iter3[A, B, C] {
	return &Iter3[A, B, C]{q: q, w: w, archetype: q.core.matchedArchetypes(w), row: -1,
		win: tickWindow{lastRun: q.core.lastRun, thisRun: w.Tick()}}
}

// Next advances the cursor, returning false once exhausted.
func (it *Iter3[A, B, C]) Next() bool {
	for {
		if it.archIdx >= len(it.archetype) {
			return false
		}
		arche := it.archetype[it.archIdx]
		it.row++
		if it.row >= arche.Len() {
			it.archIdx++
			it.row = -1
			continue
		}
		ent := rowEntity(arche, it.row)
		if !filtersMatchRow(it.q.core.filters, arche, ent, it.win, it.w) {
			continue
		}
		it.ent = ent
		return true
	}
}

// Entity returns the entity at the iterator's current position.
func (it *Iter3[A, B, C]) Entity() Entity { return it.ent }

// Get returns all three fetched components for the iterator's current
// position.
func (it *Iter3[A, B, C]) Get() (*A, *B, *C) {
	a, _ := Get[A](it.w, it.ent)
	b, _ := Get[B](it.w, it.ent)
	c, _ := Get[C](it.w, it.ent)
	return a, b, c
}
