package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epix-go/epix/typeid"
)

func TestQuery2IteratesOnlyMatchingArchetypes(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	RegisterComponent[epVelocity](w)
	RegisterComponent[epHealth](w)

	both := w.Spawn(epPosition{X: 1}, epVelocity{X: 2}).ID()
	onlyPos := w.Spawn(epPosition{X: 99}).ID()
	_ = onlyPos

	q := NewQuery2[epPosition, epVelocity](w, true, false)
	seen := map[Entity]bool{}
	for it := q.Iter(w); it.Next(); {
		pos, vel := it.Get()
		pos.X += vel.X
		seen[it.Entity()] = true
	}

	assert.True(t, seen[both])
	assert.Len(t, seen, 1)

	pos, _ := Get[epPosition](w, both)
	assert.Equal(t, 3.0, pos.X)
}

func TestQueryMatchedArchetypesIncludeNewlyCreated(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	RegisterComponent[epVelocity](w)

	q := NewQuery1[epPosition](w, false)
	assert.Equal(t, 0, countIter1(q.Iter(w)))

	w.Spawn(epPosition{X: 1}, epVelocity{})
	assert.Equal(t, 1, countIter1(q.Iter(w)))
}

func countIter1(it *Iter1[epPosition]) int {
	n := 0
	for it.Next() {
		n++
	}
	return n
}

func TestQuerySingleErrorsOnZeroOrMultipleMatches(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epHealth](w)

	q := NewQuery1[epHealth](w, false)
	_, err := q.Single(w)
	assert.ErrorIs(t, err, ErrNoMatch)

	w.Spawn(epHealth{Current: 1})
	w.Spawn(epHealth{Current: 2})
	_, err = q.Single(w)
	assert.ErrorIs(t, err, ErrMultipleMatches)

	w2 := NewWorld()
	RegisterComponent[epHealth](w2)
	w2.Spawn(epHealth{Current: 7})
	q2 := NewQuery1[epHealth](w2, false)
	got, err := q2.Single(w2)
	assert.NoError(t, err)
	assert.Equal(t, 7, got.Current)
}

func TestWithAndWithoutFilters(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	RegisterComponent[epVelocity](w)

	moving := w.Spawn(epPosition{}, epVelocity{}).ID()
	still := w.Spawn(epPosition{}).ID()

	withVel := NewQuery1[epPosition](w, false, With[epVelocity]())
	var seen []Entity
	for it := withVel.Iter(w); it.Next(); {
		seen = append(seen, it.Entity())
	}
	assert.Equal(t, []Entity{moving}, seen)

	withoutVel := NewQuery1[epPosition](w, false, Without[epVelocity]())
	seen = nil
	for it := withoutVel.Iter(w); it.Next(); {
		seen = append(seen, it.Entity())
	}
	assert.Equal(t, []Entity{still}, seen)
}

func TestAccessConflictsDetection(t *testing.T) {
	posID := typeid.Of[epPosition]()
	velID := typeid.Of[epVelocity]()

	readPos := Access{Reads: []typeid.ID{posID}}
	writePos := Access{Writes: []typeid.ID{posID}}
	writeVel := Access{Writes: []typeid.ID{velID}}

	assert.True(t, readPos.Conflicts(writePos))
	assert.True(t, writePos.Conflicts(writePos))
	assert.False(t, readPos.Conflicts(writeVel))
	assert.False(t, readPos.Conflicts(readPos))
}
