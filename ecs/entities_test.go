package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type epPosition struct{ X, Y float64 }
type epVelocity struct{ X, Y float64 }
type epHealth struct{ Current, Max int }

func TestSpawnAssignsGenerationalHandles(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)

	a := w.Spawn(epPosition{X: 1}).ID()
	assert.True(t, w.entities.Contains(a))

	assert.NoError(t, w.Despawn(a))
	assert.False(t, w.entities.Contains(a))

	b := w.Spawn(epPosition{X: 2}).ID()
	assert.Equal(t, a.Index, b.Index)
	assert.Greater(t, b.Generation, a.Generation)

	// the stale handle must not resolve to the new entity occupying
	// its slot
	assert.False(t, w.entities.Contains(a))
	assert.True(t, w.entities.Contains(b))
}

func TestGetAndGetMutRoundTrip(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)

	e := w.Spawn(epPosition{X: 3, Y: 4}).ID()

	pos, ok := Get[epPosition](w, e)
	assert.True(t, ok)
	assert.Equal(t, 3.0, pos.X)

	mut, ok := GetMut[epPosition](w, e)
	assert.True(t, ok)
	mut.X = 10

	again, ok := Get[epPosition](w, e)
	assert.True(t, ok)
	assert.Equal(t, 10.0, again.X)
}

func TestHasReflectsCurrentComposition(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	RegisterComponent[epVelocity](w)

	e := w.Spawn(epPosition{}).ID()
	assert.True(t, Has[epPosition](w, e))
	assert.False(t, Has[epVelocity](w, e))

	assert.NoError(t, Insert(w, e, epVelocity{X: 1}))
	assert.True(t, Has[epVelocity](w, e))
}

func TestDespawnFreesSlotForReuse(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epHealth](w)

	var entities []Entity
	for i := 0; i < 8; i++ {
		entities = append(entities, w.Spawn(epHealth{Current: i}).ID())
	}
	for _, e := range entities[:4] {
		assert.NoError(t, w.Despawn(e))
	}
	for _, e := range entities[:4] {
		assert.False(t, w.entities.Contains(e))
	}
	for _, e := range entities[4:] {
		assert.True(t, w.entities.Contains(e))
	}
}

func TestDespawnUnknownEntityErrors(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	e := w.Spawn(epPosition{}).ID()
	assert.NoError(t, w.Despawn(e))

	err := w.Despawn(e)
	assert.Error(t, err)
	var notFound *EntityNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
