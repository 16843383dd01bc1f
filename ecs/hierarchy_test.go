package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epix-go/epix/typeid"
)

func TestSpawnChildLinksIntoParentChildren(t *testing.T) {
	w := NewWorld()
	RegisterHierarchy(w)

	parent := w.Spawn()
	child := parent.Spawn().ID()

	children, ok := Get[Children](w, parent.ID())
	assert.True(t, ok)
	assert.True(t, children.Entities[child])
}

func TestRemovingParentUnlinksChild(t *testing.T) {
	w := NewWorld()
	RegisterHierarchy(w)

	parent := w.Spawn()
	child := parent.Spawn()

	assert.NoError(t, w.RemoveIDs(child.ID(), []typeid.ID{typeid.Of[Parent]()}))

	children, ok := Get[Children](w, parent.ID())
	assert.True(t, ok)
	assert.False(t, children.Entities[child.ID()])
}

func TestDespawningParentCascadesToChildren(t *testing.T) {
	w := NewWorld()
	RegisterHierarchy(w)

	parent := w.Spawn()
	child1 := parent.Spawn().ID()
	child2 := parent.Spawn().ID()

	assert.NoError(t, w.Despawn(parent.ID()))

	assert.False(t, w.entities.Contains(child1))
	assert.False(t, w.entities.Contains(child2))
}

func TestSpawnChildViaDeferredCommand(t *testing.T) {
	w := NewWorld()
	RegisterHierarchy(w)

	parent := w.Spawn()
	parentID := parent.ID()

	w.Commands().Push(func(w *World) {
		if ew := w.Entity(parentID); ew != nil {
			ew.Spawn()
		}
	})
	w.FlushCommands()

	children, ok := Get[Children](w, parentID)
	assert.True(t, ok)
	assert.Len(t, children.Entities, 1)
}
