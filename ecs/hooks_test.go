package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epix-go/epix/typeid"
)

type ehMarker struct{ N int }

func TestSpawnFiresOnAddThenOnInsert(t *testing.T) {
	w := NewWorld()
	RegisterComponent[ehMarker](w)

	var order []string
	SetHooks[ehMarker](w, ComponentHooks{
		OnAdd:    func(w *World, ctx HookContext) { order = append(order, "add") },
		OnInsert: func(w *World, ctx HookContext) { order = append(order, "insert") },
	})

	w.Spawn(ehMarker{N: 1})
	assert.Equal(t, []string{"add", "insert"}, order)
}

func TestInsertOverExistingFiresOnReplaceThenOnInsert(t *testing.T) {
	w := NewWorld()
	RegisterComponent[ehMarker](w)

	var order []string
	SetHooks[ehMarker](w, ComponentHooks{
		OnAdd:     func(w *World, ctx HookContext) { order = append(order, "add") },
		OnReplace: func(w *World, ctx HookContext) { order = append(order, "replace") },
		OnInsert:  func(w *World, ctx HookContext) { order = append(order, "insert") },
	})

	e := w.Spawn(ehMarker{N: 1}).ID()
	order = nil

	assert.NoError(t, Insert(w, e, ehMarker{N: 2}))
	assert.Equal(t, []string{"replace", "insert"}, order)
}

func TestDespawnFiresOnRemoveThenOnDespawn(t *testing.T) {
	w := NewWorld()
	RegisterComponent[ehMarker](w)

	var order []string
	SetHooks[ehMarker](w, ComponentHooks{
		OnRemove:  func(w *World, ctx HookContext) { order = append(order, "remove") },
		OnDespawn: func(w *World, ctx HookContext) { order = append(order, "despawn") },
	})

	e := w.Spawn(ehMarker{N: 1}).ID()
	assert.NoError(t, w.Despawn(e))

	// Despawn fires OnRemove in addition to OnDespawn for every surviving
	// component, not instead of it.
	assert.Equal(t, []string{"remove", "despawn"}, order)
}

func TestRemoveIDsFiresOnRemoveOnly(t *testing.T) {
	w := NewWorld()
	RegisterComponent[ehMarker](w)

	var order []string
	SetHooks[ehMarker](w, ComponentHooks{
		OnRemove: func(w *World, ctx HookContext) { order = append(order, "remove") },
	})

	e := w.Spawn(ehMarker{N: 1}).ID()
	order = nil

	assert.NoError(t, w.RemoveIDs(e, []typeid.ID{typeid.Of[ehMarker]()}))
	assert.Equal(t, []string{"remove"}, order)
}
