package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandQueueAppliesInPushOrder(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)

	queue := NewCommandQueue()
	commands := NewCommands(queue)

	var spawned Entity
	commands.Add(func(w *World) {
		spawned = w.Spawn(epPosition{X: 1}).ID()
	})
	commands.Add(func(w *World) {
		_ = Insert(w, spawned, epPosition{X: 99})
	})

	queue.Apply(w)

	pos, ok := Get[epPosition](w, spawned)
	assert.True(t, ok)
	assert.Equal(t, 99.0, pos.X)
}

func TestCommandQueueDrainsCommandsEnqueuedDuringApply(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epHealth](w)

	queue := NewCommandQueue()
	commands := NewCommands(queue)

	count := 0
	var enqueueMore func(w *World)
	enqueueMore = func(w *World) {
		count++
		if count < 3 {
			queue.Push(enqueueMore)
		}
	}
	commands.Add(enqueueMore)

	queue.Apply(w)
	assert.Equal(t, 3, count)
}

func TestCommandQueueAppendMovesCommands(t *testing.T) {
	a := NewCommandQueue()
	b := NewCommandQueue()

	order := []int{}
	a.Push(func(*World) { order = append(order, 1) })
	b.Push(func(*World) { order = append(order, 2) })

	a.Append(b)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 2, a.Len())

	a.Apply(nil)
	assert.Equal(t, []int{1, 2}, order)
}

func TestCommandsSpawnAndDespawn(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	existing := w.Spawn(epPosition{X: 1}).ID()

	queue := NewCommandQueue()
	commands := NewCommands(queue)
	commands.Spawn(epPosition{X: 2})
	commands.Despawn(existing)

	queue.Apply(w)

	assert.False(t, w.entities.Contains(existing))

	q := NewQuery1[epPosition](w, false)
	count := 0
	for it := q.Iter(w); it.Next(); {
		count++
	}
	assert.Equal(t, 1, count)
}
