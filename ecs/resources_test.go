package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type epFrameCount struct{ N int }

func (epFrameCount) FromWorld(*World) epFrameCount { return epFrameCount{N: 0} }

func TestInsertAndGetResource(t *testing.T) {
	w := NewWorld()
	InsertResource(w, epFrameCount{N: 3})

	got, ok := GetResource[epFrameCount](w)
	assert.True(t, ok)
	assert.Equal(t, 3, got.N)
}

func TestInitResourceOnlyConstructsOnce(t *testing.T) {
	w := NewWorld()
	first := InitResource[epFrameCount](w)
	first.N = 42

	second := InitResource[epFrameCount](w)
	assert.Equal(t, 42, second.N)
}

func TestResourceMutPanicsWhenAbsent(t *testing.T) {
	w := NewWorld()
	assert.Panics(t, func() { ResourceMut[epFrameCount](w) })
}

func TestTakeResourceRemovesIt(t *testing.T) {
	w := NewWorld()
	InsertResource(w, epFrameCount{N: 7})

	v, ok := TakeResource[epFrameCount](w)
	assert.True(t, ok)
	assert.Equal(t, 7, v.N)

	_, ok = GetResource[epFrameCount](w)
	assert.False(t, ok)
}

func TestResourceTicksBumpOnMutAccess(t *testing.T) {
	w := NewWorld()
	InsertResource(w, epFrameCount{N: 1})

	added, changed, ok := GetResourceTicks[epFrameCount](w)
	assert.True(t, ok)
	assert.Equal(t, added, changed)

	w.AdvanceTick()
	ResourceMut[epFrameCount](w)

	_, changed2, ok := GetResourceTicks[epFrameCount](w)
	assert.True(t, ok)
	assert.Greater(t, changed2, changed)
}

func TestResourceScopeFetchesResource(t *testing.T) {
	w := NewWorld()
	InsertResource(w, epFrameCount{N: 5})

	var sawFrame int
	err := ResourceScope(w, func(frame *epFrameCount) {
		sawFrame = frame.N
	})
	assert.NoError(t, err)
	assert.Equal(t, 5, sawFrame)
}

type epNotConstructible struct{ Value string }

func TestResourceScopeMissingReturnsError(t *testing.T) {
	w := NewWorld()
	err := ResourceScope(w, func(r *epNotConstructible) {})
	assert.ErrorIs(t, err, ErrResourceScopeMissing)
}
