package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epix-go/epix/typeid"
)

type ebName struct{ Value string }
type ebOwner struct{}
type ebRequired struct{ Tag string }

func TestRequiredComponentsAutoInserted(t *testing.T) {
	w := NewWorld()
	RegisterComponent[ebOwner](w)
	RequireComponent[ebOwner](w, func() ebRequired { return ebRequired{Tag: "auto"} })

	e := w.Spawn(ebOwner{}).ID()

	req, ok := Get[ebRequired](w, e)
	assert.True(t, ok)
	assert.Equal(t, "auto", req.Tag)
}

func TestRequiredComponentExplicitValueWins(t *testing.T) {
	w := NewWorld()
	RegisterComponent[ebOwner](w)
	RequireComponent[ebOwner](w, func() ebRequired { return ebRequired{Tag: "auto"} })

	e := w.Spawn(ebOwner{}, ebRequired{Tag: "explicit"}).ID()

	req, ok := Get[ebRequired](w, e)
	assert.True(t, ok)
	assert.Equal(t, "explicit", req.Tag)
}

func TestInsertBundleSingleTransition(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	RegisterComponent[epVelocity](w)
	RegisterComponent[epHealth](w)

	e := w.Spawn(epPosition{X: 1}).ID()

	assert.NoError(t, w.InsertBundle(e, epVelocity{X: 2}, epHealth{Current: 3}))

	assert.True(t, Has[epPosition](w, e))
	assert.True(t, Has[epVelocity](w, e))
	assert.True(t, Has[epHealth](w, e))
}

func TestRemoveIDsAndTakeIDs(t *testing.T) {
	w := NewWorld()
	posID := RegisterComponent[epPosition](w)
	velID := RegisterComponent[epVelocity](w)

	e := w.Spawn(epPosition{X: 5}, epVelocity{X: 6}).ID()

	taken, err := w.TakeIDs(e, []typeid.ID{posID, velID})
	assert.NoError(t, err)
	assert.Len(t, taken, 2)
	assert.False(t, Has[epPosition](w, e))
	assert.False(t, Has[epVelocity](w, e))
}

func TestClearRemovesEveryComponent(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	RegisterComponent[epVelocity](w)

	e := w.Spawn(epPosition{}, epVelocity{}).ID()
	assert.NoError(t, w.Clear(e))
	assert.False(t, Has[epPosition](w, e))
	assert.False(t, Has[epVelocity](w, e))
	assert.True(t, w.entities.Contains(e))
}

// TestInsertBundleReusesArchetypeEdge covers testable property 5: two
// successive insertions of the same bundle from the same base archetype
// land on the same destination archetype via the cached edge rather
// than recomputing it by mask, and the edge is recorded on first use.
func TestInsertBundleReusesArchetypeEdge(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)
	RegisterComponent[epVelocity](w)

	e1 := w.Spawn(epPosition{X: 1}).ID()
	e2 := w.Spawn(epPosition{X: 2}).ID()
	baseLoc, _ := w.entities.Get(e1)
	base := w.archetypes[baseLoc.ArchetypeID]

	assert.NoError(t, w.InsertBundle(e1, epVelocity{X: 1}))
	archCountAfterFirst := len(w.archetypes)
	assert.NotEmpty(t, base.edgesAdd)

	assert.NoError(t, w.InsertBundle(e2, epVelocity{X: 2}))
	assert.Equal(t, archCountAfterFirst, len(w.archetypes), "second insert of the same bundle must not allocate a new archetype")

	loc1, _ := w.entities.Get(e1)
	loc2, _ := w.entities.Get(e2)
	assert.Equal(t, loc1.ArchetypeID, loc2.ArchetypeID)
}

type ebConflictBundle struct{}

func TestRegisterBundleDetectsConflict(t *testing.T) {
	w := NewWorld()
	idA := RegisterComponent[ebName](w)
	idB := RegisterComponent[ebRequired](w)

	first, err := RegisterBundle[ebConflictBundle](w, idA)
	assert.NoError(t, err)

	_, err = RegisterBundle[ebConflictBundle](w, idB)
	assert.Error(t, err)
	var conflict *BundleConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, first, conflict.ID)
}

func TestSpawnBundleRegistersAndSpawns(t *testing.T) {
	w := NewWorld()
	RegisterComponent[epPosition](w)

	ent, err := SpawnBundle[ebConflictBundle](w, epPosition{X: 9})
	assert.NoError(t, err)
	assert.True(t, ent.Valid())

	pos, ok := Get[epPosition](w, ent.ID())
	assert.True(t, ok)
	assert.Equal(t, 9.0, pos.X)
}
