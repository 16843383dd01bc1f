package ecs

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"github.com/epix-go/epix/typeid"
)

// emptyArchetype builds archetype 0, a placeholder with no table. It is
// not registered in archByMask, so no entity is ever placed in it; an
// entity with no Dense components lives in the table-backed archetype
// for the empty mask, which getOrCreateArchetype creates on first need.
func emptyArchetype() *Archetype {
	return &Archetype{
		id:          0,
		edgesAdd:    make(map[BundleID]ArchetypeID),
		edgesRemove: make(map[BundleID]ArchetypeID),
	}
}

// sparseSet is the per-component-type backing store for a Sparse
// component: cheap insert/remove, no archetype transition.
type sparseSet struct {
	values map[Entity]any
}

func newSparseSet() *sparseSet {
	return &sparseSet{values: make(map[Entity]any)}
}

// getOrCreateArchetype returns the archetype for exactly this set of
// Dense component ids, creating (and registering into archByMask) one
// if none exists yet.
func (w *World) getOrCreateArchetype(denseInfos []*ComponentInfo) (*Archetype, error) {
	var m mask.Mask
	for _, ci := range denseInfos {
		m.Mark(uint32(ci.ID))
	}
	if id, ok := w.archByMask[m]; ok {
		return w.archetypes[id], nil
	}
	id := ArchetypeID(len(w.archetypes))
	arche, err := newArchetypeRecord(w.schema, w.entryIndex, id, denseInfos)
	if err != nil {
		return nil, fmt.Errorf("ecs: building archetype: %w", err)
	}
	w.archetypes = append(w.archetypes, arche)
	w.archByMask[m] = id
	return arche, nil
}

// getOrCreateArchetypeViaEdge is getOrCreateArchetype, but first checks
// from's cached edge for bundleID (edgesAdd if add, edgesRemove
// otherwise) and records a miss's result back into that cache, so a
// repeated structural transition from the same archetype under the
// same bundle never recomputes the destination by mask.
func (w *World) getOrCreateArchetypeViaEdge(from *Archetype, bundleID BundleID, add bool, denseInfos []*ComponentInfo) (*Archetype, error) {
	edges := from.edgesRemove
	if add {
		edges = from.edgesAdd
	}
	if id, ok := edges[bundleID]; ok {
		return w.archetypes[id], nil
	}
	arche, err := w.getOrCreateArchetype(denseInfos)
	if err != nil {
		return nil, err
	}
	edges[bundleID] = arche.id
	return arche, nil
}

// setCell writes v (a plain T value or a *T pointer) into the column of
// arche.table whose element type matches, at the given row. Mirrors the
// reflect-based value-setting in warehouse's original entity.go
// AddComponentWithValue.
func setCell(arche *Archetype, row int, v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	for _, col := range arche.table.Rows() {
		if col.Type().Elem() == rv.Type() {
			reflect.Value(col).Index(row).Set(rv)
			return true
		}
	}
	return false
}

// getCellPtr returns a pointer to the value stored in arche.table's
// column of the given Go type, at row.
func getCellPtr(arche *Archetype, row int, goType reflect.Type) any {
	for _, col := range arche.table.Rows() {
		if col.Type().Elem() == goType {
			return reflect.Value(col).Index(row).Addr().Interface()
		}
	}
	return nil
}

// placeNew allocates a fresh row in arche for entity and returns the
// row index and the table.EntryID backing it.
func placeNew(arche *Archetype, entity Entity) (int, table.EntryID, error) {
	entries, err := arche.table.NewEntries(1)
	if err != nil {
		return 0, 0, err
	}
	entry := entries[0]
	row := entry.Index()
	if row == len(arche.rowToEntity) {
		arche.rowToEntity = append(arche.rowToEntity, entity)
		arche.entryIDs = append(arche.entryIDs, entry.ID())
	} else {
		arche.rowToEntity[row] = entity
		arche.entryIDs[row] = entry.ID()
	}
	return row, entry.ID(), nil
}

// removeRow evicts row from arche using a manual swap-with-last-then-
// delete-last sequence. Deleting only ever the logical last row keeps
// this correct regardless of whatever internal row-remapping
// table.Table.DeleteEntries performs on a bulk delete, which is not
// evidenced anywhere in the retrieved reference sources.
func (w *World) removeRow(arche *Archetype, row uint32) error {
	lastRow := uint32(arche.table.Length() - 1)
	if row != lastRow {
		for _, col := range arche.table.Rows() {
			rv := reflect.Value(col)
			rv.Index(int(row)).Set(rv.Index(int(lastRow)))
		}
		moved := arche.rowToEntity[lastRow]
		arche.rowToEntity[row] = moved
		arche.entryIDs[row] = arche.entryIDs[lastRow]
		w.entities.Set(moved.Index, EntityLocation{
			ArchetypeID:  arche.id,
			ArchetypeRow: row,
			TableID:      TableID(arche.id),
			TableRow:     row,
		})
	}
	lastEntryID := arche.entryIDs[lastRow]
	if _, err := arche.table.DeleteEntries(int(lastEntryID)); err != nil {
		return err
	}
	arche.rowToEntity = arche.rowToEntity[:lastRow]
	arche.entryIDs = arche.entryIDs[:lastRow]
	return nil
}

// hasComponent reports whether entity currently carries the component
// id, whether it is Dense (via archetype mask) or Sparse (via the
// World's sparse set).
func (w *World) hasComponent(entity Entity, id typeid.ID) bool {
	if ss, ok := w.sparse[id]; ok {
		if _, present := ss.values[entity]; present {
			return true
		}
	}
	loc, ok := w.entities.Get(entity)
	if !ok {
		return false
	}
	return w.archetypes[loc.ArchetypeID].Contains(id)
}
