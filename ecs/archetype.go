package ecs

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"github.com/epix-go/epix/typeid"
)

// Archetype groups every entity that has exactly the same set of
// Dense-storage component types. Its Table holds one column per
// component, and rowToEntity lets a table-level swap-remove (performed
// internally by table.Table on delete/transfer) be reflected back into
// the owning World's entity locations, layered over warehouse's
// archetype.go/table.Table instead of a hand-rolled column store.
type Archetype struct {
	id           ArchetypeID
	mask         mask.Mask
	componentIDs []typeid.ID
	table        table.Table
	rowToEntity  []Entity
	entryIDs     []table.EntryID

	// edgesAdd/edgesRemove cache the destination archetype reached by
	// inserting/removing a given BundleID's component set from this
	// archetype, so a repeated structural transition (testable property
	// 5: two successive insertions of the same bundle from the same base
	// archetype) skips recomputing the destination by mask.
	edgesAdd    map[BundleID]ArchetypeID
	edgesRemove map[BundleID]ArchetypeID
}

func newArchetypeRecord(schema table.Schema, entryIndex table.EntryIndex, id ArchetypeID, comps []*ComponentInfo) (*Archetype, error) {
	elementTypes := make([]table.ElementType, 0, len(comps))
	ids := make([]typeid.ID, 0, len(comps))
	var m mask.Mask
	for _, ci := range comps {
		if ci.Storage != Dense {
			continue
		}
		elementTypes = append(elementTypes, ci.Marker)
		ids = append(ids, ci.ID)
		m.Mark(uint32(ci.ID))
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		Build()
	if err != nil {
		return nil, err
	}
	return &Archetype{
		id:           id,
		mask:         m,
		componentIDs: ids,
		table:        tbl,
		edgesAdd:     make(map[BundleID]ArchetypeID),
		edgesRemove:  make(map[BundleID]ArchetypeID),
	}, nil
}

// Contains reports whether the archetype carries the component
// identified by id in its dense column set.
func (a *Archetype) Contains(id typeid.ID) bool {
	return a.mask.ContainsAll(maskOf(id))
}

// Len is the number of entities currently stored in this archetype.
func (a *Archetype) Len() int { return a.table.Length() }

func maskOf(ids ...typeid.ID) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}
