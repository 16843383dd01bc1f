package ecs

import (
	"fmt"

	"github.com/epix-go/epix/typeid"
)

// Insert attaches component value T to entity e, replacing its current
// value if already present. For a Dense component this transitions e
// into a different archetype when T was not already present; for a
// Sparse component it only ever touches the per-type sparse set.
// Fires OnReplace when T already existed, otherwise OnAdd, then always
// fires OnInsert.
func Insert[T any](w *World, e Entity, value T) error {
	id := typeid.Of[T]()
	info, ok := w.components.Info(id)
	if !ok {
		return fmt.Errorf("ecs: component %T was never registered with RegisterComponent", value)
	}
	loc, ok := w.entities.Get(e)
	if !ok {
		return &EntityNotFoundError{Entity: e}
	}

	replacing := w.hasComponent(e, id)
	tick := w.Tick()

	if info.Storage == Sparse {
		ss, ok := w.sparse[id]
		if !ok {
			ss = newSparseSet()
			w.sparse[id] = ss
		}
		ss.values[e] = &value
	} else {
		arche := w.archetypes[loc.ArchetypeID]
		if !arche.Contains(id) {
			arche, loc = w.transitionAdd(e, loc, id, info)
		}
		setCell(arche, int(loc.ArchetypeRow), &value)
	}

	ctx := HookContext{Entity: e, ComponentID: id}
	if replacing {
		if info.Hooks.OnReplace != nil {
			info.Hooks.OnReplace(w, ctx)
		}
		w.touchTick(id, e)
	} else {
		if info.Hooks.OnAdd != nil {
			info.Hooks.OnAdd(w, ctx)
		}
		w.recordTick(id, e, tick, tick)
	}
	if info.Hooks.OnInsert != nil {
		info.Hooks.OnInsert(w, ctx)
	}
	return nil
}

// RemoveComponent detaches component T from entity e. It is a no-op if
// T was not present. Fires OnRemove before the value is actually
// dropped.
func RemoveComponent[T any](w *World, e Entity) error {
	id := typeid.Of[T]()
	info, ok := w.components.Info(id)
	if !ok {
		return nil
	}
	if !w.hasComponent(e, id) {
		return nil
	}

	ctx := HookContext{Entity: e, ComponentID: id}
	if info.Hooks.OnRemove != nil {
		info.Hooks.OnRemove(w, ctx)
	}

	if info.Storage == Sparse {
		if ss, ok := w.sparse[id]; ok {
			delete(ss.values, e)
		}
		delete(w.ticks[id], e)
		return nil
	}

	loc, ok := w.entities.Get(e)
	if !ok {
		return &EntityNotFoundError{Entity: e}
	}
	oldArche := w.archetypes[loc.ArchetypeID]
	w.transitionRemove(e, loc, id, oldArche)
	delete(w.ticks[id], e)
	return nil
}

// transitionAdd moves e into the archetype that equals its current
// archetype plus the component identified by id, copying every
// existing Dense column value across, and returns the new archetype
// and location.
func (w *World) transitionAdd(e Entity, loc EntityLocation, id typeid.ID, newInfo *ComponentInfo) (*Archetype, EntityLocation) {
	oldArche := w.archetypes[loc.ArchetypeID]
	infos := make([]*ComponentInfo, 0, len(oldArche.componentIDs)+1)
	for _, cid := range oldArche.componentIDs {
		if ci, ok := w.components.Info(cid); ok {
			infos = append(infos, ci)
		}
	}
	infos = append(infos, newInfo)

	newArche, err := w.getOrCreateArchetype(infos)
	if err != nil {
		panic(fmt.Sprintf("ecs: insert: %v", err))
	}
	newRow, _, err := placeNew(newArche, e)
	if err != nil {
		panic(fmt.Sprintf("ecs: insert: allocating row: %v", err))
	}
	for _, cid := range oldArche.componentIDs {
		ci, ok := w.components.Info(cid)
		if !ok {
			continue
		}
		v := getCellPtr(oldArche, int(loc.ArchetypeRow), ci.goType)
		setCell(newArche, newRow, v)
	}
	if err := w.removeRow(oldArche, loc.ArchetypeRow); err != nil {
		panic(fmt.Sprintf("ecs: insert: evicting old row: %v", err))
	}

	newLoc := EntityLocation{
		ArchetypeID:  newArche.id,
		ArchetypeRow: uint32(newRow),
		TableID:      TableID(newArche.id),
		TableRow:     uint32(newRow),
	}
	w.entities.Set(e.Index, newLoc)
	return newArche, newLoc
}

// transitionRemove moves e into the archetype equal to oldArche minus
// the component identified by id.
func (w *World) transitionRemove(e Entity, loc EntityLocation, id typeid.ID, oldArche *Archetype) {
	infos := make([]*ComponentInfo, 0, len(oldArche.componentIDs))
	for _, cid := range oldArche.componentIDs {
		if cid == id {
			continue
		}
		if ci, ok := w.components.Info(cid); ok {
			infos = append(infos, ci)
		}
	}

	newArche, err := w.getOrCreateArchetype(infos)
	if err != nil {
		panic(fmt.Sprintf("ecs: remove: %v", err))
	}
	newRow, _, err := placeNew(newArche, e)
	if err != nil {
		panic(fmt.Sprintf("ecs: remove: allocating row: %v", err))
	}
	for _, cid := range oldArche.componentIDs {
		if cid == id {
			continue
		}
		ci, ok := w.components.Info(cid)
		if !ok {
			continue
		}
		v := getCellPtr(oldArche, int(loc.ArchetypeRow), ci.goType)
		setCell(newArche, newRow, v)
	}
	if err := w.removeRow(oldArche, loc.ArchetypeRow); err != nil {
		panic(fmt.Sprintf("ecs: remove: evicting old row: %v", err))
	}

	w.entities.Set(e.Index, EntityLocation{
		ArchetypeID:  newArche.id,
		ArchetypeRow: uint32(newRow),
		TableID:      TableID(newArche.id),
		TableRow:     uint32(newRow),
	})
}
