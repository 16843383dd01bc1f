package ecs

import (
	"fmt"
	"reflect"

	"github.com/epix-go/epix/typeid"
)

// InsertBundle inserts every value in one structural transition: the
// entity moves from its current archetype directly to the archetype
// containing the union of its existing components and the bundle's
// (plus required components), instead of one transition per component.
// Fires OnReplace (existing) or OnAdd (new) per component, then
// OnInsert for every component in the bundle, in ascending typeid.ID
// order.
func (w *World) InsertBundle(e Entity, values ...any) error {
	loc, ok := w.entities.Get(e)
	if !ok {
		return &EntityNotFoundError{Entity: e}
	}
	rb := w.resolveBundle(values)

	oldArche := w.archetypes[loc.ArchetypeID]
	existingDense := map[typeid.ID]*ComponentInfo{}
	for _, cid := range oldArche.componentIDs {
		if ci, ok := w.components.Info(cid); ok {
			existingDense[cid] = ci
		}
	}

	status := make(map[typeid.ID]bool, len(rb.ids)) // true = newly added
	infos := make([]*ComponentInfo, 0, len(existingDense)+len(rb.ids))
	seen := map[typeid.ID]bool{}
	for cid, ci := range existingDense {
		if ci.Storage != Dense {
			continue
		}
		infos = append(infos, ci)
		seen[cid] = true
	}
	for _, id := range rb.ids {
		info := rb.infos[id]
		if info.Storage != Dense {
			status[id] = !w.hasComponent(e, id)
			continue
		}
		if !seen[id] {
			infos = append(infos, info)
			seen[id] = true
		}
		status[id] = existingDense[id] == nil
	}

	bundleID := w.bundleIDFor(rb.ids)
	newArche, err := w.getOrCreateArchetypeViaEdge(oldArche, bundleID, true, infos)
	if err != nil {
		return fmt.Errorf("ecs: insert bundle: %w", err)
	}
	newRow := int(loc.ArchetypeRow)
	if newArche != oldArche {
		newRow, _, err = placeNew(newArche, e)
		if err != nil {
			return fmt.Errorf("ecs: insert bundle: allocating row: %w", err)
		}
		for cid, ci := range existingDense {
			if ci.Storage != Dense {
				continue
			}
			v := getCellPtr(oldArche, int(loc.ArchetypeRow), ci.goType)
			setCell(newArche, newRow, v)
		}
		if err := w.removeRow(oldArche, loc.ArchetypeRow); err != nil {
			return fmt.Errorf("ecs: insert bundle: evicting old row: %w", err)
		}
	}
	newLoc := EntityLocation{
		ArchetypeID:  newArche.id,
		ArchetypeRow: uint32(newRow),
		TableID:      TableID(newArche.id),
		TableRow:     uint32(newRow),
	}
	w.entities.Set(e.Index, newLoc)

	tick := w.Tick()
	for _, id := range rb.ids {
		info := rb.infos[id]
		v := rb.values[id]
		isNew := status[id]
		if info.Storage == Dense {
			setCell(newArche, newRow, v)
		} else {
			ss, ok := w.sparse[id]
			if !ok {
				ss = newSparseSet()
				w.sparse[id] = ss
			}
			if rv := reflect.ValueOf(v); rv.Kind() != reflect.Ptr {
				p := reflect.New(rv.Type())
				p.Elem().Set(rv)
				v = p.Interface()
			}
			ss.values[e] = v
		}
		if isNew {
			w.recordTick(id, e, tick, tick)
		} else {
			w.touchTick(id, e)
		}
	}
	for _, id := range rb.ids {
		info := rb.infos[id]
		ctx := HookContext{Entity: e, ComponentID: id}
		if status[id] {
			if info.Hooks.OnAdd != nil {
				info.Hooks.OnAdd(w, ctx)
			}
		} else if info.Hooks.OnReplace != nil {
			info.Hooks.OnReplace(w, ctx)
		}
		if info.Hooks.OnInsert != nil {
			info.Hooks.OnInsert(w, ctx)
		}
	}
	return nil
}

// InsertIfNew is InsertBundle but silently drops any value whose
// component type is already present on e.
func (w *World) InsertIfNew(e Entity, values ...any) error {
	filtered := make([]any, 0, len(values))
	for _, v := range values {
		info, ok := w.components.infoForValue(v)
		if !ok {
			filtered = append(filtered, v)
			continue
		}
		if !w.hasComponent(e, info.ID) {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return w.InsertBundle(e, filtered...)
}

// RemoveIDs removes every component in ids from e in a single
// structural transition, firing OnRemove per removed Dense/Sparse
// component (symmetric with InsertBundle).
func (w *World) RemoveIDs(e Entity, ids []typeid.ID) error {
	_, err := w.removeOrTake(e, ids, false)
	return err
}

// TakeIDs is RemoveIDs but returns the removed values, keyed by
// typeid.ID.
func (w *World) TakeIDs(e Entity, ids []typeid.ID) (map[typeid.ID]any, error) {
	return w.removeOrTake(e, ids, true)
}

func (w *World) removeOrTake(e Entity, ids []typeid.ID, collect bool) (map[typeid.ID]any, error) {
	loc, ok := w.entities.Get(e)
	if !ok {
		return nil, &EntityNotFoundError{Entity: e}
	}
	removeSet := make(map[typeid.ID]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}

	var taken map[typeid.ID]any
	if collect {
		taken = make(map[typeid.ID]any, len(ids))
	}

	oldArche := w.archetypes[loc.ArchetypeID]
	for _, id := range oldArche.componentIDs {
		if !removeSet[id] {
			continue
		}
		ci, _ := w.components.Info(id)
		ctx := HookContext{Entity: e, ComponentID: id}
		if ci != nil && ci.Hooks.OnRemove != nil {
			ci.Hooks.OnRemove(w, ctx)
		}
		if collect {
			p := reflect.New(ci.goType)
			p.Elem().Set(reflect.ValueOf(getCellPtr(oldArche, int(loc.ArchetypeRow), ci.goType)).Elem())
			taken[id] = p.Interface()
		}
	}
	for id, ss := range w.sparse {
		if !removeSet[id] {
			continue
		}
		if v, present := ss.values[e]; present {
			ci, _ := w.components.Info(id)
			ctx := HookContext{Entity: e, ComponentID: id}
			if ci != nil && ci.Hooks.OnRemove != nil {
				ci.Hooks.OnRemove(w, ctx)
			}
			if collect {
				taken[id] = v
			}
		}
	}

	remainingInfos := make([]*ComponentInfo, 0, len(oldArche.componentIDs))
	for _, cid := range oldArche.componentIDs {
		if removeSet[cid] {
			continue
		}
		if ci, ok := w.components.Info(cid); ok {
			remainingInfos = append(remainingInfos, ci)
		}
	}
	bundleID := w.bundleIDFor(ids)
	newArche, err := w.getOrCreateArchetypeViaEdge(oldArche, bundleID, false, remainingInfos)
	if err != nil {
		return nil, fmt.Errorf("ecs: remove ids: %w", err)
	}
	newRow := int(loc.ArchetypeRow)
	if newArche != oldArche {
		newRow, _, err = placeNew(newArche, e)
		if err != nil {
			return nil, fmt.Errorf("ecs: remove ids: allocating row: %w", err)
		}
		for _, cid := range oldArche.componentIDs {
			if removeSet[cid] {
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
			return nil, fmt.Errorf("ecs: remove ids: evicting old row: %w", err)
		}
	}
	w.entities.Set(e.Index, EntityLocation{
		ArchetypeID:  newArche.id,
		ArchetypeRow: uint32(newRow),
		TableID:      TableID(newArche.id),
		TableRow:     uint32(newRow),
	})
	for id, ss := range w.sparse {
		if removeSet[id] {
			delete(ss.values, e)
		}
	}
	for _, id := range ids {
		if m, ok := w.ticks[id]; ok {
			delete(m, e)
		}
	}
	return taken, nil
}

// Clear removes every component from e, leaving it alive in the empty
// archetype.
func (w *World) Clear(e Entity) error {
	loc, ok := w.entities.Get(e)
	if !ok {
		return &EntityNotFoundError{Entity: e}
	}
	arche := w.archetypes[loc.ArchetypeID]
	ids := append([]typeid.ID(nil), arche.componentIDs...)
	for id, ss := range w.sparse {
		if _, present := ss.values[e]; present {
			ids = append(ids, id)
		}
	}
	return w.RemoveIDs(e, ids)
}
