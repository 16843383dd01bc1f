package ecs

import "github.com/epix-go/epix/typeid"

// EntityRef is a read-only view over a single entity. Unlike
// EntityWorldMut it never triggers a structural change, so it is safe
// to hold across a query iteration.
type EntityRef struct {
	world  *World
	entity Entity
}

// Ref returns a read-only view of e, or false if e is not alive.
func (w *World) Ref(e Entity) (EntityRef, bool) {
	if !w.entities.Contains(e) {
		return EntityRef{}, false
	}
	return EntityRef{world: w, entity: e}, true
}

// ID returns the entity this view is bound to.
func (r EntityRef) ID() Entity { return r.entity }

// Contains reports whether the component identified by id is present.
func (r EntityRef) Contains(id typeid.ID) bool { return r.world.hasComponent(r.entity, id) }

// GetTicksOn returns the (added, changed) ticks recorded for component T
// on this entity, or false if absent.
func GetTicksOn[T any](r EntityRef) (added, changed Tick, ok bool) {
	id := typeid.Of[T]()
	m, hasAny := r.world.ticks[id]
	if !hasAny {
		return 0, 0, false
	}
	t, present := m[r.entity]
	if !present {
		return 0, 0, false
	}
	return t.added, t.changed, true
}

// GetOn retrieves component T from the entity behind an EntityRef.
func GetOn[T any](r EntityRef) (*T, bool) { return Get[T](r.world, r.entity) }

// EntityRefMut additionally allows mutating existing component values
// in place (via GetMutOn), without permitting structural changes
// (insert/remove) that EntityWorldMut allows.
type EntityRefMut struct {
	EntityRef
}

// RefMut returns a mutable (non-structural) view of e, or false if e
// is not alive.
func (w *World) RefMut(e Entity) (EntityRefMut, bool) {
	ref, ok := w.Ref(e)
	if !ok {
		return EntityRefMut{}, false
	}
	return EntityRefMut{EntityRef: ref}, true
}

// GetMutOn retrieves a mutable pointer to component T on the entity
// behind r, bumping its changed tick.
func GetMutOn[T any](r EntityRefMut) (*T, bool) { return GetMut[T](r.world, r.entity) }

// Insert attaches every value as a single structural transition and
// returns the same handle for chaining, panicking on a dead entity
// (programmer error).
func (e *EntityWorldMut) Insert(values ...any) *EntityWorldMut {
	if err := e.world.InsertBundle(e.entity, values...); err != nil {
		panic("ecs: EntityWorldMut.Insert: " + err.Error())
	}
	return e
}

// InsertIfNew is Insert but silently skips any value whose component
// type is already present.
func (e *EntityWorldMut) InsertIfNew(values ...any) *EntityWorldMut {
	if err := e.world.InsertIfNew(e.entity, values...); err != nil {
		panic("ecs: EntityWorldMut.InsertIfNew: " + err.Error())
	}
	return e
}

// Remove detaches the components identified by ids in one structural
// transition.
func (e *EntityWorldMut) Remove(ids ...typeid.ID) *EntityWorldMut {
	if err := e.world.RemoveIDs(e.entity, ids); err != nil {
		panic("ecs: EntityWorldMut.Remove: " + err.Error())
	}
	return e
}

// Take is Remove but returns the removed values keyed by typeid.ID.
func (e *EntityWorldMut) Take(ids ...typeid.ID) map[typeid.ID]any {
	taken, err := e.world.TakeIDs(e.entity, ids)
	if err != nil {
		panic("ecs: EntityWorldMut.Take: " + err.Error())
	}
	return taken
}

// Clear removes every component from the entity.
func (e *EntityWorldMut) Clear() *EntityWorldMut {
	if err := e.world.Clear(e.entity); err != nil {
		panic("ecs: EntityWorldMut.Clear: " + err.Error())
	}
	return e
}

// GetEntity returns a fallible read-only view, the non-panicking
// counterpart to Entity.
func (w *World) GetEntity(e Entity) (EntityRef, bool) { return w.Ref(e) }

// GetEntityMut returns a fallible mutable (non-structural) view.
func (w *World) GetEntityMut(e Entity) (EntityRefMut, bool) { return w.RefMut(e) }
