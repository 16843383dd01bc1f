package ecs

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/TheBitDrifter/bark"
	"github.com/epix-go/epix/typeid"
)

// EntityWorldMut is a handle returned by Spawn and World.Entity, bound
// to one entity and the World that owns it. Its structural methods
// (Insert, InsertIfNew, Remove, Take, Clear) panic with a plain message
// if the operation fails, for example because the entity has since been
// despawned; Despawn returns an error instead, and ID and Valid never
// panic.
type EntityWorldMut struct {
	world  *World
	entity Entity
}

// ID returns the underlying generational Entity handle.
func (e EntityWorldMut) ID() Entity { return e.entity }

// Valid reports whether the entity is still alive.
func (e EntityWorldMut) Valid() bool { return e.world.entities.Contains(e.entity) }

// Spawn creates a new entity carrying exactly the given component
// values (each value's type must already have been passed to
// RegisterComponent), expanding required components, and fires OnAdd
// then OnInsert hooks for every resulting component in ascending
// typeid.ID order.
func (w *World) Spawn(values ...any) *EntityWorldMut {
	rb := w.resolveBundle(values)

	var denseInfos []*ComponentInfo
	for _, id := range rb.ids {
		if rb.infos[id].Storage == Dense {
			denseInfos = append(denseInfos, rb.infos[id])
		}
	}

	arche, err := w.getOrCreateArchetype(denseInfos)
	if err != nil {
		panic(fmt.Sprintf("ecs: spawn: %v", err))
	}

	ent := w.entities.Alloc()
	row, _, err := placeNew(arche, ent)
	if err != nil {
		panic(fmt.Sprintf("ecs: spawn: allocating row: %v", err))
	}
	w.entities.Set(ent.Index, EntityLocation{
		ArchetypeID:  arche.id,
		ArchetypeRow: uint32(row),
		TableID:      TableID(arche.id),
		TableRow:     uint32(row),
	})

	tick := w.Tick()
	for _, id := range rb.ids {
		info := rb.infos[id]
		v := rb.values[id]
		if info.Storage == Dense {
			setCell(arche, row, v)
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
			ss.values[ent] = v
		}
		w.recordTick(id, ent, tick, tick)
	}
	for _, id := range rb.ids {
		info := rb.infos[id]
		ctx := HookContext{Entity: ent, ComponentID: id}
		if info.Hooks.OnAdd != nil {
			info.Hooks.OnAdd(w, ctx)
		}
		if info.Hooks.OnInsert != nil {
			info.Hooks.OnInsert(w, ctx)
		}
	}

	return &EntityWorldMut{world: w, entity: ent}
}

// Entity returns a handle to an already-live entity. It panics with an
// *EntityNotFoundError (wrapped by bark.AddTrace) if e is not currently
// allocated.
func (w *World) Entity(e Entity) *EntityWorldMut {
	if !w.entities.Contains(e) {
		panic(bark.AddTrace(&EntityNotFoundError{Entity: e}))
	}
	return &EntityWorldMut{world: w, entity: e}
}

// recordTick stamps the (added, changed) tick pair for one component on
// one entity; ticks are tracked in a World-level side-map rather than
// embedded in table columns, since the exact row-copy behavior of
// table.Table's internal operations is not fully evidenced and a
// side-map keeps tick bookkeeping independent of it.
func (w *World) recordTick(id typeid.ID, e Entity, added, changed Tick) {
	m, ok := w.ticks[id]
	if !ok {
		m = make(map[Entity]tickPair)
		w.ticks[id] = m
	}
	m[e] = tickPair{added: added, changed: changed}
}

func (w *World) touchTick(id typeid.ID, e Entity) {
	m, ok := w.ticks[id]
	if !ok {
		m = make(map[Entity]tickPair)
		w.ticks[id] = m
	}
	prev := m[e]
	m[e] = tickPair{added: prev.added, changed: w.Tick()}
}

// Despawn removes an entity and every component it carries, firing
// OnRemove then OnDespawn hooks for each in ascending typeid.ID order
// before the entity is actually freed.
func (w *World) Despawn(e Entity) error {
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
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		info, ok := w.components.Info(id)
		if !ok {
			continue
		}
		ctx := HookContext{Entity: e, ComponentID: id}
		if info.Hooks.OnRemove != nil {
			info.Hooks.OnRemove(w, ctx)
		}
		if info.Hooks.OnDespawn != nil {
			info.Hooks.OnDespawn(w, ctx)
		}
	}

	if err := w.removeRow(arche, loc.ArchetypeRow); err != nil {
		return fmt.Errorf("ecs: despawn: %w", err)
	}
	for _, ss := range w.sparse {
		delete(ss.values, e)
	}
	for _, m := range w.ticks {
		delete(m, e)
	}
	w.entities.Free(e)
	return nil
}

// Despawn is equivalent to w.world.Despawn(w.entity).
func (e EntityWorldMut) Despawn() error { return e.world.Despawn(e.entity) }

// Get retrieves the component of type T on entity e, returning false if
// it is absent or the entity is dead.
func Get[T any](w *World, e Entity) (*T, bool) {
	id := typeid.Of[T]()
	info, ok := w.components.Info(id)
	if !ok {
		return nil, false
	}
	if info.Storage == Sparse {
		ss, ok := w.sparse[id]
		if !ok {
			return nil, false
		}
		v, ok := ss.values[e]
		if !ok {
			return nil, false
		}
		return v.(*T), true
	}
	loc, ok := w.entities.Get(e)
	if !ok {
		return nil, false
	}
	arche := w.archetypes[loc.ArchetypeID]
	if !arche.Contains(id) {
		return nil, false
	}
	ptr := getCellPtr(arche, int(loc.ArchetypeRow), info.goType)
	if ptr == nil {
		return nil, false
	}
	return ptr.(*T), true
}

// GetMut is like Get but additionally bumps the component's changed
// tick, so queries with a Changed[T] filter observe this access.
func GetMut[T any](w *World, e Entity) (*T, bool) {
	v, ok := Get[T](w, e)
	if ok {
		w.touchTick(typeid.Of[T](), e)
	}
	return v, ok
}

// Has reports whether entity e currently carries component T.
func Has[T any](w *World, e Entity) bool {
	return w.hasComponent(e, typeid.Of[T]())
}
