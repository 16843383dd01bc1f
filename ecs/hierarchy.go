package ecs

// Parent links an entity to the entity that spawned it via
// EntityWorldMut.Spawn. Inserting Parent adds the carrying entity to the
// target's Children set; removing Parent (including via Despawn) takes
// it back out.
type Parent struct {
	Entity Entity
}

// Children holds every entity whose Parent currently points back at
// this entity. Despawning an entity cascades: every entity still listed
// in its Children is despawned too.
type Children struct {
	Entities map[Entity]bool
}

// RegisterHierarchy registers Parent and Children as sparse components
// and installs the hooks that keep Children in sync with Parent
// insertion/removal and cascade despawn through Children. Call it once
// per World before using EntityWorldMut.Spawn.
func RegisterHierarchy(w *World) {
	MarkSparse[Parent](w)
	MarkSparse[Children](w)
	RegisterComponent[Parent](w)
	RegisterComponent[Children](w)

	SetHooks[Parent](w, ComponentHooks{
		OnInsert: func(w *World, ctx HookContext) {
			p, ok := Get[Parent](w, ctx.Entity)
			if !ok {
				return
			}
			linkChild(w, p.Entity, ctx.Entity)
		},
		OnRemove: func(w *World, ctx HookContext) {
			p, ok := Get[Parent](w, ctx.Entity)
			if !ok {
				return
			}
			unlinkChild(w, p.Entity, ctx.Entity)
		},
	})

	SetHooks[Children](w, ComponentHooks{
		OnDespawn: func(w *World, ctx HookContext) {
			c, ok := Get[Children](w, ctx.Entity)
			if !ok {
				return
			}
			for child := range c.Entities {
				w.Despawn(child)
			}
		},
	})
}

func linkChild(w *World, parent, child Entity) {
	if c, ok := Get[Children](w, parent); ok {
		c.Entities[child] = true
		return
	}
	w.InsertBundle(parent, Children{Entities: map[Entity]bool{child: true}})
}

func unlinkChild(w *World, parent, child Entity) {
	c, ok := Get[Children](w, parent)
	if !ok {
		return
	}
	delete(c.Entities, child)
}

// Spawn creates a new entity carrying values and a Parent pointing at e,
// linking it into e's Children set. Mirrors World.Spawn but for a child
// spawned under an already-live entity.
func (e EntityWorldMut) Spawn(values ...any) *EntityWorldMut {
	childValues := append(append([]any{}, values...), Parent{Entity: e.entity})
	return e.world.Spawn(childValues...)
}
