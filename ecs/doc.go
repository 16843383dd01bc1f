/*
Package ecs implements an in-memory Entity-Component-System world:
generational entity handles, archetype-based component storage backed by
dense tables (github.com/TheBitDrifter/table) for common components and
sparse sets for rare ones, per-component lifecycle hooks, change-tick
tracking, required-component expansion, a deferred command queue, and a
typed query engine.

Entities are generational handles allocated by a lock-free reservation
cursor and materialized by an explicit Flush, mirroring the allocator
design of the engine this package's behavior is modeled on. Archetypes
cache the bundle transitions they have already seen so that repeated
structural mutations (the common case in a running simulation) become
O(1) lookups instead of re-deriving the target archetype every time.

Basic usage:

	w := ecs.NewWorld()
	posID := ecs.RegisterComponent[Position](w)
	velID := ecs.RegisterComponent[Velocity](w)

	e := w.Spawn(Position{}, Velocity{X: 1}).ID()

	q := ecs.NewQuery2[Position, Velocity](w, true, false)
	for it := q.Iter(w); it.Next(); {
		pos, vel := it.Get()
		pos.X += vel.X
	}

Package ecs is the storage and query core of a larger engine; scheduling
of systems over a World lives in the sibling ecs/schedule package, and
the render-graph runner lives in the sibling rendergraph package.
*/
package ecs
