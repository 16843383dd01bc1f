package ecs

import "sync/atomic"

// Entity is a generational handle: (generation, index). Two entities are
// equal iff both halves match, so a freed and later reused index never
// compares equal to its earlier incarnation.
type Entity struct {
	Generation uint32
	Index      uint32
}

// ArchetypeID identifies an archetype within a World. TableID identifies
// the dense table backing an archetype's Dense-storage components;
// several archetypes that differ only in their Sparse components share
// one TableID.
type ArchetypeID uint32
type TableID uint32

const invalidU32 = ^uint32(0)

// EntityLocation records where a live entity's components are stored.
type EntityLocation struct {
	ArchetypeID  ArchetypeID
	ArchetypeRow uint32
	TableID      TableID
	TableRow     uint32
}

// InvalidLocation is the sentinel for a reserved-but-unflushed or freed
// entity.
var InvalidLocation = EntityLocation{
	ArchetypeID:  ArchetypeID(invalidU32),
	ArchetypeRow: invalidU32,
	TableID:      TableID(invalidU32),
	TableRow:     invalidU32,
}

// IsInvalid reports whether l is the InvalidLocation sentinel.
func (l EntityLocation) IsInvalid() bool { return l.ArchetypeID == ArchetypeID(invalidU32) }

type entityMeta struct {
	generation uint32
	location   EntityLocation
}

// entities is the generational handle allocator.
//
// ReserveEntity / ReserveEntities use only the atomic free cursor and
// never touch meta/pending directly, so they are safe to call
// concurrently from many goroutines. They must not, however, run
// concurrently with Alloc, Free, or Flush: those mutate meta/pending in
// place and the package contract (mirrored from the engine this type
// models) is that reservation only ever overlaps with other
// reservations, never with a flush. Flush is always called from the
// single scheduler goroutine between concurrent phases.
type entities struct {
	meta       []entityMeta
	pending    []uint32
	freeCursor atomic.Int64
}

func newEntities() *entities {
	return &entities{}
}

// ReserveEntity reserves a single entity id without allocating storage
// for it. The entity becomes visible to Get only after Flush.
func (e *entities) ReserveEntity() Entity {
	newVal := e.freeCursor.Add(-1)
	old := newVal + 1
	if old > 0 {
		idx := e.pending[old-1]
		return Entity{Generation: e.meta[idx].generation, Index: idx}
	}
	idx := uint32(int64(len(e.meta)) - old)
	return Entity{Generation: 0, Index: idx}
}

// ReserveEntities reserves count entity ids in bulk. The set of returned
// indices is disjoint from any concurrently reserved set, but no
// ordering is guaranteed between concurrent callers beyond that.
func (e *entities) ReserveEntities(count int) []Entity {
	if count <= 0 {
		return nil
	}
	rangeEndOld := e.freeCursor.Add(-int64(count)) + int64(count)
	rangeStart := rangeEndOld - int64(count)
	base := int64(len(e.meta))

	result := make([]Entity, 0, count)
	for idx := rangeStart; idx < rangeEndOld; idx++ {
		if idx < 0 {
			index := uint32(base - idx - 1)
			result = append(result, Entity{Generation: 0, Index: index})
		} else {
			pidx := e.pending[idx]
			result = append(result, Entity{Generation: e.meta[pidx].generation, Index: pidx})
		}
	}
	return result
}

// NeedsFlush reports whether there are outstanding reservations that
// have not yet been materialized by Flush.
func (e *entities) NeedsFlush() bool {
	return e.freeCursor.Load() != int64(len(e.pending))
}

func (e *entities) assertFlushed() {
	if e.NeedsFlush() {
		panic("ecs: entities must be flushed before this operation")
	}
}

// Alloc immediately allocates a new entity id. Requires !NeedsFlush().
func (e *entities) Alloc() Entity {
	e.assertFlushed()
	if n := len(e.pending); n > 0 {
		idx := e.pending[n-1]
		e.pending = e.pending[:n-1]
		e.freeCursor.Store(int64(len(e.pending)))
		return Entity{Generation: e.meta[idx].generation, Index: idx}
	}
	idx := uint32(len(e.meta))
	e.meta = append(e.meta, entityMeta{location: InvalidLocation})
	return Entity{Generation: 0, Index: idx}
}

// Free releases entity, bumping its generation so later handles to the
// same index never alias it, and returns its last known location.
func (e *entities) Free(entity Entity) (EntityLocation, bool) {
	e.assertFlushed()
	if int(entity.Index) >= len(e.meta) {
		return EntityLocation{}, false
	}
	m := &e.meta[entity.Index]
	if m.generation != entity.Generation {
		return EntityLocation{}, false
	}
	m.generation++
	loc := m.location
	m.location = InvalidLocation
	e.pending = append(e.pending, entity.Index)
	e.freeCursor.Store(int64(len(e.pending)))
	return loc, true
}

// Reserve ensures at least count additional allocations can be made
// without growing meta.
func (e *entities) Reserve(count int) {
	e.assertFlushed()
	freeSize := e.freeCursor.Load()
	need := int64(count) - freeSize
	if need > 0 {
		grown := make([]entityMeta, len(e.meta), len(e.meta)+int(need))
		copy(grown, e.meta)
		e.meta = grown
	}
}

// Get returns the location of entity, or false if it was never
// allocated, has been freed, or is a pending (unflushed) reservation.
func (e *entities) Get(entity Entity) (EntityLocation, bool) {
	if int(entity.Index) >= len(e.meta) {
		return EntityLocation{}, false
	}
	m := e.meta[entity.Index]
	if m.generation != entity.Generation || m.location.IsInvalid() {
		return EntityLocation{}, false
	}
	return m.location, true
}

// Contains reports whether entity's generation is the current one for
// its index, i.e. the handle has been allocated and not since freed.
// Unlike Get, it does not require a location to have been recorded.
func (e *entities) Contains(entity Entity) bool {
	return int(entity.Index) < len(e.meta) && e.meta[entity.Index].generation == entity.Generation
}

// Set updates the location recorded for the entity at index.
func (e *entities) Set(index uint32, location EntityLocation) {
	e.meta[index].location = location
}

// ReserveGenerations bumps the generation of a freed (not yet
// reallocated) index by generations, for aliasing protection of
// long-dead external handles. Returns false if index was never
// allocated or is currently live.
func (e *entities) ReserveGenerations(index uint32, generations uint32) bool {
	if int(index) >= len(e.meta) {
		return false
	}
	if e.meta[index].location.IsInvalid() {
		e.meta[index].generation += generations
		return true
	}
	return false
}

// Flush materializes all outstanding reservations: it grows meta to
// cover newly-reserved indices and pops recycled ones off pending,
// calling fn(entity, &location) for each so the caller can initialize
// the entity's storage location (typically to the empty archetype).
func (e *entities) Flush(fn func(Entity, *EntityLocation)) {
	n := e.freeCursor.Load()
	if n < 0 {
		oldLen := len(e.meta)
		newLen := oldLen + int(-n)
		grown := make([]entityMeta, newLen)
		copy(grown, e.meta)
		e.meta = grown
		for i := oldLen; i < newLen; i++ {
			fn(Entity{Generation: e.meta[i].generation, Index: uint32(i)}, &e.meta[i].location)
		}
		e.freeCursor.Store(0)
		n = 0
	}
	for _, idx := range e.pending[n:] {
		fn(Entity{Generation: e.meta[idx].generation, Index: idx}, &e.meta[idx].location)
	}
	e.pending = e.pending[:n]
}

// TotalCount is the number of entities ever allocated (flushed),
// including freed ones.
func (e *entities) TotalCount() int { return len(e.meta) }

// UsedCount is the count of allocated-and-flushed entities not
// currently free.
func (e *entities) UsedCount() int { return len(e.meta) - int(e.freeCursor.Load()) }

// Size is the count of currently allocated (non-pending, non-freed)
// entities.
func (e *entities) Size() int { return len(e.meta) - len(e.pending) }

// Empty reports whether Size() == 0.
func (e *entities) Empty() bool { return e.Size() == 0 }
