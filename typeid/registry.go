package typeid

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ID is a process-wide identifier for a compile-time type. It is stable
// for the lifetime of the process and distinct types are always given
// distinct ids, even under concurrent first use.
type ID uint64

// Info mirrors the static metadata a component or resource type carries:
// size, alignment, a human-readable name, and the thunks this rendition
// uses in place of the original's destructor/move-constructor function
// pointers (the Go garbage collector makes an explicit destructor
// unnecessary; New/Assign stand in for "construct a zero value" and
// "copy one value over another" respectively).
type Info struct {
	ID     ID
	Name   string
	Size   uintptr
	Align  uintptr
	rtype  reflect.Type
	New    func() any
	Assign func(dst, src any)
}

// registry is the single process-wide type registry. The mutex guards
// byGo and is taken by every idFor call, registering or not. Info
// lookups by id go through an atomically published, append-only
// snapshot slice and never contend with each other or with a writer.
type registry struct {
	mu   sync.Mutex
	byGo map[reflect.Type]ID
	// snapshot is a *[]*Info, swapped in atomically after each
	// registration. Index i holds the Info for ID(i).
	snapshot atomic.Pointer[[]*Info]
}

var global = newRegistry()

func newRegistry() *registry {
	r := &registry{byGo: make(map[reflect.Type]ID)}
	empty := make([]*Info, 0)
	r.snapshot.Store(&empty)
	return r
}

// Of returns the stable id for T, registering it on first use. Safe for
// concurrent use from many goroutines; all callers racing on the same T
// observe the same final id.
func Of[T any]() ID {
	rt := reflect.TypeFor[T]()
	return global.idFor(rt, func() any { return new(T) })
}

// InfoOf returns the registered Info for T, registering it first if
// necessary.
func InfoOf[T any]() *Info {
	id := Of[T]()
	return global.infoFor(id)
}

// OfValue returns the stable id for the dynamic type of v, registering
// it on first use if v's type has never been seen.
func OfValue(v any) ID {
	rt := reflect.TypeOf(v)
	return global.idFor(rt, func() any {
		return reflect.New(rt).Interface()
	})
}

// OfType is like Of, but takes a reflect.Type directly. It exists for
// callers (e.g. the ecs package's reflection-based resource_scope) that
// only have a reflect.Type in hand and need the same id space Of[T]
// uses.
func OfType(rt reflect.Type) ID {
	return global.idFor(rt, func() any {
		return reflect.New(rt).Interface()
	})
}

func (r *registry) idFor(rt reflect.Type, zero func() any) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byGo[rt]; ok {
		return id
	}

	old := *r.snapshot.Load()
	id := ID(len(old))
	info := &Info{
		ID:    id,
		Name:  rt.String(),
		Size:  rt.Size(),
		Align: uintptr(rt.Align()),
		rtype: rt,
		New:   zero,
		Assign: func(dst, src any) {
			reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(src).Elem())
		},
	}

	next := make([]*Info, len(old)+1)
	copy(next, old)
	next[id] = info
	r.snapshot.Store(&next)
	r.byGo[rt] = id

	return id
}

// infoFor returns the Info registered for id, or nil if id is out of
// range of anything ever registered.
func (r *registry) infoFor(id ID) *Info {
	snap := *r.snapshot.Load()
	if int(id) >= len(snap) {
		return nil
	}
	return snap[id]
}

// InfoFor retrieves the TypeInfo for a previously-registered id. It
// returns nil if id was never assigned by this process.
func InfoFor(id ID) *Info {
	return global.infoFor(id)
}

// MustInfoFor is like InfoFor but panics with a descriptive message if
// id was never registered; used at internal call sites where an
// unregistered id indicates a programmer error rather than recoverable
// user input.
func MustInfoFor(id ID) *Info {
	info := InfoFor(id)
	if info == nil {
		panic(fmt.Sprintf("typeid: no TypeInfo registered for id %d", id))
	}
	return info
}
