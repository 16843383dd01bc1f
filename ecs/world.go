package ecs

import (
	"reflect"
	"sync/atomic"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"github.com/epix-go/epix/typeid"
)

// BundleID identifies one distinct, order-independent set of component
// types passed to InsertBundle, RemoveIDs/TakeIDs or RegisterBundle. It
// is assigned the first time that
// exact set is seen, and reused afterward as an O(1) key into an
// archetype's edge cache.
type BundleID uint32

// World owns every entity, component value, resource, and archetype
// created through it. A World is not safe for concurrent use by
// multiple goroutines except where a method's doc comment says
// otherwise (ReserveEntity/ReserveEntities, and system parameter access
// mediated by the ecs/schedule dispatcher's declared-conflict
// scheduling).
type World struct {
	entities   *entities
	components *Components
	resources  *Resources

	schema     table.Schema
	entryIndex table.EntryIndex

	archetypes    []*Archetype
	archByMask    map[mask.Mask]ArchetypeID
	bundleByKey   map[string]BundleID
	nextBundleID  BundleID
	bundleTypeIDs map[typeid.ID]BundleID

	sparse map[typeid.ID]*sparseSet

	ticks      map[typeid.ID]map[Entity]tickPair
	changeTick atomic.Uint32

	commands *CommandQueue

	locked atomic.Int32
}

// NewWorld creates an empty World, with one table.Schema and
// table.EntryIndex shared by every archetype table it builds.
func NewWorld() *World {
	w := &World{
		entities:      newEntities(),
		components:    newComponents(),
		resources:     newResources(),
		schema:        table.Factory.NewSchema(),
		entryIndex:    table.Factory.NewEntryIndex(),
		archByMask:    make(map[mask.Mask]ArchetypeID),
		bundleByKey:   make(map[string]BundleID),
		bundleTypeIDs: make(map[typeid.ID]BundleID),
		sparse:        make(map[typeid.ID]*sparseSet),
		ticks:         make(map[typeid.ID]map[Entity]tickPair),
		commands:      newCommandQueue(),
	}
	w.archetypes = append(w.archetypes, emptyArchetype())
	return w
}

// RegisterComponent records T as a component type usable with this
// World, returning its stable typeid.ID. Calling it more than once for
// the same T is a no-op past the first call.
func RegisterComponent[T any](w *World) typeid.ID {
	id := typeid.Of[T]()
	rt := reflect.TypeFor[T]()
	marker := table.FactoryNewElementType[T]()
	w.components.register(id, rt, rt.String(), rt.Size(), uintptr(rt.Align()), func() any { return new(T) }, marker)
	return id
}

// MarkSparse declares that T should be stored in a per-type sparse set
// rather than in archetype tables. It must be called before T's first
// RegisterComponent call.
func MarkSparse[T any](w *World) {
	w.components.markSparse(typeid.Of[T]())
}

// RequireComponent declares that whenever a bundle insert gives an
// entity component O (owner), component R (required) must also be
// present, auto-constructed with ctor if the bundle did not supply it.
func RequireComponent[O, R any](w *World, ctor func() R) {
	owner := typeid.Of[O]()
	required := typeid.Of[R]()
	RegisterComponent[R](w)
	w.components.requireComponent(owner, required, func() any { v := ctor(); return &v })
}

// SetHooks installs lifecycle hooks for component type T.
func SetHooks[T any](w *World, hooks ComponentHooks) {
	id := typeid.Of[T]()
	if info, ok := w.components.Info(id); ok {
		info.Hooks = hooks
	}
}

// Tick returns the World's current change tick, advanced once per
// schedule run by Schedule.Run via AdvanceTick.
func (w *World) Tick() Tick { return Tick(w.changeTick.Load()) }

// AdvanceTick increments and returns the new change tick. Called by
// Schedule.Run after each system-graph execution, never mid-run.
func (w *World) AdvanceTick() Tick {
	return Tick(w.changeTick.Add(1))
}

// Locked reports whether the World's structural-mutation lock is held.
// No query iteration or schedule run in this module takes the lock, so
// Locked reports false.
func (w *World) Locked() bool { return w.locked.Load() > 0 }

func (w *World) lock()   { w.locked.Add(1) }
func (w *World) unlock() {
	if w.locked.Add(-1) == 0 {
		w.commands.Apply(w)
	}
}

// Commands returns the World's own deferred command queue. System
// parameters of type Commands (ecs/schedule) do not use it: each gets
// its own queue, applied after that system runs.
func (w *World) Commands() *CommandQueue { return w.commands }

// FlushCommands immediately applies every command queued on the World's
// own queue. The schedule dispatcher does not call it; commands pushed
// here run only when FlushCommands is called.
func (w *World) FlushCommands() { w.commands.Apply(w) }
