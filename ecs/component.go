package ecs

import (
	"reflect"
	"sort"

	"github.com/TheBitDrifter/table"
	"github.com/epix-go/epix/typeid"
)

// Component is a component marker: a table.ElementType handed to the
// underlying dense table builder. RegisterComponent builds one with
// table.FactoryNewElementType[T] for every registered component type
// and stores it as ComponentInfo.Marker.
type Component interface {
	table.ElementType
}

// StorageKind selects which backend holds a component's values.
// Dense-storage components live in the archetype's table (fast
// iteration, archetype-change cost on add/remove); Sparse components
// live in a per-type sparse set (cheap add/remove, no archetype
// transition, slower iteration).
type StorageKind int

const (
	Dense StorageKind = iota
	Sparse
)

// HookContext is passed to a ComponentHooks callback.
type HookContext struct {
	Entity      Entity
	ComponentID typeid.ID
}

// HookFunc is a component lifecycle callback. It receives the world so
// it may itself mutate storage, e.g. to spawn or despawn children.
type HookFunc func(w *World, ctx HookContext)

// ComponentHooks are the lifecycle callbacks fired around a component's
// add/insert/replace/remove/despawn events.
type ComponentHooks struct {
	OnAdd     HookFunc
	OnInsert  HookFunc
	OnReplace HookFunc
	OnRemove  HookFunc
	OnDespawn HookFunc
}

// requiredEntry is one edge of a ComponentInfo's required-components
// tree: the minimal depth at which the dependency was discovered, and
// the constructor used to auto-insert it when a bundle omits it.
type requiredEntry struct {
	depth int
	ctor  func() any
}

// ComponentInfo is the per-TypeId metadata recorded by a World's
// Components registry.
type ComponentInfo struct {
	ID      typeid.ID
	Name    string
	Size    uintptr
	Align   uintptr
	Storage StorageKind
	Hooks   ComponentHooks
	New     func() any
	Marker  Component

	required map[typeid.ID]requiredEntry
	goType   reflect.Type
}

// RequiredIDs returns the component ids automatically inserted whenever
// this component is, ordered by increasing depth.
func (ci *ComponentInfo) RequiredIDs() []typeid.ID {
	ids := make([]typeid.ID, 0, len(ci.required))
	for id := range ci.required {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		di, dj := ci.required[ids[i]].depth, ci.required[ids[j]].depth
		if di != dj {
			return di < dj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// RequiredCtor returns the auto-insert constructor for a required
// component id, or nil if id is not one of this component's
// requirements.
func (ci *ComponentInfo) RequiredCtor(id typeid.ID) func() any {
	if e, ok := ci.required[id]; ok {
		return e.ctor
	}
	return nil
}

// Components is the per-World component metadata registry, scoped to a
// single World rather than shared process-wide state, and layered over
// warehouse's existing AccessibleComponent marker scheme.
type Components struct {
	infos        map[typeid.ID]*ComponentInfo
	byGoType     map[reflect.Type]*ComponentInfo
	sparseMarked map[typeid.ID]bool
}

func newComponents() *Components {
	return &Components{
		infos:        make(map[typeid.ID]*ComponentInfo),
		byGoType:     make(map[reflect.Type]*ComponentInfo),
		sparseMarked: make(map[typeid.ID]bool),
	}
}

// markSparse records that the component identified by id should use the
// Sparse storage backend the next time it is registered. Calling it
// after the component has already been registered has no effect.
func (c *Components) markSparse(id typeid.ID) {
	c.sparseMarked[id] = true
}

// register idempotently creates, or returns the existing, ComponentInfo
// for id.
func (c *Components) register(id typeid.ID, goType reflect.Type, name string, size, align uintptr, newFn func() any, marker Component) *ComponentInfo {
	if existing, ok := c.infos[id]; ok {
		return existing
	}
	kind := Dense
	if c.sparseMarked[id] {
		kind = Sparse
	}
	ci := &ComponentInfo{
		ID:       id,
		Name:     name,
		Size:     size,
		Align:    align,
		Storage:  kind,
		New:      newFn,
		Marker:   marker,
		required: make(map[typeid.ID]requiredEntry),
		goType:   goType,
	}
	c.infos[id] = ci
	c.byGoType[goType] = ci
	return ci
}

// Info returns the metadata registered for id.
func (c *Components) Info(id typeid.ID) (*ComponentInfo, bool) {
	ci, ok := c.infos[id]
	return ci, ok
}

// infoForValue resolves the ComponentInfo for the dynamic type of v,
// which must already have been registered via RegisterComponent.
func (c *Components) infoForValue(v any) (*ComponentInfo, bool) {
	ci, ok := c.byGoType[reflect.TypeOf(v)]
	return ci, ok
}

// requireComponent records that owner requires the component identified
// by required to be present, auto-inserted via ctor when absent, and
// propagates the requirement transitively to anything that already
// requires owner, keeping the minimal depth.
func (c *Components) requireComponent(owner, required typeid.ID, ctor func() any) {
	ownerInfo, ok := c.infos[owner]
	if !ok {
		return
	}
	if _, ok := c.infos[required]; !ok {
		return
	}
	setMinDepth(ownerInfo, required, 1, ctor)
	for _, other := range c.infos {
		if e, has := other.required[owner]; has {
			setMinDepth(other, required, e.depth+1, ctor)
		}
	}
}

func setMinDepth(info *ComponentInfo, id typeid.ID, depth int, ctor func() any) {
	if existing, has := info.required[id]; !has || depth < existing.depth {
		info.required[id] = requiredEntry{depth: depth, ctor: ctor}
	}
}
