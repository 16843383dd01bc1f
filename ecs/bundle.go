package ecs

import (
	"fmt"
	"sort"

	"github.com/epix-go/epix/typeid"
)

// resolvedBundle is the result of matching a caller's Spawn/Insert
// values against the World's Components registry: the values
// explicitly supplied, plus any auto-inserted required components, all
// split by storage kind.
type resolvedBundle struct {
	ids    []typeid.ID
	values map[typeid.ID]any
	infos  map[typeid.ID]*ComponentInfo
}

// resolveBundle maps each value in values to its registered
// ComponentInfo (by dynamic Go type) and expands required components
// transitively. It panics if a value's type was never passed to
// RegisterComponent, with a plain string message naming the offending
// type.
func (w *World) resolveBundle(values []any) *resolvedBundle {
	rb := &resolvedBundle{
		values: make(map[typeid.ID]any, len(values)),
		infos:  make(map[typeid.ID]*ComponentInfo, len(values)),
	}
	for _, v := range values {
		info, ok := w.components.infoForValue(v)
		if !ok {
			panic(fmt.Sprintf("ecs: value of type %T was never registered with RegisterComponent", v))
		}
		rb.values[info.ID] = v
		rb.infos[info.ID] = info
	}

	// Expand required components to a fixed point: a required component
	// may itself carry further requirements.
	for changed := true; changed; {
		changed = false
		for id, info := range rb.infos {
			_ = id
			for _, reqID := range info.RequiredIDs() {
				if _, present := rb.infos[reqID]; present {
					continue
				}
				reqInfo, ok := w.components.Info(reqID)
				if !ok {
					continue
				}
				ctor := info.RequiredCtor(reqID)
				if ctor == nil {
					ctor = reqInfo.New
				}
				rb.infos[reqID] = reqInfo
				rb.values[reqID] = ctor()
				changed = true
			}
		}
	}

	rb.ids = make([]typeid.ID, 0, len(rb.infos))
	for id := range rb.infos {
		rb.ids = append(rb.ids, id)
	}
	sort.Slice(rb.ids, func(i, j int) bool { return rb.ids[i] < rb.ids[j] })
	return rb
}

// bundleKey returns the stable byte-key for an (order-independent) set
// of component ids, used to assign and look up BundleIDs.
func bundleKey(ids []typeid.ID) string {
	sorted := append([]typeid.ID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	buf := make([]byte, 0, len(sorted)*8)
	for _, id := range sorted {
		buf = append(buf,
			byte(id), byte(id>>8), byte(id>>16), byte(id>>24),
			byte(id>>32), byte(id>>40), byte(id>>48), byte(id>>56),
		)
	}
	return string(buf)
}

// bundleIDFor returns the stable BundleID for this exact set of ids,
// assigning a new one on first sight.
func (w *World) bundleIDFor(ids []typeid.ID) BundleID {
	key := bundleKey(ids)
	if id, ok := w.bundleByKey[key]; ok {
		return id
	}
	id := w.nextBundleID
	w.nextBundleID++
	w.bundleByKey[key] = id
	return id
}

// RegisterBundle associates the static type T with the BundleID for
// ids, the set of component types T's bundle struct carries. Calling it
// again for the same T with a different component set (a bundle
// definition that changed shape without a matching call site update)
// returns a *BundleConflictError naming the BundleID T was first
// registered under.
func RegisterBundle[T any](w *World, ids ...typeid.ID) (BundleID, error) {
	newID := w.bundleIDFor(ids)
	typeID := typeid.Of[T]()
	if existing, ok := w.bundleTypeIDs[typeID]; ok {
		if existing != newID {
			return 0, &BundleConflictError{ID: existing}
		}
		return existing, nil
	}
	w.bundleTypeIDs[typeID] = newID
	return newID, nil
}

// SpawnBundle registers T's component set (if not already registered)
// and spawns a new entity carrying values, giving RegisterBundle a
// reachable, non-test call site distinct from the untyped Spawn path.
func SpawnBundle[T any](w *World, values ...any) (*EntityWorldMut, error) {
	rb := w.resolveBundle(values)
	if _, err := RegisterBundle[T](w, rb.ids...); err != nil {
		return nil, err
	}
	return w.Spawn(values...), nil
}
