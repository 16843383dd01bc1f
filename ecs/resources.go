package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/bark"
	"github.com/epix-go/epix/typeid"
)

// resourceCell is the per-TypeId cell backing one resource: an optional
// typed value plus the (added, changed) ticks every resource carries.
// Lifetime is the process, unless RemoveResource / TakeResource is
// called.
type resourceCell struct {
	value any
	ticks tickPair
}

// Resources is the World's resource registry, kept as a plain map
// behind the owning World (no locking: resources are only ever touched
// from the goroutine currently holding the World, exactly like
// component storage).
type Resources struct {
	cells map[typeid.ID]*resourceCell
}

func newResources() *Resources {
	return &Resources{cells: make(map[typeid.ID]*resourceCell)}
}

// FromWorld is the Go stand-in for the source's FromWorld trait: a
// resource type that knows how to construct its own default value from
// the World, used by InitResource and ResourceOrInit.
type FromWorld[T any] interface {
	FromWorld(w *World) T
}

func resourceIDFor[T any]() typeid.ID { return typeid.Of[T]() }

// GetResource returns the resource of type T, or false if it is absent.
func GetResource[T any](w *World) (*T, bool) {
	cell, ok := w.resources.cells[resourceIDFor[T]()]
	if !ok {
		return nil, false
	}
	return cell.value.(*T), true
}

// ResourceMut returns a mutable pointer to resource T, panicking (a
// programmer error) if it is absent. It bumps the resource's changed
// tick.
func ResourceMut[T any](w *World) *T {
	v, ok := GetResource[T](w)
	if !ok {
		var zero T
		panic(bark.AddTrace(&ResourceNotFoundError{Type: reflect.TypeOf(zero).String()}))
	}
	w.touchResourceTick(resourceIDFor[T]())
	return v
}

// InsertResource installs value as the World's resource of type T,
// overwriting any previous value and resetting its added tick.
func InsertResource[T any](w *World, value T) {
	id := resourceIDFor[T]()
	tick := w.Tick()
	w.resources.cells[id] = &resourceCell{value: &value, ticks: tickPair{added: tick, changed: tick}}
}

// InitResource installs the FromWorld-constructed default value for T
// if no resource of that type is present yet, and returns it either
// way.
func InitResource[T FromWorld[T]](w *World) *T {
	id := resourceIDFor[T]()
	if cell, ok := w.resources.cells[id]; ok {
		return cell.value.(*T)
	}
	var zero T
	v := zero.FromWorld(w)
	InsertResource[T](w, v)
	return GetResourceOrPanic[T](w)
}

// GetResourceOrPanic is ResourceMut without the changed-tick bump; used
// internally immediately after a guaranteed-present Insert.
func GetResourceOrPanic[T any](w *World) *T {
	v, ok := GetResource[T](w)
	if !ok {
		panic("ecs: resource unexpectedly absent immediately after insert")
	}
	return v
}

// ResourceOrInit returns the existing resource of type T, or
// initializes and returns its FromWorld default.
func ResourceOrInit[T FromWorld[T]](w *World) *T {
	return InitResource[T](w)
}

// TakeResource removes and returns the resource of type T, or the zero
// value and false if it was not present.
func TakeResource[T any](w *World) (T, bool) {
	id := resourceIDFor[T]()
	cell, ok := w.resources.cells[id]
	if !ok {
		var zero T
		return zero, false
	}
	delete(w.resources.cells, id)
	return *cell.value.(*T), true
}

// RemoveResource drops the resource of type T, if present.
func RemoveResource[T any](w *World) {
	delete(w.resources.cells, resourceIDFor[T]())
}

// GetResourceTicks returns the (added, changed) ticks recorded for
// resource T, or false if it is absent.
func GetResourceTicks[T any](w *World) (added, changed Tick, ok bool) {
	cell, present := w.resources.cells[resourceIDFor[T]()]
	if !present {
		return 0, 0, false
	}
	return cell.ticks.added, cell.ticks.changed, true
}

func (w *World) touchResourceTick(id typeid.ID) {
	if cell, ok := w.resources.cells[id]; ok {
		cell.ticks.changed = w.Tick()
	}
}

// fromWorldMethod looks up a "FromWorld(w *World) T" method on the
// zero value of elemType via reflection, the way ResourceScope adapts
// an arbitrary callback's parameter tuple the generic FromWorld[T]
// constraint cannot express without knowing T ahead of time.
func fromWorldMethod(elemType reflect.Type) (reflect.Value, bool) {
	zero := reflect.New(elemType).Elem()
	m := zero.MethodByName("FromWorld")
	if !m.IsValid() {
		return reflect.Value{}, false
	}
	mt := m.Type()
	if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.Out(0) != elemType {
		return reflect.Value{}, false
	}
	return m, true
}

var worldType = reflect.TypeOf((*World)(nil))

// ResourceScope inspects fn's parameter list via reflection and invokes
// fn with: a leading *World parameter if present, then one pointer
// argument per remaining parameter, each resolved by fetching (or, if
// FromWorld-constructible, initializing) the resource of the pointed-to
// type. fn must return nothing or a single error. If any required
// resource is absent and not FromWorld-constructible, ResourceScope
// returns ErrResourceScopeMissing without invoking fn.
func ResourceScope(w *World, fn any) error {
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		panic("ecs: ResourceScope: fn must be a function")
	}

	args := make([]reflect.Value, rt.NumIn())
	for i := 0; i < rt.NumIn(); i++ {
		in := rt.In(i)
		if in == worldType {
			args[i] = reflect.ValueOf(w)
			continue
		}
		if in.Kind() != reflect.Ptr {
			panic("ecs: ResourceScope: parameters after *World must be resource pointer types")
		}
		elem := in.Elem()
		id := typeid.OfType(elem)
		cell, ok := w.resources.cells[id]
		if !ok {
			m, constructible := fromWorldMethod(elem)
			if !constructible {
				return ErrResourceScopeMissing
			}
			v := m.Call([]reflect.Value{reflect.ValueOf(w)})[0]
			tick := w.Tick()
			ptr := reflect.New(elem)
			ptr.Elem().Set(v)
			cell = &resourceCell{value: ptr.Interface(), ticks: tickPair{added: tick, changed: tick}}
			w.resources.cells[id] = cell
		}
		args[i] = reflect.ValueOf(cell.value)
	}

	out := rv.Call(args)
	if len(out) == 0 {
		return nil
	}
	if errV := out[len(out)-1]; !errV.IsNil() {
		return errV.Interface().(error)
	}
	return nil
}
