package ecs

import "fmt"

// EntityNotFoundError is returned for an operation on a freed or unknown
// entity.
type EntityNotFoundError struct {
	Entity Entity
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("ecs: entity %v is not alive", e.Entity)
}

// ComponentNotFoundError is returned by a getter that does not tolerate
// an absent component.
type ComponentNotFoundError struct {
	Entity Entity
	Type   string
}

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("ecs: entity %v has no component %s", e.Entity, e.Type)
}

// ResourceNotFoundError is returned when a resource is absent and not
// auto-initializable in the calling context.
type ResourceNotFoundError struct {
	Type string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("ecs: resource %s is not present", e.Type)
}

// BundleConflictError is returned when bundle registration observes two
// different component-type lists under the same BundleID.
type BundleConflictError struct {
	ID BundleID
}

func (e *BundleConflictError) Error() string {
	return fmt.Sprintf("ecs: bundle %d registered with conflicting component lists", e.ID)
}

// ErrResourceScopeMissing is returned by ResourceScope when one of the
// callback's resource parameters is absent and not FromWorld-constructible.
var ErrResourceScopeMissing = fmt.Errorf("ecs: resource_scope: a required resource is missing and not default-constructible")
