package schedule

import (
	"fmt"
	"strings"

	"github.com/epix-go/epix/typeid"
)

// PrepareError is returned by Schedule.Prepare. Which fields are
// populated depends on Kind: Cycle for Cycle, Set for ParentsWithDeps
// and UnknownSet, and SystemA, SystemB and Components for
// AccessConflict.
type PrepareError struct {
	Kind       PrepareErrorKind
	Cycle      []string
	Set        string
	SystemA    string
	SystemB    string
	Components []typeid.ID
}

// PrepareErrorKind enumerates the ways Schedule.Prepare can fail.
type PrepareErrorKind int

const (
	// Cycle means the dependency graph (after set expansion) contains
	// a cycle.
	Cycle PrepareErrorKind = iota
	// ParentsWithDeps means a system set with child systems also
	// carries explicit ordering edges that would re-enter its own
	// children.
	ParentsWithDeps
	// UnknownSet means a system declared membership in a set that was
	// never registered, or a system or set declared an ordering edge to
	// a label that names neither a registered set nor a system.
	UnknownSet
	// AccessConflict describes two systems with no ordering between
	// them that declared conflicting access. Prepare does not return
	// this kind: with checkConflicts it orders such a pair (lower label
	// first) instead.
	AccessConflict
)

func (e *PrepareError) Error() string {
	switch e.Kind {
	case Cycle:
		return fmt.Sprintf("schedule: dependency cycle: %s", strings.Join(e.Cycle, " -> "))
	case ParentsWithDeps:
		return fmt.Sprintf("schedule: set %q has an ordering edge to one of its own member systems", e.Set)
	case UnknownSet:
		return fmt.Sprintf("schedule: reference to unregistered set %q", e.Set)
	case AccessConflict:
		return fmt.Sprintf("schedule: systems %q and %q conflict on %d component(s)", e.SystemA, e.SystemB, len(e.Components))
	default:
		return "schedule: prepare error"
	}
}
