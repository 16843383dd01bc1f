package app

import (
	"github.com/epix-go/epix/ecs"
	"github.com/epix-go/epix/ecs/schedule"
)

// SubApp owns one World and the Schedule that drives it. App wires two
// of these together: the main sub-app (simulation) and the render
// sub-app, connected by an extract phase.
type SubApp struct {
	World    *ecs.World
	Schedule *schedule.Schedule
}

// NewSubApp creates a SubApp with a fresh World and a Schedule backed
// by a worker pool of the given size.
func NewSubApp(workers int) *SubApp {
	return &SubApp{World: ecs.NewWorld(), Schedule: schedule.New(workers)}
}

// Prepare validates and finalizes the sub-app's schedule against its
// World. Must be called once before the first RunFrame, and again
// after adding systems post-construction.
func (s *SubApp) Prepare(checkConflicts bool) error {
	return s.Schedule.Prepare(s.World, checkConflicts)
}

// RunFrame executes one pass of the sub-app's schedule.
func (s *SubApp) RunFrame() error {
	return s.Schedule.Run(s.World)
}
