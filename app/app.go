package app

import (
	"fmt"

	"github.com/epix-go/epix/ecs"
	"github.com/epix-go/epix/ecsobs"
	"github.com/epix-go/epix/rendergraph"
)

// ExtractFn copies or moves the data the render World needs out of the
// main World, after the main sub-app's schedule has run for the frame
// and before the render sub-app's schedule runs.
type ExtractFn func(main, render *ecs.World)

// App owns the main sub-app (simulation), the render sub-app, the
// extract step between them, and the render graph the render sub-app's
// schedule ultimately feeds. Each frame runs main, extracts, runs
// render, then drives one pass of the render graph.
type App struct {
	Main   *SubApp
	Render *SubApp
	Extract ExtractFn

	Graph  *rendergraph.Graph
	Device rendergraph.Device
	Runner *rendergraph.RenderGraphRunner

	config Config
}

// New constructs an App with empty main/render sub-apps, applying opts
// over defaultConfig. Callers add systems to app.Main.Schedule and
// app.Render.Schedule, build app.Graph, then call Build before Run.
func New(opts ...Option) *App {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &App{
		Main:    NewSubApp(cfg.Workers),
		Render:  NewSubApp(cfg.Workers),
		Extract: func(*ecs.World, *ecs.World) {},
		Runner:  rendergraph.NewRunner("primary"),
		config:  cfg,
	}
}

// Build finalizes both sub-app schedules (checking for access
// conflicts) and wires the App's logger/metrics into the render
// runner. Call once after every system and the render graph have been
// added.
func (a *App) Build(metrics ecsobs.Metrics) error {
	if err := a.Main.Prepare(true); err != nil {
		return fmt.Errorf("app: preparing main schedule: %w", err)
	}
	if err := a.Render.Prepare(true); err != nil {
		return fmt.Errorf("app: preparing render schedule: %w", err)
	}
	a.Runner.Logger = ecsobs.NewLogger(a.config.Logger)
	if metrics != nil {
		a.Runner.Metrics = metrics
	}
	return nil
}

// RunFrame drives exactly one frame: main schedule, extract, render
// schedule, then one render-graph pass (if Graph/Device are set).
func (a *App) RunFrame(window WindowSnapshot, externalInputs map[string]rendergraph.SlotValue, finalizer rendergraph.Finalizer) error {
	if err := a.Main.RunFrame(); err != nil {
		return fmt.Errorf("app: main frame: %w", err)
	}
	a.Extract(a.Main.World, a.Render.World)
	if err := a.Render.RunFrame(); err != nil {
		return fmt.Errorf("app: render frame: %w", err)
	}
	if a.Graph == nil || a.Device == nil {
		return nil
	}
	if err := a.Runner.Run(a.Graph, a.Device, a.Render.World, externalInputs, finalizer); err != nil {
		a.Runner.Logger.Warn("render graph run failed, frame produced no output")
		return nil
	}
	return nil
}

// Run drives frames frames in sequence, stopping early on the first
// main/render schedule error (render-graph errors are logged and
// swallowed per frame, matching the "no output that frame" policy).
func (a *App) Run(frames int, window WindowSnapshot, finalizer rendergraph.Finalizer) error {
	for i := 0; i < frames; i++ {
		if err := a.RunFrame(window, nil, finalizer); err != nil {
			return err
		}
	}
	return nil
}
