package rendergraph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/epix-go/epix/ecs"
	"github.com/epix-go/epix/ecsobs"
)

// Finalizer is invoked once, on the final accumulated command list,
// after every node in the graph (and its sub-graphs) has run.
type Finalizer func(final CommandList)

// RenderGraphRunner drives one Graph to completion per frame.
type RenderGraphRunner struct {
	Name    string
	Logger  ecsobs.Logger
	Metrics ecsobs.Metrics
}

// NewRunner creates a RenderGraphRunner identified by name, used as the
// label on its logs and metrics. Logger/Metrics default to no-ops;
// override the returned value's fields to opt in.
func NewRunner(name string) *RenderGraphRunner {
	return &RenderGraphRunner{Name: name, Logger: ecsobs.NewLogger(nil), Metrics: ecsobs.NoopMetrics}
}

// Run executes one pass of g: topologically orders nodes (seeded by
// graphInput's bound external values, if any), runs each node with a
// fresh GraphContext, validates every declared output slot was set,
// runs any requested sub-graph invocations depth-first, then flushes
// the accumulated command lists through finalizer and submits them to
// device in order.
func (r *RenderGraphRunner) Run(g *Graph, device Device, w *ecs.World, externalInputs map[string]SlotValue, finalizer Finalizer) error {
	render := newRenderContext(device)
	if err := r.runGraph(g, render, w, externalInputs); err != nil {
		return err
	}

	final := render.NewCommandList()
	finalizer(final)
	device.Submit(render.lists)
	r.Metrics.IncFrameSubmitCount(r.Name)
	return nil
}

func (r *RenderGraphRunner) runGraph(g *Graph, render *RenderContext, w *ecs.World, externalInputs map[string]SlotValue) error {
	order, err := g.TopoOrder()
	if err != nil {
		r.Logger.Error("render graph cycle detected", zap.String("graph", r.Name))
		return err
	}

	produced := map[NodeLabel]map[string]SlotValue{}

	for _, label := range order {
		n := g.nodes[label]

		inputs := map[string]SlotValue{}
		if label == GraphInputLabel {
			for k, v := range externalInputs {
				inputs[k] = v
			}
		}
		for _, e := range g.incomingSlotEdges(label) {
			if v, ok := produced[e.from][e.outSlot]; ok {
				inputs[e.inSlot] = v
			}
		}

		ctx := newGraphContext(n, inputs)
		if err := n.Run(ctx, render, w); err != nil {
			return fmt.Errorf("rendergraph: node %s: %w", label, err)
		}
		for _, out := range n.OutputSlots() {
			if _, ok := ctx.outputs[out.Name]; !ok {
				return fmt.Errorf("rendergraph: node %s did not set output slot %q", label, out.Name)
			}
		}
		produced[label] = ctx.outputs

		for _, sub := range ctx.subRuns {
			subGraph, ok := g.subGraphs[sub.name]
			if !ok {
				r.Logger.Warn("unknown sub-graph invocation", zap.String("graph", r.Name), zap.String("sub_graph", sub.name))
				continue
			}
			if err := r.runGraph(subGraph, render, w, sub.inputs); err != nil {
				r.Logger.Warn("sub-graph run aborted", zap.String("graph", r.Name), zap.String("sub_graph", sub.name), zap.Error(err))
			}
		}
	}
	return nil
}
