package rendergraph

import "github.com/epix-go/epix/ecs"

// NodeLabel identifies a node within a Graph.
type NodeLabel string

// Node is a unit of render work. InputSlots/OutputSlots declare the
// node's typed interface; Run executes against the context produced by
// RenderGraphRunner and must set every declared output slot before
// returning.
type Node interface {
	InputSlots() []SlotInfo
	OutputSlots() []SlotInfo
	Run(ctx *GraphContext, render *RenderContext, w *ecs.World) error
}

// GraphInput is a zero-output-slot-consuming source node declared once
// per graph to receive externally supplied slot values; it is
// topologically a source with no predecessors.
type GraphInput struct {
	Slots []SlotInfo
}

func (g *GraphInput) InputSlots() []SlotInfo  { return nil }
func (g *GraphInput) OutputSlots() []SlotInfo { return g.Slots }
func (g *GraphInput) Run(ctx *GraphContext, render *RenderContext, w *ecs.World) error {
	for _, slot := range g.Slots {
		if v, ok := ctx.Input(slot.Name); ok {
			ctx.SetOutput(slot.Name, v)
		}
	}
	return nil
}

// GraphInputLabel is the conventional label RenderGraphRunner looks for
// when binding caller-supplied inputs.
const GraphInputLabel = NodeLabel("graph_input")

type nodeEdge struct {
	from, to NodeLabel
}

type slotEdge struct {
	from     NodeLabel
	outSlot  string
	to       NodeLabel
	inSlot   string
}
