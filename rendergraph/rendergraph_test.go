package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epix-go/epix/ecs"
)

type recordingNode struct {
	label   NodeLabel
	in, out []SlotInfo
	calls   *[]NodeLabel
	run     func(ctx *GraphContext)
}

func (n *recordingNode) InputSlots() []SlotInfo  { return n.in }
func (n *recordingNode) OutputSlots() []SlotInfo { return n.out }
func (n *recordingNode) Run(ctx *GraphContext, render *RenderContext, w *ecs.World) error {
	*n.calls = append(*n.calls, n.label)
	render.NewCommandList()
	n.run(ctx)
	return nil
}

func buildABC(calls *[]NodeLabel) *Graph {
	g := NewGraph()
	g.AddNode("A", &recordingNode{
		label: "A", calls: calls,
		out: []SlotInfo{{Name: "buf", Type: Buffer}},
		run: func(ctx *GraphContext) { ctx.SetOutput("buf", SlotValue{Type: Buffer, Buffer: "buffer-from-a"}) },
	})
	g.AddNode("B", &recordingNode{
		label: "B", calls: calls,
		in:  []SlotInfo{{Name: "buf", Type: Buffer}},
		out: []SlotInfo{{Name: "tex", Type: Texture}},
		run: func(ctx *GraphContext) {
			v, ok := ctx.Input("buf")
			if !ok {
				panic("missing buf input")
			}
			ctx.SetOutput("tex", SlotValue{Type: Texture, Texture: v.Buffer.(string) + "->texture"})
		},
	})
	g.AddNode("C", &recordingNode{
		label: "C", calls: calls,
		in: []SlotInfo{{Name: "tex", Type: Texture}},
		run: func(ctx *GraphContext) { ctx.Input("tex") },
	})

	mustNoError(g.AddSlotEdge("A", "buf", "B", "buf"))
	mustNoError(g.AddSlotEdge("B", "tex", "C", "tex"))
	return g
}

func mustNoError(err error) {
	if err != nil {
		panic(err)
	}
}

func TestRenderGraphRunsNodesInTopologicalOrder(t *testing.T) {
	w := ecs.NewWorld()
	var calls []NodeLabel
	g := buildABC(&calls)
	runner := NewRunner("primary")
	device := &NullDevice{}

	var finalized []CommandList
	finalizer := func(final CommandList) { finalized = append(finalized, final) }

	assert.NoError(t, runner.Run(g, device, w, nil, finalizer))
	assert.Equal(t, []NodeLabel{"A", "B", "C"}, calls)
	assert.Len(t, device.Submissions, 1)
	// A, B, C each open one command list, plus the final flush list.
	assert.Len(t, device.Submissions[0], 4)

	calls = nil
	assert.NoError(t, runner.Run(g, device, w, nil, finalizer))
	assert.Equal(t, []NodeLabel{"A", "B", "C"}, calls)
	assert.Len(t, device.Submissions, 2)
}

func TestAddSlotEdgeRejectsDuplicateInputSource(t *testing.T) {
	var calls []NodeLabel
	g := buildABC(&calls)
	g.AddNode("D", &recordingNode{
		label: "D", calls: &calls,
		out: []SlotInfo{{Name: "buf2", Type: Buffer}},
		run: func(ctx *GraphContext) { ctx.SetOutput("buf2", SlotValue{Type: Buffer}) },
	})

	err := g.AddSlotEdge("D", "buf2", "B", "buf")
	assert.Error(t, err)
	var edgeErr *EdgeError
	assert.ErrorAs(t, err, &edgeErr)
	assert.Equal(t, InputSlotOccupied, edgeErr.Kind)
}

func TestAddSlotEdgeRejectsTypeMismatch(t *testing.T) {
	var calls []NodeLabel
	g := NewGraph()
	g.AddNode("A", &recordingNode{label: "A", calls: &calls, out: []SlotInfo{{Name: "buf", Type: Buffer}},
		run: func(ctx *GraphContext) { ctx.SetOutput("buf", SlotValue{Type: Buffer}) }})
	g.AddNode("B", &recordingNode{label: "B", calls: &calls, in: []SlotInfo{{Name: "tex", Type: Texture}},
		run: func(ctx *GraphContext) {}})

	err := g.AddSlotEdge("A", "buf", "B", "tex")
	assert.Error(t, err)
	var edgeErr *EdgeError
	assert.ErrorAs(t, err, &edgeErr)
	assert.Equal(t, SlotTypeMismatch, edgeErr.Kind)
}

func TestAddNodeEdgeRejectsUnknownNodes(t *testing.T) {
	g := NewGraph()
	var calls []NodeLabel
	g.AddNode("A", &recordingNode{label: "A", calls: &calls})

	err := g.AddNodeEdge("A", "ghost")
	assert.Error(t, err)
	var edgeErr *EdgeError
	assert.ErrorAs(t, err, &edgeErr)
	assert.Equal(t, NodesMissing, edgeErr.Kind)
}

func TestTopoOrderDetectsCycle(t *testing.T) {
	g := NewGraph()
	var calls []NodeLabel
	g.AddNode("A", &recordingNode{label: "A", calls: &calls})
	g.AddNode("B", &recordingNode{label: "B", calls: &calls})
	assert.NoError(t, g.AddNodeEdge("A", "B"))
	assert.NoError(t, g.AddNodeEdge("B", "A"))

	_, err := g.TopoOrder()
	assert.Error(t, err)
	var gerr *GraphError
	assert.ErrorAs(t, err, &gerr)
	assert.Equal(t, CycleDetected, gerr.Kind)
}

func TestGraphInputBindsExternalValuesToSourceNode(t *testing.T) {
	w := ecs.NewWorld()
	var calls []NodeLabel
	received := SlotValue{}

	g := NewGraph()
	g.AddNode(GraphInputLabel, &GraphInput{Slots: []SlotInfo{{Name: "seed", Type: Buffer}}})
	g.AddNode("consumer", &recordingNode{
		label: "consumer", calls: &calls,
		in: []SlotInfo{{Name: "seed", Type: Buffer}},
		run: func(ctx *GraphContext) {
			v, ok := ctx.Input("seed")
			if ok {
				received = v
			}
		},
	})
	assert.NoError(t, g.AddSlotEdge(GraphInputLabel, "seed", "consumer", "seed"))

	runner := NewRunner("sub")
	device := &NullDevice{}
	externalInputs := map[string]SlotValue{"seed": {Type: Buffer, Buffer: "external-seed"}}

	assert.NoError(t, runner.Run(g, device, w, externalInputs, func(CommandList) {}))
	assert.Equal(t, "external-seed", received.Buffer)
}
