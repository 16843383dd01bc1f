package rendergraph

// CommandList is an opaque, device-produced command buffer handle.
type CommandList any

// Device is the narrow GPU surface the render graph depends on. The
// core never imports a concrete graphics binding; callers supply a
// Device implementation (or NullDevice, for tests).
type Device interface {
	NewCommandList() CommandList
	Submit(lists []CommandList)
}

// NullDevice is a Device test double that records every submitted
// batch without touching any real GPU resources.
type NullDevice struct {
	Submissions [][]CommandList
	listCount   int
}

func (d *NullDevice) NewCommandList() CommandList {
	d.listCount++
	return d.listCount
}

func (d *NullDevice) Submit(lists []CommandList) {
	d.Submissions = append(d.Submissions, lists)
}

// RenderContext accumulates command lists produced across a run; its
// encoder is flushed once, at the end of RenderGraphRunner.Run.
type RenderContext struct {
	device CommandListFactory
	lists  []CommandList
}

// CommandListFactory is the subset of Device a RenderContext needs to
// create command lists as nodes run.
type CommandListFactory interface {
	NewCommandList() CommandList
}

func newRenderContext(device CommandListFactory) *RenderContext {
	return &RenderContext{device: device}
}

// NewCommandList creates and records a new command list for the
// calling node to encode into.
func (r *RenderContext) NewCommandList() CommandList {
	l := r.device.NewCommandList()
	r.lists = append(r.lists, l)
	return l
}

type subGraphInvocation struct {
	name   string
	inputs map[string]SlotValue
}

// GraphContext wraps one node's declared slots, the values received on
// its input slots, the values it has produced for its output slots, and
// any sub-graph invocations it requested during Run.
type GraphContext struct {
	node    Node
	inputs  map[string]SlotValue
	outputs map[string]SlotValue
	subRuns []subGraphInvocation
}

func newGraphContext(n Node, inputs map[string]SlotValue) *GraphContext {
	return &GraphContext{node: n, inputs: inputs, outputs: map[string]SlotValue{}}
}

// Input returns the value received on the named input slot.
func (c *GraphContext) Input(name string) (SlotValue, bool) {
	v, ok := c.inputs[name]
	return v, ok
}

// SetOutput records the value produced for the named output slot. Run
// must call this for every slot in the node's OutputSlots before
// returning.
func (c *GraphContext) SetOutput(name string, v SlotValue) {
	c.outputs[name] = v
}

// RunSubGraph enqueues name to run depth-first, with inputs bound to the
// sub-graph's GraphInput node (if any), once the current node returns.
func (c *GraphContext) RunSubGraph(name string, inputs map[string]SlotValue) {
	c.subRuns = append(c.subRuns, subGraphInvocation{name: name, inputs: inputs})
}
