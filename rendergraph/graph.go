package rendergraph

import "sort"

type nodeEntry struct {
	label Node
	name  NodeLabel
}

// Graph is a directed graph of labeled Nodes connected by node edges
// (pure ordering) and slot edges (typed value pass-through). A Graph
// may also own named sub-graphs, invoked depth-first by a node during a
// run.
type Graph struct {
	nodes     map[NodeLabel]Node
	order     []NodeLabel
	nodeEdges []nodeEdge
	slotEdges []slotEdge
	occupied  map[NodeLabel]map[string]bool
	subGraphs map[string]*Graph
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     map[NodeLabel]Node{},
		occupied:  map[NodeLabel]map[string]bool{},
		subGraphs: map[string]*Graph{},
	}
}

// AddNode registers n under label. Re-registering a label replaces the
// node but keeps its existing edges.
func (g *Graph) AddNode(label NodeLabel, n Node) {
	if _, exists := g.nodes[label]; !exists {
		g.order = append(g.order, label)
	}
	g.nodes[label] = n
}

// AddSubGraph registers a named sub-graph, invocable from within a
// node's Run via GraphContext.RunSubGraph.
func (g *Graph) AddSubGraph(name string, sub *Graph) error {
	if _, exists := g.subGraphs[name]; exists {
		return &GraphError{Kind: SubGraphExists, Name: name}
	}
	g.subGraphs[name] = sub
	return nil
}

func (g *Graph) slotInfo(label NodeLabel, name string, output bool) (SlotInfo, bool) {
	n, ok := g.nodes[label]
	if !ok {
		return SlotInfo{}, false
	}
	slots := n.InputSlots()
	if output {
		slots = n.OutputSlots()
	}
	for _, s := range slots {
		if s.Name == name {
			return s, true
		}
	}
	return SlotInfo{}, false
}

// AddNodeEdge adds a pure ordering edge: from must run, to completion,
// before to runs.
func (g *Graph) AddNodeEdge(from, to NodeLabel) error {
	if _, ok := g.nodes[from]; !ok {
		return &EdgeError{Kind: NodesMissing, From: from, To: to}
	}
	if _, ok := g.nodes[to]; !ok {
		return &EdgeError{Kind: NodesMissing, From: from, To: to}
	}
	g.nodeEdges = append(g.nodeEdges, nodeEdge{from: from, to: to})
	return nil
}

// AddSlotEdge adds a typed value edge from an output slot to an input
// slot, implying a node edge. Rejects missing nodes/slots, type
// mismatches, and a second source for an already-occupied input slot.
func (g *Graph) AddSlotEdge(from NodeLabel, outSlot string, to NodeLabel, inSlot string) error {
	outInfo, ok := g.slotInfo(from, outSlot, true)
	if !ok {
		if _, exists := g.nodes[from]; !exists {
			return &EdgeError{Kind: NodesMissing, From: from, To: to, OutSlot: outSlot, InSlot: inSlot}
		}
		return &EdgeError{Kind: SlotMissing, From: from, To: to, OutSlot: outSlot, InSlot: inSlot}
	}
	inInfo, ok := g.slotInfo(to, inSlot, false)
	if !ok {
		if _, exists := g.nodes[to]; !exists {
			return &EdgeError{Kind: NodesMissing, From: from, To: to, OutSlot: outSlot, InSlot: inSlot}
		}
		return &EdgeError{Kind: SlotMissing, From: from, To: to, OutSlot: outSlot, InSlot: inSlot}
	}
	if outInfo.Type != inInfo.Type {
		return &EdgeError{Kind: SlotTypeMismatch, From: from, To: to, OutSlot: outSlot, InSlot: inSlot}
	}
	if g.occupied[to][inSlot] {
		return &EdgeError{Kind: InputSlotOccupied, From: from, To: to, OutSlot: outSlot, InSlot: inSlot}
	}
	if g.occupied[to] == nil {
		g.occupied[to] = map[string]bool{}
	}
	g.occupied[to][inSlot] = true
	g.slotEdges = append(g.slotEdges, slotEdge{from: from, outSlot: outSlot, to: to, inSlot: inSlot})
	g.nodeEdges = append(g.nodeEdges, nodeEdge{from: from, to: to})
	return nil
}

func (g *Graph) incomingSlotEdges(to NodeLabel) []slotEdge {
	var out []slotEdge
	for _, e := range g.slotEdges {
		if e.to == to {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].inSlot < out[j].inSlot })
	return out
}

func (g *Graph) successors(label NodeLabel) []NodeLabel {
	seen := map[NodeLabel]bool{}
	var out []NodeLabel
	for _, e := range g.nodeEdges {
		if e.from == label && !seen[e.to] {
			seen[e.to] = true
			out = append(out, e.to)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Graph) indegree() map[NodeLabel]int {
	indeg := make(map[NodeLabel]int, len(g.order))
	for _, l := range g.order {
		indeg[l] = 0
	}
	seen := map[nodeEdge]bool{}
	for _, e := range g.nodeEdges {
		if seen[e] {
			continue
		}
		seen[e] = true
		indeg[e.to]++
	}
	return indeg
}

// TopoOrder returns a deterministic topological order of every node in
// g via Kahn's algorithm (lexicographically smallest label first among
// ties), or a *GraphError{Kind: CycleDetected} if g has a cycle.
func (g *Graph) TopoOrder() ([]NodeLabel, error) {
	indeg := g.indegree()
	var queue []NodeLabel
	for _, l := range g.order {
		if indeg[l] == 0 {
			queue = append(queue, l)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	order := make([]NodeLabel, 0, len(g.order))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		var newly []NodeLabel
		for _, m := range g.successors(n) {
			indeg[m]--
			if indeg[m] == 0 {
				newly = append(newly, m)
			}
		}
		sort.Slice(newly, func(i, j int) bool { return newly[i] < newly[j] })
		queue = append(queue, newly...)
		sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
	}
	if len(order) != len(g.order) {
		var cyc []NodeLabel
		for _, l := range g.order {
			if indeg[l] > 0 {
				cyc = append(cyc, l)
			}
		}
		return nil, &GraphError{Kind: CycleDetected, Cycle: cyc}
	}
	return order, nil
}
