// Package rendergraph implements a directed graph of render nodes with
// typed slot edges, sub-graphs, and a single-pass topological runner
// that funnels node-produced command lists to a graphics device.
package rendergraph

import "github.com/epix-go/epix/ecs"

// SlotType is the type carried across a slot edge.
type SlotType int

const (
	Buffer SlotType = iota
	Texture
	Sampler
	EntitySlot
)

func (t SlotType) String() string {
	switch t {
	case Buffer:
		return "Buffer"
	case Texture:
		return "Texture"
	case Sampler:
		return "Sampler"
	case EntitySlot:
		return "Entity"
	default:
		return "Unknown"
	}
}

// SlotInfo names and types one input or output slot of a node.
type SlotInfo struct {
	Name string
	Type SlotType
}

// SlotValue is the typed payload carried across a slot edge at runtime.
type SlotValue struct {
	Type   SlotType
	Buffer any
	Texture any
	Sampler any
	Entity ecs.Entity
}
