package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epix-go/epix/ecs"
	"github.com/epix-go/epix/ecs/schedule"
	"github.com/epix-go/epix/rendergraph"
)

type tickingSystem struct {
	label string
	fn    func(w *ecs.World)
}

func (s *tickingSystem) Label() string                   { return s.label }
func (s *tickingSystem) Initialize(*ecs.World) ecs.Access { return ecs.Access{} }
func (s *tickingSystem) Run(w *ecs.World)                 { s.fn(w) }
func (s *tickingSystem) ApplyDeferred(*ecs.World)         {}

type appFrameCount struct{ N int }

func TestAppRunFrameDrivesMainExtractAndRender(t *testing.T) {
	a := New()
	ecs.InsertResource(a.Main.World, appFrameCount{N: 0})
	ecs.InsertResource(a.Render.World, appFrameCount{N: -1})

	a.Main.Schedule.AddSystem("tick", &tickingSystem{label: "tick", fn: func(w *ecs.World) {
		c := ecs.ResourceMut[appFrameCount](w)
		c.N++
	}})

	var extractedAt []int
	a.Extract = func(main, render *ecs.World) {
		c := ecs.ResourceMut[appFrameCount](main)
		extractedAt = append(extractedAt, c.N)
		ecs.InsertResource(render, appFrameCount{N: c.N})
	}

	assert.NoError(t, a.Build(nil))
	assert.NoError(t, a.Run(3, WindowSnapshot{}, func(rendergraph.CommandList) {}))

	assert.Equal(t, []int{1, 2, 3}, extractedAt)
	assert.Equal(t, 3, ecs.ResourceMut[appFrameCount](a.Main.World).N)
	assert.Equal(t, 3, ecs.ResourceMut[appFrameCount](a.Render.World).N)
}

func TestAppRunFrameDrivesRenderGraphWhenWired(t *testing.T) {
	a := New()

	g := rendergraph.NewGraph()
	var ran bool
	g.AddNode("only", &appGraphNode{run: func() { ran = true }})
	a.Graph = g
	a.Device = &rendergraph.NullDevice{}

	assert.NoError(t, a.Build(nil))
	assert.NoError(t, a.Run(1, WindowSnapshot{}, func(rendergraph.CommandList) {}))
	assert.True(t, ran)
}

type appGraphNode struct{ run func() }

func (n *appGraphNode) InputSlots() []rendergraph.SlotInfo  { return nil }
func (n *appGraphNode) OutputSlots() []rendergraph.SlotInfo { return nil }
func (n *appGraphNode) Run(ctx *rendergraph.GraphContext, render *rendergraph.RenderContext, w *ecs.World) error {
	n.run()
	return nil
}

func TestAppBuildPropagatesScheduleErrors(t *testing.T) {
	a := New()
	a.Main.Schedule.AddSystem("a", &tickingSystem{label: "a", fn: func(*ecs.World) {}}, schedule.After("a"))

	err := a.Build(nil)
	assert.Error(t, err)
}
