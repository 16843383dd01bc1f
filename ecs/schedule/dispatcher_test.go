package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/epix-go/epix/ecs"
	"github.com/epix-go/epix/typeid"
)

type edCounter struct{ N int }

// slowSystem blocks on its release channel so tests can observe that two
// independent systems actually overlap under a worker pool, instead of
// merely happening to finish in plan order.
type slowSystem struct {
	label   string
	started chan string
	release chan struct{}
}

func (s *slowSystem) Label() string                   { return s.label }
func (s *slowSystem) Initialize(*ecs.World) ecs.Access { return ecs.Access{} }
func (s *slowSystem) Run(*ecs.World) {
	s.started <- s.label
	<-s.release
}
func (s *slowSystem) ApplyDeferred(*ecs.World) {}

func TestDispatcherRunsIndependentSystemsConcurrently(t *testing.T) {
	w := ecs.NewWorld()
	started := make(chan string, 2)
	release := make(chan struct{})

	sch := New(2)
	sch.AddSystem("x", &slowSystem{label: "x", started: started, release: release})
	sch.AddSystem("y", &slowSystem{label: "y", started: started, release: release})

	assert.NoError(t, sch.Prepare(w, true))

	var runErr error
	done := make(chan struct{})
	go func() {
		runErr = sch.Run(w)
		close(done)
	}()

	seen := map[string]bool{}
	seen[<-started] = true
	seen[<-started] = true
	assert.True(t, seen["x"] && seen["y"], "both independent systems should have started before either released")

	close(release)
	<-done
	assert.NoError(t, runErr)
}

func TestDispatcherRunsSuccessorAfterPredecessor(t *testing.T) {
	w := ecs.NewWorld()
	ecs.RegisterComponent[edCounter](w)
	ecs.InsertResource(w, edCounter{N: 0})

	var order []string

	first := newRecorder("first", &order, ecs.Access{Writes: []typeid.ID{typeid.Of[edCounter]()}})
	second := newRecorder("second", &order, ecs.Access{})

	sch := New(2)
	sch.AddSystem("first", first)
	sch.AddSystem("second", second, After("first"))

	assert.NoError(t, sch.Prepare(w, true))
	assert.NoError(t, sch.Run(w))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatcherSerialFallbackForNonPositiveWorkers(t *testing.T) {
	w := ecs.NewWorld()
	var order []string
	var mu sync.Mutex

	sch := New(0)
	for _, label := range []string{"a", "b", "c", "d"} {
		l := label
		sch.AddSystem(l, &recordingSystemLocked{label: l, order: &order, mu: &mu})
	}

	assert.NoError(t, sch.Prepare(w, true))
	assert.NoError(t, sch.Run(w))
	assert.Len(t, order, 4)
}

// conflictingSlowSystem blocks on release after reporting it started, so
// a test can observe whether a second system with conflicting access
// was dispatched before the first released.
type conflictingSlowSystem struct {
	label   string
	access  ecs.Access
	started chan string
	release chan struct{}
}

func (s *conflictingSlowSystem) Label() string                   { return s.label }
func (s *conflictingSlowSystem) Initialize(*ecs.World) ecs.Access { return s.access }
func (s *conflictingSlowSystem) Run(*ecs.World) {
	s.started <- s.label
	<-s.release
}
func (s *conflictingSlowSystem) ApplyDeferred(*ecs.World) {}

// TestDispatcherGatesConflictingAccessWithoutScheduleEdges exercises
// Prepare(w, false): no ordering edge is added between the two systems
// below, so only the dispatcher's in-flight access-conflict check can
// prevent them from running at the same time.
func TestDispatcherGatesConflictingAccessWithoutScheduleEdges(t *testing.T) {
	w := ecs.NewWorld()
	started := make(chan string, 2)
	release := make(chan struct{})

	writeCounter := ecs.Access{Writes: []typeid.ID{typeid.Of[edCounter]()}}

	sch := New(2)
	sch.AddSystem("m", &conflictingSlowSystem{label: "m", access: writeCounter, started: started, release: release})
	sch.AddSystem("n", &conflictingSlowSystem{label: "n", access: writeCounter, started: started, release: release})

	assert.NoError(t, sch.Prepare(w, false))

	var runErr error
	runDone := make(chan struct{})
	go func() {
		runErr = sch.Run(w)
		close(runDone)
	}()

	first := <-started
	select {
	case second := <-started:
		t.Fatalf("both %q and %q started concurrently despite conflicting access", first, second)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	second := <-started
	assert.NotEqual(t, first, second)

	<-runDone
	assert.NoError(t, runErr)
}

// recordingSystemLocked guards the shared order slice so tests that
// legitimately allow concurrent scheduling (no declared access) don't
// race on the assertion slice itself.
type recordingSystemLocked struct {
	label string
	order *[]string
	mu    *sync.Mutex
}

func (s *recordingSystemLocked) Label() string                   { return s.label }
func (s *recordingSystemLocked) Initialize(*ecs.World) ecs.Access { return ecs.Access{} }
func (s *recordingSystemLocked) Run(*ecs.World) {
	s.mu.Lock()
	*s.order = append(*s.order, s.label)
	s.mu.Unlock()
}
func (s *recordingSystemLocked) ApplyDeferred(*ecs.World) {}
