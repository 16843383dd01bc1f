package schedule

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/epix-go/epix/ecs"
)

// Dispatcher runs a prepared Plan's systems across a bounded worker
// pool, dispatching a system as soon as its predecessors have all
// completed. Schedule.Prepare(w, true) already serializes most
// conflicting pairs with an ordering edge, but Prepare can be called
// with checkConflicts false, and a plan built elsewhere may carry no
// such edges at all — so Run additionally holds an in-flight access
// set and never dispatches a ready system whose declared Access
// conflicts with a system currently running, independent of whatever
// edges the plan encodes.
type Dispatcher struct {
	workers int
}

// NewDispatcher creates a Dispatcher with the given worker pool size.
// A size of 0 or less runs every system on the calling goroutine, in
// plan order.
func NewDispatcher(workers int) *Dispatcher {
	return &Dispatcher{workers: workers}
}

// Run executes one pass of plan against w.
func (d *Dispatcher) Run(w *ecs.World, plan *Plan) error {
	if d.workers <= 0 {
		return d.runSerial(w, plan)
	}

	prevCount := make(map[string]int, len(plan.prevCount))
	for k, v := range plan.prevCount {
		prevCount[k] = v
	}

	var mu sync.Mutex
	ready := append([]string{}, plan.ready...)
	remaining := len(plan.order)
	inFlight := make(map[string]ecs.Access, d.workers)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(d.workers)

	done := make(chan string, len(plan.order))

	// dispatchLocked dispatches every ready system whose declared
	// access does not conflict with any system currently in flight,
	// leaving the rest in ready for a later call once their conflicting
	// predecessor finishes and frees up the access set.
	dispatchLocked := func() {
		var stillReady []string
		for _, label := range ready {
			acc := plan.access[label]
			blocked := false
			for _, running := range inFlight {
				if acc.Conflicts(running) {
					blocked = true
					break
				}
			}
			if blocked {
				stillReady = append(stillReady, label)
				continue
			}
			inFlight[label] = acc
			lbl := label
			g.Go(func() error {
				if conditionsHold(w, plan.conditions[lbl]) {
					plan.systems[lbl].Run(w)
				}
				select {
				case done <- lbl:
				case <-ctx.Done():
				}
				return nil
			})
		}
		ready = stillReady
	}

	mu.Lock()
	dispatchLocked()
	mu.Unlock()

	for remaining > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case label := <-done:
			plan.systems[label].ApplyDeferred(w)
			remaining--

			mu.Lock()
			delete(inFlight, label)
			for _, succ := range plan.successors[label] {
				prevCount[succ]--
				if prevCount[succ] == 0 {
					ready = append(ready, succ)
				}
			}
			dispatchLocked()
			mu.Unlock()
		}
	}
	return g.Wait()
}

func (d *Dispatcher) runSerial(w *ecs.World, plan *Plan) error {
	for _, label := range plan.order {
		if conditionsHold(w, plan.conditions[label]) {
			plan.systems[label].Run(w)
		}
		plan.systems[label].ApplyDeferred(w)
	}
	return nil
}

func conditionsHold(w *ecs.World, conds []ConditionFn) bool {
	for _, c := range conds {
		if !c(w) {
			return false
		}
	}
	return true
}
