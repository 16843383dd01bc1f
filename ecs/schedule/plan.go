package schedule

import (
	"sort"

	"github.com/epix-go/epix/ecs"
)

// Plan is the output of Schedule.Prepare: for every system, how many
// predecessors it still has outstanding (prevCount), which systems
// move one step closer to ready when it completes (successors), which
// run_if conditions gate it, and the Access it declared at
// Initialize time — plus a deterministic full order and the set of
// systems ready to run first. access is populated regardless of
// whether Prepare was asked to add ordering edges for conflicts, so a
// Dispatcher can refuse to run two conflicting systems concurrently
// even when Prepare(w, false) added no edge between them.
type Plan struct {
	order      []string
	systems    map[string]System
	prevCount  map[string]int
	successors map[string][]string
	conditions map[string][]ConditionFn
	access     map[string]ecs.Access
	ready      []string
}

func buildPlan(s *Schedule, edges map[string]map[string]bool, accessMap map[string]ecs.Access) *Plan {
	prevCount := make(map[string]int, len(s.order))
	successors := make(map[string][]string, len(s.order))
	conditions := make(map[string][]ConditionFn, len(s.order))
	systems := make(map[string]System, len(s.order))

	for _, label := range s.order {
		prevCount[label] = 0
	}
	for from, tos := range edges {
		for to := range tos {
			successors[from] = append(successors[from], to)
			prevCount[to]++
		}
	}
	for from := range successors {
		sort.Strings(successors[from])
	}

	for _, label := range s.order {
		r := s.systems[label]
		systems[label] = r.system
		conds := append([]ConditionFn{}, r.conditions...)
		for set := range r.sets {
			conds = append(conds, s.sets[set].conditions...)
		}
		conditions[label] = conds
	}

	order := topoOrder(s.order, edges)

	var ready []string
	for _, label := range order {
		if prevCount[label] == 0 {
			ready = append(ready, label)
		}
	}

	access := make(map[string]ecs.Access, len(s.order))
	for label, acc := range accessMap {
		access[label] = acc
	}

	return &Plan{
		order:      order,
		systems:    systems,
		prevCount:  prevCount,
		successors: successors,
		conditions: conditions,
		access:     access,
		ready:      ready,
	}
}

// topoOrder produces a deterministic topological order: among all
// nodes that become ready at the same step, the lexicographically
// smallest label goes first.
func topoOrder(nodes []string, edges map[string]map[string]bool) []string {
	indeg := make(map[string]int, len(nodes))
	for _, n := range nodes {
		indeg[n] = 0
	}
	for _, tos := range edges {
		for to := range tos {
			indeg[to]++
		}
	}

	var queue []string
	for _, n := range nodes {
		if indeg[n] == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		var newly []string
		for _, m := range sortedKeys(edges[n]) {
			indeg[m]--
			if indeg[m] == 0 {
				newly = append(newly, m)
			}
		}
		sort.Strings(newly)
		queue = append(queue, newly...)
		sort.Strings(queue)
	}
	return order
}
