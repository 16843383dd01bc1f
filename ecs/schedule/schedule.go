package schedule

import (
	"fmt"
	"sort"

	"github.com/epix-go/epix/ecs"
)

type sysRecord struct {
	label      string
	system     System
	sets       map[string]bool
	before     []string
	after      []string
	conditions []ConditionFn
}

type setRecord struct {
	name       string
	before     []string
	after      []string
	conditions []ConditionFn
}

// Schedule owns a set of systems and system sets, plus the ordering
// and set-membership relations between them. Call Prepare once per
// build (or rebuild, if systems are added/removed) before Run.
type Schedule struct {
	systems    map[string]*sysRecord
	order      []string
	sets       map[string]*setRecord
	setOrder   []string
	plan       *Plan
	dispatcher *Dispatcher
}

// New creates an empty Schedule backed by a dispatcher with the given
// worker pool size.
func New(workers int) *Schedule {
	return &Schedule{
		systems:    make(map[string]*sysRecord),
		sets:       make(map[string]*setRecord),
		dispatcher: NewDispatcher(workers),
	}
}

// SystemOption configures a system's set membership, ordering, or
// run_if conditions at AddSystem time.
type SystemOption func(*sysRecord)

// InSet declares the system a member of the named set.
func InSet(name string) SystemOption {
	return func(r *sysRecord) { r.sets[name] = true }
}

// Before declares an ordering edge to another system or set label.
func Before(target string) SystemOption {
	return func(r *sysRecord) { r.before = append(r.before, target) }
}

// After declares an ordering edge from another system or set label.
func After(target string) SystemOption {
	return func(r *sysRecord) { r.after = append(r.after, target) }
}

// RunIf attaches a run_if condition; the system only runs if every
// attached condition (on the system itself and on every set it
// belongs to) evaluates true.
func RunIf(cond ConditionFn) SystemOption {
	return func(r *sysRecord) { r.conditions = append(r.conditions, cond) }
}

// AddSystem registers sys under label, applying opts.
func (s *Schedule) AddSystem(label string, sys System, opts ...SystemOption) {
	r := &sysRecord{label: label, system: sys, sets: map[string]bool{}}
	for _, opt := range opts {
		opt(r)
	}
	if _, exists := s.systems[label]; !exists {
		s.order = append(s.order, label)
	}
	s.systems[label] = r
}

// SetOption configures a system set's ordering or run_if conditions at
// AddSet time.
type SetOption func(*setRecord)

// SetBefore declares an ordering edge from this set to another set or
// system label.
func SetBefore(target string) SetOption {
	return func(r *setRecord) { r.before = append(r.before, target) }
}

// SetAfter declares an ordering edge from another set or system label
// to this set.
func SetAfter(target string) SetOption {
	return func(r *setRecord) { r.after = append(r.after, target) }
}

// SetRunIf attaches a run_if condition to every member of the set.
func SetRunIf(cond ConditionFn) SetOption {
	return func(r *setRecord) { r.conditions = append(r.conditions, cond) }
}

// AddSet registers a named system set, applying opts.
func (s *Schedule) AddSet(name string, opts ...SetOption) {
	r := &setRecord{name: name}
	for _, opt := range opts {
		opt(r)
	}
	if _, exists := s.sets[name]; !exists {
		s.setOrder = append(s.setOrder, name)
	}
	s.sets[name] = r
}

// Chain adds a before-edge between each consecutive pair of labels.
func (s *Schedule) Chain(labels ...string) {
	for i := 0; i+1 < len(labels); i++ {
		s.systems[labels[i]].before = append(s.systems[labels[i]].before, labels[i+1])
	}
}

func (s *Schedule) membersOf(set string) []string {
	var members []string
	for _, label := range s.order {
		if s.systems[label].sets[set] {
			members = append(members, label)
		}
	}
	return members
}

// Prepare validates the schedule, expands set-membership edges into
// direct system-to-system edges, initializes every system against w,
// and (if checkConflicts) serializes any pair of systems with
// conflicting declared access and no ordering between them. The
// result is cached and reused by Run until Prepare is called again.
func (s *Schedule) Prepare(w *ecs.World, checkConflicts bool) error {
	for _, label := range s.order {
		r := s.systems[label]
		for set := range r.sets {
			if _, ok := s.sets[set]; !ok {
				return &PrepareError{Kind: UnknownSet, Set: set}
			}
		}
	}
	known := func(t string) bool { return s.sets[t] != nil || s.systems[t] != nil }
	var targets []string
	for _, label := range s.order {
		targets = append(append(targets, s.systems[label].before...), s.systems[label].after...)
	}
	for _, name := range s.setOrder {
		targets = append(append(targets, s.sets[name].before...), s.sets[name].after...)
	}
	for _, t := range targets {
		if !known(t) {
			return &PrepareError{Kind: UnknownSet, Set: t}
		}
	}
	for _, name := range s.setOrder {
		set := s.sets[name]
		members := s.membersOf(name)
		if len(members) > 0 && (len(set.before) > 0 || len(set.after) > 0) {
			for _, t := range append(append([]string{}, set.before...), set.after...) {
				if s.systems[t] != nil && s.systems[t].sets[name] {
					return &PrepareError{Kind: ParentsWithDeps, Set: name}
				}
			}
		}
	}

	edges := map[string]map[string]bool{}
	addEdge := func(from, to string) {
		if edges[from] == nil {
			edges[from] = map[string]bool{}
		}
		edges[from][to] = true
	}
	resolve := func(target string) []string {
		if _, ok := s.sets[target]; ok {
			return s.membersOf(target)
		}
		return []string{target}
	}

	for _, label := range s.order {
		r := s.systems[label]
		for _, t := range r.before {
			for _, to := range resolve(t) {
				addEdge(label, to)
			}
		}
		for _, t := range r.after {
			for _, from := range resolve(t) {
				addEdge(from, label)
			}
		}
	}
	for _, name := range s.setOrder {
		set := s.sets[name]
		members := s.membersOf(name)
		for _, t := range set.before {
			for _, to := range resolve(t) {
				for _, from := range members {
					addEdge(from, to)
				}
			}
		}
		for _, t := range set.after {
			for _, from := range resolve(t) {
				for _, to := range members {
					addEdge(from, to)
				}
			}
		}
	}

	if cyc := findCycle(s.order, edges); cyc != nil {
		return &PrepareError{Kind: Cycle, Cycle: cyc}
	}

	accessMap := make(map[string]ecs.Access, len(s.order))
	for _, label := range s.order {
		accessMap[label] = s.systems[label].system.Initialize(w)
	}

	if checkConflicts {
		reach := reachabilityClosure(s.order, edges)
		for i, a := range s.order {
			for j := i + 1; j < len(s.order); j++ {
				b := s.order[j]
				if reach[a][b] || reach[b][a] {
					continue
				}
				if accessMap[a].Conflicts(accessMap[b]) {
					lo, hi := a, b
					if hi < lo {
						lo, hi = hi, lo
					}
					addEdge(lo, hi)
				}
			}
		}
		if cyc := findCycle(s.order, edges); cyc != nil {
			return &PrepareError{Kind: Cycle, Cycle: cyc}
		}
	}

	s.plan = buildPlan(s, edges, accessMap)
	return nil
}

// Run executes one pass of the prepared schedule against w via the
// schedule's parallel dispatcher, then advances w's change tick.
// Prepare must have been called first.
func (s *Schedule) Run(w *ecs.World) error {
	if s.plan == nil {
		return fmt.Errorf("schedule: Run called before Prepare")
	}
	err := s.dispatcher.Run(w, s.plan)
	w.AdvanceTick()
	return err
}

func findCycle(order []string, edges map[string]map[string]bool) []string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(order))
	var cyclePath []string
	var visit func(n string) bool
	visit = func(n string) bool {
		color[n] = gray
		cyclePath = append(cyclePath, n)
		keys := sortedKeys(edges[n])
		for _, m := range keys {
			switch color[m] {
			case white:
				if visit(m) {
					return true
				}
			case gray:
				cyclePath = append(cyclePath, m)
				return true
			}
		}
		cyclePath = cyclePath[:len(cyclePath)-1]
		color[n] = black
		return false
	}
	for _, n := range order {
		if color[n] == white {
			if visit(n) {
				return cyclePath
			}
		}
	}
	return nil
}

func reachabilityClosure(order []string, edges map[string]map[string]bool) map[string]map[string]bool {
	reach := make(map[string]map[string]bool, len(order))
	for _, n := range order {
		visited := map[string]bool{}
		var dfs func(string)
		dfs = func(cur string) {
			for m := range edges[cur] {
				if !visited[m] {
					visited[m] = true
					dfs(m)
				}
			}
		}
		dfs(n)
		reach[n] = visited
	}
	return reach
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
