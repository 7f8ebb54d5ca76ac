package goap

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Plan is the planner's answer: the chosen goal and the actions to run, in
// execution order.
type Plan struct {
	Goal       *Goal
	Actions    []*Action
	Cost       int64
	Expansions int
}

// ActionNames returns the names of the plan's actions in execution order.
func (p *Plan) ActionNames() []string {
	names := make([]string, len(p.Actions))
	for i, action := range p.Actions {
		names[i] = action.Name()
	}
	return names
}

// IsEmpty reports whether the goal needs no actions.
func (p *Plan) IsEmpty() bool {
	return len(p.Actions) == 0
}

// Apply applies every action's postconditions to state, in order.
func (p *Plan) Apply(state State) {
	for _, action := range p.Actions {
		state.Apply(action.Post())
	}
}

// String returns a string representation of the plan.
func (p *Plan) String() string {
	if len(p.Actions) == 0 {
		return fmt.Sprintf("Empty Plan for %s", p.Goal.Name())
	}

	parts := make([]string, len(p.Actions))
	for i, action := range p.Actions {
		parts[i] = fmt.Sprintf("%d. %s", i+1, action.Name())
	}

	return fmt.Sprintf("Plan for %s (cost: %d):\n%s", p.Goal.Name(), p.Cost, strings.Join(parts, "\n"))
}

// Outcome describes how planning for a single goal ended.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeIneligible
	OutcomeExhausted
	OutcomeCeiling
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeIneligible:
		return "ineligible"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCeiling:
		return "ceiling"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Observer is notified once for every goal the planner considers.
type Observer interface {
	GoalEvaluated(goal string, outcome Outcome, expansions int, cost int64)
}

// Option configures a Planner.
type Option func(*Planner)

// WithMaxExpansions bounds the number of search nodes popped per goal.
// Zero means unbounded.
func WithMaxExpansions(n int) Option {
	return func(p *Planner) {
		if n < 0 {
			n = 0
		}
		p.maxExpansions = n
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(p *Planner) {
		p.observer = o
	}
}

// Planner selects a goal and finds a sequence of actions that reaches it by
// chaining backwards from the goal's desired state. Its configuration is fixed
// at construction and it keeps nothing between calls, so a single Planner may
// be shared across goroutines.
type Planner struct {
	maxExpansions int
	observer      Observer
}

// NewPlanner creates a Planner.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Solve runs an unbounded planner over goals, actions and state.
func Solve(goals []*Goal, actions []*Action, state State) *Plan {
	return NewPlanner().Plan(goals, actions, state)
}

// MaxExpansions returns the configured expansion ceiling (0 = unbounded).
func (p *Planner) MaxExpansions() int {
	return p.maxExpansions
}

// Plan tries goals in order and returns a plan for the first eligible goal
// that has one. Returns nil if no goal is eligible or none can be reached.
// The state is never modified.
func (p *Planner) Plan(goals []*Goal, actions []*Action, state State) *Plan {
	index := indexActions(actions)

	for _, goal := range goals {
		plan, outcome := p.planGoal(goal, actions, index, state)
		if outcome == OutcomeFound {
			log.Info("Plan found", "goal", goal.Name(), "actions", len(plan.Actions), "cost", plan.Cost, "expansions", plan.Expansions)
			return plan
		}
	}

	log.Debug("No actionable goal", "goals", len(goals), "state", state.String())
	return nil
}

// PlanGoal plans for a single goal and reports the outcome.
func (p *Planner) PlanGoal(goal *Goal, actions []*Action, state State) (*Plan, Outcome) {
	return p.planGoal(goal, actions, indexActions(actions), state)
}

func (p *Planner) planGoal(goal *Goal, actions []*Action, index actionIndex, state State) (*Plan, Outcome) {
	if !goal.Eligible(state) {
		log.Debug("Goal not eligible", "goal", goal.Name(), "gate", goal.IsValid().String())
		p.notify(goal, OutcomeIneligible, 0, 0)
		return nil, OutcomeIneligible
	}

	plan, outcome := p.search(goal, index, state)
	switch outcome {
	case OutcomeFound:
		p.notify(goal, outcome, plan.Expansions, plan.Cost)
	case OutcomeCeiling:
		log.Warn("Plan search reached max expansions", "goal", goal.Name(), "maxExpansions", p.maxExpansions)
		p.notify(goal, outcome, p.maxExpansions, 0)
	default:
		log.Debug("No plan found for goal", "goal", goal.Name(), "unreachable", unreachable(goal, actions, state))
		p.notify(goal, outcome, 0, 0)
	}
	return plan, outcome
}

func (p *Planner) notify(goal *Goal, outcome Outcome, expansions int, cost int64) {
	if p.observer != nil {
		p.observer.GoalEvaluated(goal.Name(), outcome, expansions, cost)
	}
}

// search is a best-first search ordered by accumulated cost. A node is
// finished when every predicate it still requires already holds in the
// caller's state.
func (p *Planner) search(goal *Goal, index actionIndex, state State) (*Plan, Outcome) {
	snapshot := state.Clone()

	openSet := &PriorityQueue{}
	heap.Init(openSet)

	var seq uint64
	heap.Push(openSet, &Node{
		state:    snapshot,
		required: goal.DesiredState().Clone(),
		seq:      seq,
	})

	expansions := 0
	for openSet.Len() > 0 {
		if p.maxExpansions > 0 && expansions >= p.maxExpansions {
			return nil, OutcomeCeiling
		}
		expansions++

		current := heap.Pop(openSet).(*Node)

		unmet := current.state.Unmet(current.required)
		if len(unmet) == 0 {
			return &Plan{
				Goal:       goal.Clone(),
				Actions:    current.actions,
				Cost:       current.cost,
				Expansions: expansions,
			}, OutcomeFound
		}

		log.Debug("Exploring node", "goal", goal.Name(), "depth", len(current.actions), "cost", current.cost, "unmet", unmet)

		for _, name := range unmet {
			want := current.required[name]
			action := index.first(name, want)
			if action == nil {
				continue
			}

			required := current.required.Clone()
			delete(required, name)
			required.Apply(action.Pre())

			// actions are discovered last-to-first, so prepend
			chain := make([]*Action, len(current.actions)+1)
			chain[0] = action
			copy(chain[1:], current.actions)

			seq++
			heap.Push(openSet, &Node{
				cost:     current.cost + action.Cost(),
				actions:  chain,
				state:    current.state,
				required: required,
				seq:      seq,
			})
		}
	}

	return nil, OutcomeExhausted
}

// unreachable lists the desired predicates that are unmet and that no action
// in the catalog produces.
func unreachable(goal *Goal, actions []*Action, state State) []string {
	var missing []string
	for _, name := range state.Unmet(goal.DesiredState()) {
		want := goal.DesiredState()[name]
		found := false
		for _, action := range actions {
			if action.Satisfies(name, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}

type literal struct {
	name  string
	value bool
}

// actionIndex maps a predicate literal to the first action, in catalog order,
// whose postconditions produce it.
type actionIndex map[literal]*Action

func indexActions(actions []*Action) actionIndex {
	index := make(actionIndex)
	for _, action := range actions {
		for name, value := range action.Post() {
			key := literal{name: name, value: value}
			if _, exists := index[key]; !exists {
				index[key] = action
			}
		}
	}
	return index
}

func (ix actionIndex) first(name string, value bool) *Action {
	return ix[literal{name: name, value: value}]
}

// Node is a partial plan in the search.
type Node struct {
	cost     int64
	actions  []*Action // execution order
	state    State     // shared, never mutated
	required State
	seq      uint64
	index    int // Required for heap interface
}

// PriorityQueue implements a min-heap of nodes ordered by cost. Equal costs
// pop in push order.
type PriorityQueue []*Node

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].seq < pq[j].seq
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*Node)
	node.index = n
	*pq = append(*pq, node)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil  // Avoid memory leak
	node.index = -1 // For safety
	*pq = old[0 : n-1]
	return node
}
