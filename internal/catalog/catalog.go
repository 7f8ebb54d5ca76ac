// Package catalog loads goal and action catalogs, and world state snapshots,
// from YAML, TOML or JSON files.
package catalog

import (
	"errors"
	"fmt"

	"upside-down-research.com/oss/goap/internal/goap"
)

var (
	// ErrInvalidCatalog is returned for catalogs that fail structural checks.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// GoalRecord is the serialized form of a goal.
type GoalRecord struct {
	Name         string          `yaml:"name" toml:"name" json:"name"`
	DesiredState map[string]bool `yaml:"desired_state" toml:"desired_state" json:"desired_state"`
	IsValid      map[string]bool `yaml:"is_valid" toml:"is_valid" json:"is_valid"`
}

// ActionRecord is the serialized form of an action.
type ActionRecord struct {
	Name string          `yaml:"name" toml:"name" json:"name"`
	Pre  map[string]bool `yaml:"pre" toml:"pre" json:"pre"`
	Cost int64           `yaml:"cost" toml:"cost" json:"cost"`
	Post map[string]bool `yaml:"post" toml:"post" json:"post"`
}

// Document is one catalog file. A goals file carries only Goal, an actions
// file only Action; a combined file may carry both.
type Document struct {
	Goal   []GoalRecord   `yaml:"goal,omitempty" toml:"goal,omitempty" json:"goal,omitempty"`
	Action []ActionRecord `yaml:"action,omitempty" toml:"action,omitempty" json:"action,omitempty"`
}

// Catalog is the in-memory, read-only goal and action lists handed to the
// planner. Goals are in priority order and actions in catalog order.
type Catalog struct {
	Goals   []*goap.Goal
	Actions []*goap.Action
	Sources []string
}

// Merge appends another document's records, preserving order.
func (d *Document) Merge(other *Document) {
	d.Goal = append(d.Goal, other.Goal...)
	d.Action = append(d.Action, other.Action...)
}

// Build checks the document structurally and converts it into planner types.
// Names are interned so repeated predicate names share storage.
func (d *Document) Build() (*Catalog, error) {
	pool := newPool()
	cat := &Catalog{
		Goals:   make([]*goap.Goal, 0, len(d.Goal)),
		Actions: make([]*goap.Action, 0, len(d.Action)),
	}

	for i, g := range d.Goal {
		if g.Name == "" {
			return nil, fmt.Errorf("%w: goal %d has no name", ErrInvalidCatalog, i)
		}
		isValid, err := pool.state(g.IsValid)
		if err != nil {
			return nil, fmt.Errorf("%w: goal %q is_valid: %v", ErrInvalidCatalog, g.Name, err)
		}
		desired, err := pool.state(g.DesiredState)
		if err != nil {
			return nil, fmt.Errorf("%w: goal %q desired_state: %v", ErrInvalidCatalog, g.Name, err)
		}
		cat.Goals = append(cat.Goals, goap.NewGoal(pool.intern(g.Name), isValid, desired))
	}

	for i, a := range d.Action {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: action %d has no name", ErrInvalidCatalog, i)
		}
		if a.Cost < 0 {
			return nil, fmt.Errorf("%w: action %q has negative cost %d", ErrInvalidCatalog, a.Name, a.Cost)
		}
		pre, err := pool.state(a.Pre)
		if err != nil {
			return nil, fmt.Errorf("%w: action %q pre: %v", ErrInvalidCatalog, a.Name, err)
		}
		post, err := pool.state(a.Post)
		if err != nil {
			return nil, fmt.Errorf("%w: action %q post: %v", ErrInvalidCatalog, a.Name, err)
		}
		cat.Actions = append(cat.Actions, goap.NewAction(pool.intern(a.Name), pre, post, a.Cost))
	}

	return cat, nil
}

// Goal returns the first goal with the given name, or nil.
func (c *Catalog) Goal(name string) *goap.Goal {
	for _, g := range c.Goals {
		if g.Name() == name {
			return g
		}
	}
	return nil
}

// Action returns the first action with the given name, or nil.
func (c *Catalog) Action(name string) *goap.Action {
	for _, a := range c.Actions {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// pool interns strings for the lifetime of one load.
type pool map[string]string

func newPool() pool {
	return make(pool)
}

func (p pool) intern(s string) string {
	if v, ok := p[s]; ok {
		return v
	}
	p[s] = s
	return s
}

func (p pool) state(m map[string]bool) (goap.State, error) {
	s := make(goap.State, len(m))
	for k, v := range m {
		if k == "" {
			return nil, errors.New("empty predicate name")
		}
		s[p.intern(k)] = v
	}
	return s, nil
}
