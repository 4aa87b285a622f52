package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/floodgatehq/floodgate/pkg/domain/rule"
	"github.com/floodgatehq/floodgate/pkg/types"
)

// Registry is the ordered collection of admission rules. Rules are immutable
// once added; replacing one means removing and re-adding it.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]rule.Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]rule.Rule)}
}

// Add registers a rule. Invalid limit/window or strategy fails fast here so a
// bad policy never reaches the hot path.
func (g *Registry) Add(r rule.Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.rules[r.ID]; exists {
		return fmt.Errorf("%w: %s", rule.ErrRuleAlreadyExists, r.ID)
	}
	g.rules[r.ID] = r
	return nil
}

// Remove deletes a rule by id, reporting whether it existed.
func (g *Registry) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, exists := g.rules[id]
	delete(g.rules, id)
	return exists
}

func (g *Registry) Get(id string) (rule.Rule, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rules[id]
	return r, ok
}

// List returns all rules sorted by priority descending, id ascending.
func (g *Registry) List() []rule.Rule {
	g.mu.RLock()
	out := make([]rule.Rule, 0, len(g.rules))
	for _, r := range g.rules {
		out = append(out, r)
	}
	g.mu.RUnlock()

	sortRules(out)
	return out
}

// Applicable filters the registry down to the rules that match the request,
// sorted by priority descending. Equal-priority ties are left for the
// decision combiner to break by restrictiveness.
func (g *Registry) Applicable(d types.RequestDescriptor, now time.Time) []rule.Rule {
	g.mu.RLock()
	var out []rule.Rule
	for _, r := range g.rules {
		if ruleApplies(r, d, now) {
			out = append(out, r)
		}
	}
	g.mu.RUnlock()

	sortRules(out)
	return out
}

func sortRules(rules []rule.Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}
