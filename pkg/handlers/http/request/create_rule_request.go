package request

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

type CreateRuleRequest struct {
	ID         string             `json:"id"`
	Strategy   string             `json:"strategy"`
	Limit      int                `json:"limit"`
	Window     string             `json:"window"`
	Burst      int                `json:"burst,omitempty"`
	Scope      string             `json:"scope"`
	Endpoints  []string           `json:"endpoints,omitempty"`
	Conditions []ConditionRequest `json:"conditions,omitempty"`
	Actions    []string           `json:"actions,omitempty"`
	Priority   int                `json:"priority"`
}

type ConditionRequest struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// ToRule converts the request into a domain rule, assigning an id when the
// caller did not supply one. Validation is left to the registry.
func (r CreateRuleRequest) ToRule() (rule.Rule, error) {
	window, err := time.ParseDuration(r.Window)
	if err != nil {
		return rule.Rule{}, fmt.Errorf("invalid window %q: %w", r.Window, err)
	}

	id := r.ID
	if id == "" {
		id = uuid.New().String()
	}

	conditions := make([]rule.Condition, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		conditions = append(conditions, rule.Condition{Field: c.Field, Values: c.Values})
	}

	actions := make([]rule.Action, 0, len(r.Actions))
	for _, a := range r.Actions {
		actions = append(actions, rule.Action(a))
	}

	return rule.Rule{
		ID:         id,
		Strategy:   rule.Strategy(r.Strategy),
		Limit:      r.Limit,
		Window:     window,
		Burst:      r.Burst,
		Scope:      rule.Scope(r.Scope),
		Endpoints:  r.Endpoints,
		Conditions: conditions,
		Actions:    actions,
		Priority:   r.Priority,
	}, nil
}
