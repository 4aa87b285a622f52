package response

import (
	"time"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

type RuleOutput struct {
	ID         string           `json:"id"`
	Strategy   string           `json:"strategy"`
	Limit      int              `json:"limit"`
	Window     string           `json:"window"`
	Burst      int              `json:"burst,omitempty"`
	Scope      string           `json:"scope"`
	Endpoints  []string         `json:"endpoints,omitempty"`
	Conditions []rule.Condition `json:"conditions,omitempty"`
	Actions    []rule.Action    `json:"actions,omitempty"`
	Priority   int              `json:"priority"`
}

func FromRule(r rule.Rule) RuleOutput {
	return RuleOutput{
		ID:         r.ID,
		Strategy:   string(r.Strategy),
		Limit:      r.Limit,
		Window:     r.Window.String(),
		Burst:      r.Burst,
		Scope:      string(r.Scope),
		Endpoints:  r.Endpoints,
		Conditions: r.Conditions,
		Actions:    r.Actions,
		Priority:   r.Priority,
	}
}

type UsageOutput struct {
	Key         string    `json:"key"`
	RuleID      string    `json:"rule_id"`
	ScopeKey    string    `json:"scope_key"`
	Count       float64   `json:"count"`
	Limit       int       `json:"limit"`
	Window      string    `json:"window"`
	ResetTime   time.Time `json:"reset_time"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	DeniedCount int64     `json:"denied_count"`
}

func FromCounterRecord(rec store.CounterRecord) UsageOutput {
	return UsageOutput{
		Key:         rec.Key,
		RuleID:      rec.RuleID,
		ScopeKey:    rec.ScopeKey,
		Count:       rec.Count,
		Limit:       rec.Limit,
		Window:      rec.Window.String(),
		ResetTime:   rec.ResetTime,
		FirstSeen:   rec.FirstSeen,
		LastSeen:    rec.LastSeen,
		DeniedCount: rec.DeniedCount,
	}
}
