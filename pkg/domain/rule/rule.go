package rule

import (
	"fmt"
	"time"
)

// Strategy selects the limiting algorithm a rule is evaluated with. The set
// is closed; Validate rejects anything else at registration time.
type Strategy string

const (
	StrategyFixedWindow   Strategy = "fixed_window"
	StrategySlidingWindow Strategy = "sliding_window"
	StrategyTokenBucket   Strategy = "token_bucket"
	StrategyLeakyBucket   Strategy = "leaky_bucket"
)

// Scope selects the identity a rule's counters are tracked against.
type Scope string

const (
	ScopeGlobal        Scope = "global"
	ScopePerIP         Scope = "per_ip"
	ScopePerUser       Scope = "per_user"
	ScopePerCredential Scope = "per_credential"
	ScopePerEndpoint   Scope = "per_endpoint"
)

// Action describes what happens when a rule denies a request.
type Action string

const (
	ActionBlock Action = "block"
	ActionDelay Action = "delay"
	ActionLog   Action = "log"
	ActionAlert Action = "alert"
)

// Rule is an immutable admission policy. Once registered it is never
// modified; updates go through remove + add.
type Rule struct {
	ID         string        `json:"id" mapstructure:"id"`
	Strategy   Strategy      `json:"strategy" mapstructure:"strategy"`
	Limit      int           `json:"limit" mapstructure:"limit"`
	Window     time.Duration `json:"window" mapstructure:"window"`
	Burst      int           `json:"burst,omitempty" mapstructure:"burst"`
	Scope      Scope         `json:"scope" mapstructure:"scope"`
	Endpoints  []string      `json:"endpoints,omitempty" mapstructure:"endpoints"`
	Conditions []Condition   `json:"conditions,omitempty" mapstructure:"conditions"`
	Actions    []Action      `json:"actions,omitempty" mapstructure:"actions"`
	Priority   int           `json:"priority" mapstructure:"priority"`
}

// Capacity is the number of units the rule admits in a full window. Token
// and leaky bucket rules may carry a distinct burst ceiling.
func (r Rule) Capacity() int {
	if r.Burst > 0 && (r.Strategy == StrategyTokenBucket || r.Strategy == StrategyLeakyBucket) {
		return r.Burst
	}
	return r.Limit
}

// HasAction reports whether the rule carries the given violation action.
// A rule with no actions behaves as block.
func (r Rule) HasAction(a Action) bool {
	if len(r.Actions) == 0 {
		return a == ActionBlock
	}
	for _, action := range r.Actions {
		if action == a {
			return true
		}
	}
	return false
}

func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRule)
	}
	if r.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRule, r.Limit)
	}
	if r.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %s", ErrInvalidRule, r.Window)
	}
	if r.Burst < 0 {
		return fmt.Errorf("%w: burst must not be negative, got %d", ErrInvalidRule, r.Burst)
	}
	switch r.Strategy {
	case StrategyFixedWindow, StrategySlidingWindow, StrategyTokenBucket, StrategyLeakyBucket:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidRule, r.Strategy)
	}
	switch r.Scope {
	case ScopeGlobal, ScopePerIP, ScopePerUser, ScopePerCredential, ScopePerEndpoint:
	default:
		return fmt.Errorf("%w: unknown scope %q", ErrInvalidRule, r.Scope)
	}
	for _, a := range r.Actions {
		switch a {
		case ActionBlock, ActionDelay, ActionLog, ActionAlert:
		default:
			return fmt.Errorf("%w: unknown action %q", ErrInvalidRule, a)
		}
	}
	for _, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
