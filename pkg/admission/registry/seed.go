package registry

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

// SeedDefaults installs the baseline policies every engine starts with: a
// per-IP sliding window for sustained traffic and a per-IP token bucket
// guarding against short bursts. Seeding is part of the engine so default
// behavior is identical everywhere without external configuration.
func SeedDefaults(g *Registry) error {
	defaults := []rule.Rule{
		{
			ID:       "default-per-ip",
			Strategy: rule.StrategySlidingWindow,
			Limit:    1000,
			Window:   time.Minute,
			Scope:    rule.ScopePerIP,
			Actions:  []rule.Action{rule.ActionBlock},
			Priority: 0,
		},
		{
			ID:       "burst-protection",
			Strategy: rule.StrategyTokenBucket,
			Limit:    50,
			Window:   10 * time.Second,
			Scope:    rule.ScopePerIP,
			Actions:  []rule.Action{rule.ActionBlock},
			Priority: 10,
		},
	}
	for _, r := range defaults {
		if err := g.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// ruleDefinition mirrors rule.Rule with a string window so operators can
// write "10s" in YAML.
type ruleDefinition struct {
	ID         string           `mapstructure:"id"`
	Strategy   string           `mapstructure:"strategy"`
	Limit      int              `mapstructure:"limit"`
	Window     string           `mapstructure:"window"`
	Burst      int              `mapstructure:"burst"`
	Scope      string           `mapstructure:"scope"`
	Endpoints  []string         `mapstructure:"endpoints"`
	Conditions []rule.Condition `mapstructure:"conditions"`
	Actions    []string         `mapstructure:"actions"`
	Priority   int              `mapstructure:"priority"`
}

// SeedFromSettings decodes operator-supplied rule definitions (settings maps
// from the config file) and registers them.
func SeedFromSettings(g *Registry, settings []map[string]interface{}) error {
	for _, raw := range settings {
		var def ruleDefinition
		if err := mapstructure.Decode(raw, &def); err != nil {
			return fmt.Errorf("invalid rule definition: %w", err)
		}
		window, err := time.ParseDuration(def.Window)
		if err != nil {
			return fmt.Errorf("invalid window for rule %q: %w", def.ID, err)
		}
		actions := make([]rule.Action, 0, len(def.Actions))
		for _, a := range def.Actions {
			actions = append(actions, rule.Action(a))
		}
		r := rule.Rule{
			ID:         def.ID,
			Strategy:   rule.Strategy(def.Strategy),
			Limit:      def.Limit,
			Window:     window,
			Burst:      def.Burst,
			Scope:      rule.Scope(def.Scope),
			Endpoints:  def.Endpoints,
			Conditions: def.Conditions,
			Actions:    actions,
			Priority:   def.Priority,
		}
		if err := g.Add(r); err != nil {
			return err
		}
	}
	return nil
}
