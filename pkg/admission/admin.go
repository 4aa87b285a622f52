package admission

import (
	"context"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

// Administrative operations. These are operator calls, not hot-path calls;
// unknown rules or keys are reported as not-found results rather than faults.

func (e *Engine) AddRule(r rule.Rule) error {
	return e.registry.Add(r)
}

func (e *Engine) RemoveRule(id string) bool {
	return e.registry.Remove(id)
}

func (e *Engine) Rules() []rule.Rule {
	return e.registry.List()
}

// GetUsage looks up a counter record by its "<ruleID>:<scopeKey>" key.
func (e *Engine) GetUsage(ctx context.Context, key string) (store.CounterRecord, bool, error) {
	return e.store.Get(ctx, key)
}

// ResetLimit discards the counter record for key so the next check starts a
// fresh accounting period.
func (e *Engine) ResetLimit(ctx context.Context, key string) (bool, error) {
	return e.store.Delete(ctx, key)
}
