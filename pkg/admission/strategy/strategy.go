package strategy

import (
	"fmt"
	"time"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

// Outcome is the verdict of a single strategy evaluation.
type Outcome struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Evaluate runs the rule's strategy against a counter record at the given
// instant and applies the record mutations the verdict implies: an admitted
// unit increments Count, a denial only increments DeniedCount. LastSeen is
// bookkeeping and moves on every check.
//
// Callers decide whether rec is a scratch copy (probing candidates) or the
// live record under its key lock (charging the winner).
func Evaluate(r rule.Rule, rec *store.CounterRecord, now time.Time) (Outcome, error) {
	switch r.Strategy {
	case rule.StrategyFixedWindow:
		return evaluateFixedWindow(r, rec, now), nil
	case rule.StrategySlidingWindow:
		return evaluateSlidingWindow(r, rec, now), nil
	case rule.StrategyTokenBucket:
		return evaluateTokenBucket(r, rec, now), nil
	case rule.StrategyLeakyBucket:
		return evaluateLeakyBucket(r, rec, now), nil
	default:
		return Outcome{}, fmt.Errorf("unknown strategy %q", r.Strategy)
	}
}

// unitInterval is the regeneration period of a single unit, window/limit.
func unitInterval(r rule.Rule) time.Duration {
	per := r.Window / time.Duration(r.Limit)
	if per <= 0 {
		per = time.Nanosecond
	}
	return per
}
