package strategy

import (
	"time"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

// evaluateFixedWindow counts units in discrete windows. No carry-over at the
// boundary: a fresh window admits a full burst of limit units even if the
// previous window was exhausted a moment earlier.
func evaluateFixedWindow(r rule.Rule, rec *store.CounterRecord, now time.Time) Outcome {
	if rec.ResetTime.IsZero() || !now.Before(rec.ResetTime) {
		rec.Count = 0
		rec.ResetTime = now.Add(r.Window)
	}
	rec.LastSeen = now

	out := Outcome{ResetTime: rec.ResetTime}
	if int(rec.Count) < r.Limit {
		rec.Count++
		out.Allowed = true
		out.Remaining = r.Limit - int(rec.Count)
		return out
	}

	rec.DeniedCount++
	out.RetryAfter = rec.ResetTime.Sub(now)
	return out
}
