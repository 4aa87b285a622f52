package strategy

import (
	"math"
	"time"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

const epsilon = 1e-9

// evaluateTokenBucket models Count as tokens consumed. Tokens regenerate at
// limit/window, so an idle key can burst up to the full capacity at once.
// ResetTime is the instant the next single token frees up.
func evaluateTokenBucket(r rule.Rule, rec *store.CounterRecord, now time.Time) Outcome {
	per := unitInterval(r)
	if !rec.LastSeen.IsZero() {
		refund := float64(now.Sub(rec.LastSeen)) / float64(per)
		rec.Count = math.Max(0, rec.Count-refund)
	}
	rec.LastSeen = now
	rec.ResetTime = now.Add(per)

	capacity := float64(r.Capacity())
	out := Outcome{ResetTime: rec.ResetTime}
	if rec.Count+1 <= capacity+epsilon {
		rec.Count++
		out.Allowed = true
		out.Remaining = int(capacity - rec.Count + epsilon)
		return out
	}

	rec.DeniedCount++
	out.RetryAfter = per
	return out
}
