package strategy

import (
	"math"
	"time"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

// evaluateLeakyBucket shares the token bucket's mechanics but frames Count as
// queued units draining at limit/window. A denied caller is told to come back
// once the backlog has drained, which yields a smoother admission curve than
// the token bucket's per-token horizon. RetryAfter here is a heuristic, not
// an exact bound.
func evaluateLeakyBucket(r rule.Rule, rec *store.CounterRecord, now time.Time) Outcome {
	per := unitInterval(r)
	if !rec.LastSeen.IsZero() {
		drained := float64(now.Sub(rec.LastSeen)) / float64(per)
		rec.Count = math.Max(0, rec.Count-drained)
	}
	rec.LastSeen = now

	capacity := float64(r.Capacity())
	out := Outcome{}
	if rec.Count+1 <= capacity+epsilon {
		rec.Count++
		rec.ResetTime = now.Add(per)
		out.Allowed = true
		out.ResetTime = rec.ResetTime
		out.Remaining = int(capacity - rec.Count + epsilon)
		return out
	}

	rec.DeniedCount++
	backlog := time.Duration(rec.Count * float64(per))
	rec.ResetTime = now.Add(backlog)
	out.ResetTime = rec.ResetTime
	out.RetryAfter = time.Duration((rec.Count - capacity + 1) * float64(per))
	return out
}
