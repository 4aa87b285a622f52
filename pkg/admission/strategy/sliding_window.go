package strategy

import (
	"math"
	"time"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

// evaluateSlidingWindow approximates a continuously moving window: the count
// drops to zero once the key has been quiet for a full window, otherwise it
// accumulates. RetryAfter on denial is ceil(window/limit), a smoothed
// estimate of when one unit frees up, not an exact deadline.
func evaluateSlidingWindow(r rule.Rule, rec *store.CounterRecord, now time.Time) Outcome {
	if !rec.LastSeen.IsZero() && rec.LastSeen.Before(now.Add(-r.Window)) {
		rec.Count = 0
	}
	rec.LastSeen = now
	rec.ResetTime = now.Add(r.Window)

	out := Outcome{ResetTime: rec.ResetTime}
	if int(rec.Count) < r.Limit {
		rec.Count++
		out.Allowed = true
		out.Remaining = r.Limit - int(rec.Count)
		return out
	}

	rec.DeniedCount++
	out.RetryAfter = time.Duration(math.Ceil(float64(r.Window) / float64(r.Limit)))
	return out
}
