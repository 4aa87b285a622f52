package store

import (
	"context"
	"time"
)

// CounterRecord is the usage state tracked for one (rule, scope key) pair.
// Count is fractional because the bucket strategies refund partial units.
type CounterRecord struct {
	Key         string        `json:"key"`
	RuleID      string        `json:"rule_id"`
	ScopeKey    string        `json:"scope_key"`
	Count       float64       `json:"count"`
	Limit       int           `json:"limit"`
	Window      time.Duration `json:"window"`
	ResetTime   time.Time     `json:"reset_time"`
	FirstSeen   time.Time     `json:"first_seen"`
	LastSeen    time.Time     `json:"last_seen"`
	DeniedCount int64         `json:"denied_count"`
}

// Stale reports whether the record has outlived its own window and can be
// evicted without losing information a live check could still observe.
func (r CounterRecord) Stale(now time.Time) bool {
	anchor := r.ResetTime
	if anchor.IsZero() {
		anchor = r.LastSeen
	}
	if anchor.IsZero() {
		return false
	}
	return now.After(anchor.Add(r.Window))
}

// Store holds counter records keyed by "<ruleID>:<scopeKey>". Mutations are
// atomic per key: the closure passed to Mutate runs while the key is locked,
// so two concurrent checks for the same pair serialize on the live record.
type Store interface {
	// Mutate locks key, creates a zero record if none exists, runs fn on the
	// live record and returns a copy of the record after fn.
	Mutate(ctx context.Context, key string, fn func(rec *CounterRecord)) (CounterRecord, error)

	// Get returns a copy of the record for key, if present.
	Get(ctx context.Context, key string) (CounterRecord, bool, error)

	// Delete removes the record for key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Snapshot returns copies of all live records.
	Snapshot(ctx context.Context) ([]CounterRecord, error)

	// DeleteExpired removes every stale record and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
