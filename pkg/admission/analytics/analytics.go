package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/floodgatehq/floodgate/pkg/admission/registry"
	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

const defaultTopN = 5

// Summary is a windowed usage report derived from live counter records. It
// is best-effort: counters reset with their own windows, so this reflects
// what the engine currently remembers, not a durable history.
type Summary struct {
	From          time.Time        `json:"from,omitempty"`
	To            time.Time        `json:"to,omitempty"`
	TotalRequests int64            `json:"total_requests"`
	Allowed       int64            `json:"allowed"`
	Blocked       int64            `json:"blocked"`
	Delayed       int64            `json:"delayed"`
	PerScope      map[string]int64 `json:"per_scope"`
	TopDenied     []RuleDenials    `json:"top_denied"`
}

// RuleDenials counts how often one rule drove a denial.
type RuleDenials struct {
	RuleID string `json:"rule_id"`
	Denied int64  `json:"denied"`
}

// Aggregator computes summaries by scanning the usage store. It holds no
// state of its own and never blocks the admission hot path.
type Aggregator struct {
	store    store.Store
	registry *registry.Registry
	topN     int
}

func NewAggregator(st store.Store, reg *registry.Registry, topN int) *Aggregator {
	if topN <= 0 {
		topN = defaultTopN
	}
	return &Aggregator{store: st, registry: reg, topN: topN}
}

// GetAnalytics summarizes the records whose [firstSeen, lastSeen] span
// intersects [from, to]. Zero bounds are unbounded.
func (a *Aggregator) GetAnalytics(ctx context.Context, from, to time.Time) (Summary, error) {
	records, err := a.store.Snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		From:     from,
		To:       to,
		PerScope: make(map[string]int64),
	}
	deniedByRule := make(map[string]int64)

	for _, rec := range records {
		if !intersects(rec, from, to) {
			continue
		}

		admitted := int64(rec.Count)
		summary.Allowed += admitted
		if a.isDelayRule(rec.RuleID) {
			summary.Delayed += rec.DeniedCount
		} else {
			summary.Blocked += rec.DeniedCount
		}
		summary.PerScope[scopeOf(rec.ScopeKey)] += admitted + rec.DeniedCount

		if rec.DeniedCount > 0 {
			deniedByRule[rec.RuleID] += rec.DeniedCount
		}
	}
	summary.TotalRequests = summary.Allowed + summary.Blocked + summary.Delayed

	summary.TopDenied = topDenied(deniedByRule, a.topN)
	return summary, nil
}

func (a *Aggregator) isDelayRule(ruleID string) bool {
	r, ok := a.registry.Get(ruleID)
	return ok && r.HasAction(rule.ActionDelay)
}

func intersects(rec store.CounterRecord, from, to time.Time) bool {
	if !from.IsZero() && rec.LastSeen.Before(from) {
		return false
	}
	if !to.IsZero() && rec.FirstSeen.After(to) {
		return false
	}
	return true
}

// scopeOf extracts the scope class from a scope key, e.g. "ip:10.0.0.1"
// contributes to "ip".
func scopeOf(scopeKey string) string {
	if i := strings.Index(scopeKey, ":"); i > 0 {
		return scopeKey[:i]
	}
	return scopeKey
}

// topDenied ranks rules by denial count descending, ties broken by rule id
// so reports are deterministic.
func topDenied(deniedByRule map[string]int64, n int) []RuleDenials {
	out := make([]RuleDenials, 0, len(deniedByRule))
	for id, denied := range deniedByRule {
		out = append(out, RuleDenials{RuleID: id, Denied: denied})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Denied != out[j].Denied {
			return out[i].Denied > out[j].Denied
		}
		return out[i].RuleID < out[j].RuleID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
