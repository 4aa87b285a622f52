package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodgatehq/floodgate/pkg/admission/analytics"
	"github.com/floodgatehq/floodgate/pkg/admission/registry"
	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func seedRecord(t *testing.T, st store.Store, key, ruleID, scopeKey string, count float64, denied int64, firstSeen, lastSeen time.Time) {
	t.Helper()
	_, err := st.Mutate(context.Background(), key, func(rec *store.CounterRecord) {
		rec.RuleID = ruleID
		rec.ScopeKey = scopeKey
		rec.Count = count
		rec.DeniedCount = denied
		rec.FirstSeen = firstSeen
		rec.LastSeen = lastSeen
	})
	require.NoError(t, err)
}

func TestGetAnalytics_SummarizesRecords(t *testing.T) {
	st := store.NewMemoryStore()
	reg := registry.NewRegistry()
	agg := analytics.NewAggregator(st, reg, 5)

	seedRecord(t, st, "r1:ip:10.0.0.1", "r1", "ip:10.0.0.1", 10, 3, baseTime, baseTime.Add(time.Minute))
	seedRecord(t, st, "r1:ip:10.0.0.2", "r1", "ip:10.0.0.2", 5, 0, baseTime, baseTime.Add(time.Minute))
	seedRecord(t, st, "r2:user:42", "r2", "user:42", 7, 1, baseTime, baseTime.Add(time.Minute))

	summary, err := agg.GetAnalytics(context.Background(), time.Time{}, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, int64(22), summary.Allowed)
	assert.Equal(t, int64(4), summary.Blocked)
	assert.Equal(t, int64(0), summary.Delayed)
	assert.Equal(t, int64(26), summary.TotalRequests)
	assert.Equal(t, int64(18), summary.PerScope["ip"])
	assert.Equal(t, int64(8), summary.PerScope["user"])
}

func TestGetAnalytics_DelayRulesCountSeparately(t *testing.T) {
	st := store.NewMemoryStore()
	reg := registry.NewRegistry()
	require.NoError(t, reg.Add(rule.Rule{
		ID:       "soft",
		Strategy: rule.StrategyFixedWindow,
		Limit:    10,
		Window:   time.Minute,
		Scope:    rule.ScopePerIP,
		Actions:  []rule.Action{rule.ActionDelay},
	}))
	agg := analytics.NewAggregator(st, reg, 5)

	seedRecord(t, st, "soft:ip:10.0.0.1", "soft", "ip:10.0.0.1", 10, 6, baseTime, baseTime)

	summary, err := agg.GetAnalytics(context.Background(), time.Time{}, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, int64(6), summary.Delayed)
	assert.Equal(t, int64(0), summary.Blocked)
}

func TestGetAnalytics_WindowFiltersRecords(t *testing.T) {
	st := store.NewMemoryStore()
	agg := analytics.NewAggregator(st, registry.NewRegistry(), 5)

	seedRecord(t, st, "r1:global", "r1", "global", 10, 0, baseTime, baseTime.Add(time.Minute))
	seedRecord(t, st, "r2:global", "r2", "global", 99, 0, baseTime.Add(-2*time.Hour), baseTime.Add(-time.Hour))

	summary, err := agg.GetAnalytics(context.Background(), baseTime.Add(-time.Minute), baseTime.Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, int64(10), summary.Allowed)
}

func TestGetAnalytics_TopDeniedRanking(t *testing.T) {
	st := store.NewMemoryStore()
	agg := analytics.NewAggregator(st, registry.NewRegistry(), 2)

	seedRecord(t, st, "a:global", "a", "global", 1, 2, baseTime, baseTime)
	seedRecord(t, st, "b:global", "b", "global", 1, 9, baseTime, baseTime)
	seedRecord(t, st, "c:global", "c", "global", 1, 2, baseTime, baseTime)
	seedRecord(t, st, "clean:global", "clean", "global", 5, 0, baseTime, baseTime)

	summary, err := agg.GetAnalytics(context.Background(), time.Time{}, time.Time{})

	require.NoError(t, err)
	require.Len(t, summary.TopDenied, 2)
	assert.Equal(t, analytics.RuleDenials{RuleID: "b", Denied: 9}, summary.TopDenied[0])
	// Equal counts tie-break by rule id.
	assert.Equal(t, analytics.RuleDenials{RuleID: "a", Denied: 2}, summary.TopDenied[1])
}
