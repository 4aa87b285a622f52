package strategy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/admission/strategy"
	"github.com/floodgatehq/floodgate/pkg/domain/rule"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluate_UnknownStrategy(t *testing.T) {
	r := rule.Rule{ID: "r", Strategy: "quantum", Limit: 1, Window: time.Minute}
	rec := &store.CounterRecord{}

	_, err := strategy.Evaluate(r, rec, baseTime)

	assert.Error(t, err)
}

func TestFixedWindow_CountsDownThenDenies(t *testing.T) {
	r := rule.Rule{ID: "r", Strategy: rule.StrategyFixedWindow, Limit: 3, Window: time.Minute}
	rec := &store.CounterRecord{}

	for i, wantRemaining := range []int{2, 1, 0} {
		out, err := strategy.Evaluate(r, rec, baseTime.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, out.Allowed)
		assert.Equal(t, wantRemaining, out.Remaining)
		assert.Equal(t, baseTime.Add(time.Minute), out.ResetTime)
	}

	out, err := strategy.Evaluate(r, rec, baseTime.Add(3*time.Second))
	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Greater(t, out.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, out.RetryAfter, time.Minute)
	assert.Equal(t, int64(1), rec.DeniedCount)
}

func TestFixedWindow_FreshWindowAdmitsFullBurst(t *testing.T) {
	r := rule.Rule{ID: "r", Strategy: rule.StrategyFixedWindow, Limit: 3, Window: time.Minute}
	rec := &store.CounterRecord{}

	for i := 0; i < 4; i++ {
		_, err := strategy.Evaluate(r, rec, baseTime)
		require.NoError(t, err)
	}

	// Just past the boundary the counter resets completely.
	out, err := strategy.Evaluate(r, rec, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, out.Allowed)
	assert.Equal(t, 2, out.Remaining)
	assert.Equal(t, baseTime.Add(2*time.Minute), out.ResetTime)
}

func TestFixedWindow_DenialDoesNotConsume(t *testing.T) {
	r := rule.Rule{ID: "r", Strategy: rule.StrategyFixedWindow, Limit: 1, Window: time.Minute}
	rec := &store.CounterRecord{}

	out, err := strategy.Evaluate(r, rec, baseTime)
	require.NoError(t, err)
	require.True(t, out.Allowed)

	for i := 0; i < 10; i++ {
		out, err = strategy.Evaluate(r, rec, baseTime.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.False(t, out.Allowed)
	}
	assert.Equal(t, float64(1), rec.Count)
	assert.Equal(t, int64(10), rec.DeniedCount)
}

func TestSlidingWindow_QuietKeyResets(t *testing.T) {
	r := rule.Rule{ID: "r", Strategy: rule.StrategySlidingWindow, Limit: 2, Window: time.Minute}
	rec := &store.CounterRecord{}

	for i := 0; i < 2; i++ {
		out, err := strategy.Evaluate(r, rec, baseTime)
		require.NoError(t, err)
		require.True(t, out.Allowed)
	}

	out, err := strategy.Evaluate(r, rec, baseTime.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Greater(t, out.RetryAfter, time.Duration(0))

	// A full window of silence frees the whole budget.
	out, err = strategy.Evaluate(r, rec, baseTime.Add(2*time.Minute+2*time.Second))
	require.NoError(t, err)
	assert.True(t, out.Allowed)
	assert.Equal(t, 1, out.Remaining)
}

func TestTokenBucket_BurstThenRecovery(t *testing.T) {
	// per-token interval is window/limit = 1s
	r := rule.Rule{ID: "r", Strategy: rule.StrategyTokenBucket, Limit: 3, Window: 3 * time.Second}
	rec := &store.CounterRecord{}

	for i := 0; i < 3; i++ {
		out, err := strategy.Evaluate(r, rec, baseTime)
		require.NoError(t, err)
		require.True(t, out.Allowed, "request %d", i)
	}

	out, err := strategy.Evaluate(r, rec, baseTime)
	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Equal(t, time.Second, out.RetryAfter)

	// Exactly one token regenerates per second.
	out, err = strategy.Evaluate(r, rec, baseTime.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, out.Allowed)

	out, err = strategy.Evaluate(r, rec, baseTime.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, out.Allowed)
}

func TestTokenBucket_BurstCeiling(t *testing.T) {
	r := rule.Rule{ID: "r", Strategy: rule.StrategyTokenBucket, Limit: 2, Window: time.Minute, Burst: 5}
	rec := &store.CounterRecord{}

	allowed := 0
	for i := 0; i < 8; i++ {
		out, err := strategy.Evaluate(r, rec, baseTime)
		require.NoError(t, err)
		if out.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)
}

func TestLeakyBucket_DrainAdmitsAgain(t *testing.T) {
	r := rule.Rule{ID: "r", Strategy: rule.StrategyLeakyBucket, Limit: 2, Window: 2 * time.Second}
	rec := &store.CounterRecord{}

	for i := 0; i < 2; i++ {
		out, err := strategy.Evaluate(r, rec, baseTime)
		require.NoError(t, err)
		require.True(t, out.Allowed)
	}

	out, err := strategy.Evaluate(r, rec, baseTime)
	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Greater(t, out.RetryAfter, time.Duration(0))
	assert.True(t, out.ResetTime.After(baseTime))

	// One unit drains per second; a unit of headroom admits one request.
	out, err = strategy.Evaluate(r, rec, baseTime.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, out.Allowed)
}

func TestDenialNeverInflatesCount(t *testing.T) {
	strategies := []rule.Strategy{
		rule.StrategyFixedWindow,
		rule.StrategySlidingWindow,
		rule.StrategyTokenBucket,
		rule.StrategyLeakyBucket,
	}

	for _, st := range strategies {
		t.Run(string(st), func(t *testing.T) {
			r := rule.Rule{ID: "r", Strategy: st, Limit: 2, Window: time.Hour}
			rec := &store.CounterRecord{}

			for i := 0; i < 20; i++ {
				out, err := strategy.Evaluate(r, rec, baseTime)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, out.Remaining, 0)
			}
			assert.LessOrEqual(t, rec.Count, float64(2)+1e-9)
			assert.Equal(t, int64(18), rec.DeniedCount)
		})
	}
}
