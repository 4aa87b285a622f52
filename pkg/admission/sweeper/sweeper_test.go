package sweeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/admission/sweeper"
)

func TestSweepNow_EvictsOnlyStaleRecords(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := st.Mutate(ctx, "stale", func(rec *store.CounterRecord) {
		rec.Window = time.Minute
		rec.ResetTime = now.Add(-5 * time.Minute)
	})
	require.NoError(t, err)
	_, err = st.Mutate(ctx, "active", func(rec *store.CounterRecord) {
		rec.Window = time.Minute
		rec.ResetTime = now.Add(time.Minute)
	})
	require.NoError(t, err)

	s := sweeper.NewSweeper(logrus.New(), st, time.Minute)
	evicted, err := s.SweepNow(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	_, ok, err := st.Get(ctx, "active")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSweeper_StartStop(t *testing.T) {
	s := sweeper.NewSweeper(logrus.New(), store.NewMemoryStore(), time.Minute)

	require.NoError(t, s.Start())
	s.Stop()
}
