package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
)

func TestMemoryStore_MutateCreatesRecord(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	rec, err := s.Mutate(ctx, "r1:ip:10.0.0.1", func(rec *store.CounterRecord) {
		rec.Count++
		rec.RuleID = "r1"
	})

	require.NoError(t, err)
	assert.Equal(t, "r1:ip:10.0.0.1", rec.Key)
	assert.Equal(t, float64(1), rec.Count)

	got, ok, err := s.Get(ctx, "r1:ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r1", got.RuleID)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := store.NewMemoryStore()

	_, ok, err := s.Get(context.Background(), "nope")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_MutateReturnsCopy(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	rec, err := s.Mutate(ctx, "k", func(rec *store.CounterRecord) {
		rec.Count = 5
	})
	require.NoError(t, err)

	// Mutating the returned value must not touch the live record.
	rec.Count = 99

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, float64(5), got.Count)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	_, err := s.Mutate(ctx, "k", func(rec *store.CounterRecord) {})
	require.NoError(t, err)

	ok, err := s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ConcurrentMutatesSerialize(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Mutate(ctx, "hot", func(rec *store.CounterRecord) {
				rec.Count++
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, ok, err := s.Get(ctx, "hot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(100), rec.Count)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Mutate(ctx, "stale", func(rec *store.CounterRecord) {
		rec.Window = time.Minute
		rec.ResetTime = now.Add(-2 * time.Minute)
	})
	require.NoError(t, err)
	_, err = s.Mutate(ctx, "fresh", func(rec *store.CounterRecord) {
		rec.Window = time.Minute
		rec.ResetTime = now.Add(30 * time.Second)
	})
	require.NoError(t, err)

	evicted, err := s.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	records, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fresh", records[0].Key)
}

func TestCounterRecord_Stale(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  store.CounterRecord
		want bool
	}{
		{
			name: "zero record never stale",
			rec:  store.CounterRecord{},
			want: false,
		},
		{
			name: "reset passed but within grace window",
			rec:  store.CounterRecord{Window: time.Minute, ResetTime: now.Add(-30 * time.Second)},
			want: false,
		},
		{
			name: "a full window past reset",
			rec:  store.CounterRecord{Window: time.Minute, ResetTime: now.Add(-61 * time.Second)},
			want: true,
		},
		{
			name: "falls back to last seen",
			rec:  store.CounterRecord{Window: time.Minute, LastSeen: now.Add(-2 * time.Minute)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Stale(now))
		})
	}
}
