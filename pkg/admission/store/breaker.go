package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// breakerStore shields the hot path from a degraded backing store. Once the
// breaker opens every call fails fast, which the engine turns into a
// fail-open admission.
type breakerStore struct {
	inner  Store
	cb     *gobreaker.CircuitBreaker
	logger *logrus.Logger
}

func NewBreakerStore(inner Store, logger *logrus.Logger) Store {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "usage-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("usage store breaker state changed")
		},
	})
	return &breakerStore{inner: inner, cb: cb, logger: logger}
}

func (s *breakerStore) Mutate(ctx context.Context, key string, fn func(rec *CounterRecord)) (CounterRecord, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Mutate(ctx, key, fn)
	})
	if err != nil {
		return CounterRecord{}, err
	}
	rec, _ := out.(CounterRecord)
	return rec, nil
}

func (s *breakerStore) Get(ctx context.Context, key string) (CounterRecord, bool, error) {
	type result struct {
		rec CounterRecord
		ok  bool
	}
	out, err := s.cb.Execute(func() (interface{}, error) {
		rec, ok, err := s.inner.Get(ctx, key)
		return result{rec, ok}, err
	})
	if err != nil {
		return CounterRecord{}, false, err
	}
	res, _ := out.(result)
	return res.rec, res.ok, nil
}

func (s *breakerStore) Delete(ctx context.Context, key string) (bool, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Delete(ctx, key)
	})
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

func (s *breakerStore) Snapshot(ctx context.Context) ([]CounterRecord, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.Snapshot(ctx)
	})
	if err != nil {
		return nil, err
	}
	records, _ := out.([]CounterRecord)
	return records, nil
}

func (s *breakerStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.inner.DeleteExpired(ctx, now)
	})
	if err != nil {
		return 0, err
	}
	n, _ := out.(int)
	return n, nil
}
