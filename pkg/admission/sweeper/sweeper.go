package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/floodgatehq/floodgate/pkg/admission/store"
	"github.com/floodgatehq/floodgate/pkg/infra/prometheus"
)

const (
	DefaultInterval = 5 * time.Minute
	sweepTimeout    = 30 * time.Second
)

// Sweeper periodically evicts stale counter records so memory stays bounded
// under churning scope keys. It only removes records whose natural reset has
// already passed, so racing with an in-flight check loses nothing.
type Sweeper struct {
	logger   *logrus.Logger
	store    store.Store
	interval time.Duration
	cron     *cron.Cron
}

func NewSweeper(logger *logrus.Logger, st store.Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		logger:   logger,
		store:    st,
		interval: interval,
	}
}

// Start schedules the sweep. It returns an error only on a malformed
// schedule, which cannot happen for a positive interval.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.sweep); err != nil {
		return fmt.Errorf("failed to schedule sweeper: %w", err)
	}
	s.cron.Start()
	s.logger.WithField("interval", s.interval.String()).Info("cleanup sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.SweepNow(ctx, time.Now()); err != nil {
		s.logger.WithError(err).Error("sweep cycle failed")
	}
}

// SweepNow runs one eviction pass and reports how many records were removed.
func (s *Sweeper) SweepNow(ctx context.Context, now time.Time) (int, error) {
	evicted, err := s.store.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if evicted > 0 {
		prometheus.SweeperEvictions.Add(float64(evicted))
		s.logger.WithField("evicted", evicted).Debug("evicted stale counter records")
	}
	if records, err := s.store.Snapshot(ctx); err == nil {
		prometheus.UsageRecords.Set(float64(len(records)))
	}
	return evicted, nil
}
