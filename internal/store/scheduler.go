package store

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler reloads a store on a cron schedule
type Scheduler struct {
	store   *Store
	cron    *cron.Cron
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewScheduler registers a periodic refresh of st. Each refresh is bounded by
// timeout.
func NewScheduler(st *Store, spec string, timeout time.Duration, log logrus.FieldLogger) (*Scheduler, error) {
	s := &Scheduler{
		store:   st,
		cron:    cron.New(),
		timeout: timeout,
		log:     log.WithField("component", "scheduler"),
	}

	if _, err := s.cron.AddFunc(spec, s.refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// Refresh logs its own failures; the old snapshot keeps serving.
	if _, err := s.store.Refresh(ctx); err == nil {
		s.log.Debug("Scheduled refresh completed")
	}
}

// Start begins running the schedule in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
