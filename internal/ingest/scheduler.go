package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the importer on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// NewScheduler validates spec (standard five-field cron or a descriptor such as
// "@daily") and registers svc.Run. Each run gets at most timeout.
func NewScheduler(svc *Service, spec string, timeout time.Duration, log *zap.Logger) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := svc.Run(ctx); err != nil {
			if errors.Is(err, ErrAlreadyRunning) {
				log.Info("ingest cron: previous run still in progress")
				return
			}
			log.Error("ingest cron: run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_SCHEDULE %q: %w", spec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info("ingest cron: scheduled", zap.Time("next", e.Next))
	}
}

// Stop prevents new runs and waits for a running one to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("ingest cron: stopped before the running job finished")
	}
}
