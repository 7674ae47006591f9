package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Refresher reloads the store from its source when the source changed.
type Refresher interface {
	Refresh(ctx context.Context)
}

type Scheduler struct {
	cron    *cron.Cron
	service Refresher
	spec    string
	log     *slog.Logger
}

func New(spec string, service Refresher, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		spec:    spec,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.log.Info("scheduled refresh triggered")
		go s.service.Refresh(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("refresh scheduler started", "spec", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
