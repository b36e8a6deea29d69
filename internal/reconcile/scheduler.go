package reconcile

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// NewScheduler wires the reconciler onto a six-field cron spec.
func NewScheduler(r *Reconciler, spec string, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}

	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		report, err := r.Run(context.Background())
		if err != nil {
			log.Error("scheduled reconciliation failed", zap.Error(err))
			return
		}
		log.Info("scheduled reconciliation finished",
			zap.Int("checked", report.Checked),
			zap.Int("fixed", report.Fixed),
		)
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.log.Info("reconciliation scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
