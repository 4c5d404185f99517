package audit

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aridelmo/argus/internal/logger"
)

// Retention prunes old audit records on a schedule so the log does not grow
// without bound.
type Retention struct {
	service *Service
	maxAge  time.Duration
	cron    *cron.Cron
}

// NewRetention creates a pruner keeping records for maxAge.
func NewRetention(service *Service, maxAge time.Duration) *Retention {
	return &Retention{
		service: service,
		maxAge:  maxAge,
		cron:    cron.New(),
	}
}

// Start schedules a daily prune. Returns an error only if the schedule spec
// is rejected.
func (r *Retention) Start() error {
	if _, err := r.cron.AddFunc("@daily", r.prune); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running prune to finish.
func (r *Retention) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Retention) prune() {
	deleted, err := r.service.PruneOlderThan(r.maxAge)
	log := logger.WithComponent("audit")
	if err != nil {
		log.WithError(err).Error("audit retention prune failed")
		return
	}
	if deleted > 0 {
		log.WithField("deleted", deleted).Info("pruned expired audit records")
	}
}
