package scheduler

import (
	"context"
	"fmt"

	"casting_ops_backend/platform/config"
	"casting_ops_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the sync-all runs on the reconcile schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	spec := cfg.GetReconcileSchedule()
	if spec == "" {
		spec = "@every 1h"
	}

	p := &Periodic{
		scheduler: asynq.NewScheduler(opt, &asynq.SchedulerOpts{}),
		log:       log,
	}

	all := ReconcilePayload{}
	driveLinks, err := NewDriveLinkSyncTask(all)
	if err != nil {
		return nil, err
	}
	shootDetails, err := NewShootDetailSyncTask(all)
	if err != nil {
		return nil, err
	}

	queue := asynq.Queue(queueName(cfg))
	for _, task := range []*asynq.Task{driveLinks, shootDetails} {
		id, err := p.scheduler.Register(spec, task, queue, asynq.Unique(uniqueWindow))
		if err != nil {
			return nil, fmt.Errorf("register %s on %q: %w", task.Type(), spec, err)
		}
		log.Info("periodic sync registered", "task", task.Type(), "schedule", spec, "entryId", id)
	}
	return p, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
