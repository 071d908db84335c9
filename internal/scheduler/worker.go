package scheduler

import (
	"context"
	"fmt"

	"casting_ops_backend/internal/reconcile/transport"
	"casting_ops_backend/platform/config"
	"casting_ops_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// ReconcileJobs runs the sync jobs the worker serves.
type ReconcileJobs interface {
	SyncDriveLinks(ctx context.Context, req transport.SyncDriveLinksRequest) (transport.SyncResult, error)
	SyncShootDetails(ctx context.Context, req transport.SyncShootDetailsRequest) (transport.SyncResult, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	jobs   ReconcileJobs
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, jobs ReconcileJobs, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		jobs:   jobs,
		log:    log,
	}
	w.register()

	return w, nil
}

func (w *Worker) register() {
	w.mux.HandleFunc(TaskSyncDriveLinks, w.handleDriveLinkSync)
	w.mux.HandleFunc(TaskSyncShootDetails, w.handleShootDetailSync)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
		return
	}
	<-ctx.Done()
	w.server.Shutdown()
}

func (w *Worker) handleDriveLinkSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReconcilePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	res, err := w.jobs.SyncDriveLinks(ctx, transport.SyncDriveLinksRequest{
		PageKey:     payload.PageKey,
		ProjectName: payload.ProjectName,
	})
	if err != nil {
		return err
	}
	w.log.Info("drive link sync done", "pageKey", payload.PageKey, "updated", res.Updated, "found", res.Found)
	return nil
}

func (w *Worker) handleShootDetailSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReconcilePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	res, err := w.jobs.SyncShootDetails(ctx, transport.SyncShootDetailsRequest{
		PageKey:     payload.PageKey,
		ProjectName: payload.ProjectName,
	})
	if err != nil {
		return err
	}
	w.log.Info("shoot detail sync done", "pageKey", payload.PageKey, "updated", res.Updated, "found", res.Found)
	return nil
}
