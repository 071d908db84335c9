package scheduler

import (
	"context"

	"casting_ops_backend/internal/events"
	"casting_ops_backend/platform/logger"
)

// SyncEnqueuer queues key-scoped sync runs.
type SyncEnqueuer interface {
	EnqueueDriveLinkSync(ctx context.Context, pageKey, projectName string) error
	EnqueueShootDetailSync(ctx context.Context, pageKey, projectName string) error
}

// SyncTrigger queues the reconciliation of a page as soon as a contact record
// for it is created, so the record does not wait for the periodic run.
type SyncTrigger struct {
	queue SyncEnqueuer
	log   *logger.Logger
}

func NewSyncTrigger(queue SyncEnqueuer, log *logger.Logger) *SyncTrigger {
	return &SyncTrigger{queue: queue, log: log}
}

func (t *SyncTrigger) Subscribe(bus events.Bus) {
	bus.Subscribe(events.ContactRecordCreated{}.EventName(), t)
}

// Handle implements events.Handler.
func (t *SyncTrigger) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ContactRecordCreated)
	if !ok || e.ProjectID == "" {
		return nil
	}
	if err := t.queue.EnqueueDriveLinkSync(ctx, e.ProjectID, ""); err != nil {
		t.log.Step("enqueue_drive_link_sync", err, "contactId", e.ContactID, "pageKey", e.ProjectID)
	}
	if err := t.queue.EnqueueShootDetailSync(ctx, e.ProjectID, ""); err != nil {
		t.log.Step("enqueue_shoot_detail_sync", err, "contactId", e.ContactID, "pageKey", e.ProjectID)
	}
	return nil
}
