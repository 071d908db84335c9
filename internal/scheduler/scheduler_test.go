package scheduler

import (
	"context"
	"errors"
	"testing"

	"casting_ops_backend/internal/events"
	"casting_ops_backend/internal/reconcile/transport"
	"casting_ops_backend/platform/config"
	"casting_ops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilePayloadRoundTrip(t *testing.T) {
	task, err := NewShootDetailSyncTask(ReconcilePayload{PageKey: "abc", ProjectName: "Spring"})
	require.NoError(t, err)
	assert.Equal(t, TaskSyncShootDetails, task.Type())

	payload, err := ParseReconcilePayload(task)
	require.NoError(t, err)
	assert.Equal(t, ReconcilePayload{PageKey: "abc", ProjectName: "Spring"}, payload)
}

func TestParseReconcilePayloadEmptyMeansAll(t *testing.T) {
	payload, err := ParseReconcilePayload(asynq.NewTask(TaskSyncDriveLinks, nil))
	require.NoError(t, err)
	assert.Equal(t, ReconcilePayload{}, payload)
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	ctx := context.Background()
	assert.NoError(t, c.EnqueueDriveLinkSync(ctx, "abc", ""))
	assert.NoError(t, c.EnqueueShootDetailSync(ctx, "abc", ""))
	assert.NoError(t, c.Close())
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(&config.Config{})
	assert.Error(t, err)
}

func TestRedisClientOptInsecureTLS(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache:6380/2", true)
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)

	plain, err := redisClientOpt("redis://cache:6379", false)
	require.NoError(t, err)
	assert.Nil(t, plain.TLSConfig)
}

type fakeJobs struct {
	driveReqs  []transport.SyncDriveLinksRequest
	detailReqs []transport.SyncShootDetailsRequest
	err        error
}

func (f *fakeJobs) SyncDriveLinks(_ context.Context, req transport.SyncDriveLinksRequest) (transport.SyncResult, error) {
	f.driveReqs = append(f.driveReqs, req)
	return transport.SyncResult{Updated: 1, Found: true}, f.err
}

func (f *fakeJobs) SyncShootDetails(_ context.Context, req transport.SyncShootDetailsRequest) (transport.SyncResult, error) {
	f.detailReqs = append(f.detailReqs, req)
	return transport.SyncResult{}, f.err
}

func newTestWorker(jobs ReconcileJobs) *Worker {
	w := &Worker{mux: asynq.NewServeMux(), jobs: jobs, log: logger.New("test")}
	w.register()
	return w
}

func TestWorkerRoutesTasksToJobs(t *testing.T) {
	jobs := &fakeJobs{}
	w := newTestWorker(jobs)
	ctx := context.Background()

	drive, err := NewDriveLinkSyncTask(ReconcilePayload{PageKey: "abc"})
	require.NoError(t, err)
	require.NoError(t, w.mux.ProcessTask(ctx, drive))

	details, err := NewShootDetailSyncTask(ReconcilePayload{ProjectName: "Spring"})
	require.NoError(t, err)
	require.NoError(t, w.mux.ProcessTask(ctx, details))

	require.Len(t, jobs.driveReqs, 1)
	assert.Equal(t, "abc", jobs.driveReqs[0].PageKey)
	assert.Nil(t, jobs.driveReqs[0].ContactID)
	require.Len(t, jobs.detailReqs, 1)
	assert.Equal(t, "Spring", jobs.detailReqs[0].ProjectName)
}

func TestWorkerSkipsRetryOnBadPayload(t *testing.T) {
	w := newTestWorker(&fakeJobs{})
	err := w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskSyncDriveLinks, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWorkerReturnsJobErrors(t *testing.T) {
	boom := errors.New("db down")
	w := newTestWorker(&fakeJobs{err: boom})
	task, err := NewShootDetailSyncTask(ReconcilePayload{})
	require.NoError(t, err)
	assert.ErrorIs(t, w.mux.ProcessTask(context.Background(), task), boom)
}

type fakeEnqueuer struct {
	drive   []string
	details []string
	err     error
}

func (f *fakeEnqueuer) EnqueueDriveLinkSync(_ context.Context, pageKey, _ string) error {
	f.drive = append(f.drive, pageKey)
	return f.err
}

func (f *fakeEnqueuer) EnqueueShootDetailSync(_ context.Context, pageKey, _ string) error {
	f.details = append(f.details, pageKey)
	return f.err
}

func TestSyncTriggerEnqueuesPageScopedSyncs(t *testing.T) {
	queue := &fakeEnqueuer{}
	trigger := NewSyncTrigger(queue, logger.New("test"))

	bus := events.NewInMemoryBus(logger.New("test"))
	trigger.Subscribe(bus)

	err := bus.PublishSync(context.Background(), events.ContactRecordCreated{
		BaseEvent: events.NewBaseEvent(),
		ContactID: uuid.New(),
		BookingID: uuid.New(),
		ProjectID: "0123456789abcdef0123456789abcdef",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0123456789abcdef0123456789abcdef"}, queue.drive)
	assert.Equal(t, []string{"0123456789abcdef0123456789abcdef"}, queue.details)
}

func TestSyncTriggerIgnoresRecordsWithoutPage(t *testing.T) {
	queue := &fakeEnqueuer{}
	trigger := NewSyncTrigger(queue, logger.New("test"))

	err := trigger.Handle(context.Background(), events.ContactRecordCreated{ContactID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, queue.drive)
	assert.Empty(t, queue.details)
}

func TestSyncTriggerSwallowsQueueErrors(t *testing.T) {
	queue := &fakeEnqueuer{err: errors.New("redis down")}
	trigger := NewSyncTrigger(queue, logger.New("test"))

	err := trigger.Handle(context.Background(), events.ContactRecordCreated{ProjectID: "page"})
	assert.NoError(t, err)
	assert.Len(t, queue.drive, 1)
}
