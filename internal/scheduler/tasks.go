package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSyncDriveLinks = "reconcile.drive_links"

const TaskSyncShootDetails = "reconcile.shoot_details"

// ReconcilePayload scopes a sync run. An empty page key syncs every page.
type ReconcilePayload struct {
	PageKey     string `json:"pageKey"`
	ProjectName string `json:"projectName"`
}

func NewDriveLinkSyncTask(payload ReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncDriveLinks, data), nil
}

func NewShootDetailSyncTask(payload ReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncShootDetails, data), nil
}

func ParseReconcilePayload(task *asynq.Task) (ReconcilePayload, error) {
	var payload ReconcilePayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReconcilePayload{}, err
	}
	return payload, nil
}
