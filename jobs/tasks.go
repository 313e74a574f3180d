package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGrantsIntegrityScan is the task type for the nightly grant
	// integrity sweep.
	TaskGrantsIntegrityScan = "grants:integrity_scan"
)

// GrantsIntegrityPayload parameterizes the integrity sweep.
type GrantsIntegrityPayload struct {
	RequestedBy int64 `json:"requested_by,omitempty"`
}

// NewGrantsIntegrityTask constructs an Asynq task for the integrity sweep.
func NewGrantsIntegrityTask(payload GrantsIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGrantsIntegrityScan, data), nil
}
