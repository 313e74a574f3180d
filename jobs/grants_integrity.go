package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/lpx0007/training-management-system-sub002/internal/grants"
)

// GrantsIntegrityJob sweeps the grant tables for rows referencing catalog
// ids that no longer exist. The decision engine already ignores such rows;
// the sweep surfaces them so an admin cleans them up.
type GrantsIntegrityJob struct {
	service *grants.Service
	logger  *slog.Logger
}

// NewGrantsIntegrityJob constructs the job.
func NewGrantsIntegrityJob(service *grants.Service, logger *slog.Logger) *GrantsIntegrityJob {
	return &GrantsIntegrityJob{service: service, logger: logger}
}

// Handle processes TaskGrantsIntegrityScan tasks.
func (j *GrantsIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload GrantsIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	findings, err := j.service.ScanDangling(ctx)
	if err != nil {
		j.logger.Error("grants integrity scan", slog.Any("error", err))
		return err
	}

	for _, f := range findings {
		j.logger.Warn("dangling grant",
			slog.Int64("user_id", f.UserID),
			slog.String("kind", f.Kind),
			slog.String("id", f.ID),
		)
	}
	j.logger.Info("grants integrity scan completed",
		slog.Int("findings", len(findings)),
		slog.Int64("requested_by", payload.RequestedBy),
	)
	return nil
}
