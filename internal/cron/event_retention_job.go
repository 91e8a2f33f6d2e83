package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

const eventRetentionDays = 90

type eventRetentionRepo interface {
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type EventRetentionJobParams struct {
	Logger     *logger.Logger
	Repository eventRetentionRepo
	Retention  int
}

// NewEventRetentionJob prunes fully processed webhook events past their
// retention window. Deferred and failed events stay because they may still
// be replayed or investigated.
func NewEventRetentionJob(params EventRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("event repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = eventRetentionDays
	}
	return &eventRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type eventRetentionJob struct {
	logg      *logger.Logger
	repo      eventRetentionRepo
	retention int
	now       func() time.Time
}

func (j *eventRetentionJob) Name() string { return "event-retention" }

func (j *eventRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("event retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "event retention cleanup complete")
	return nil
}
