package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/MagnumMax/skyluxse-sub003/pkg/db"
	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

// Repository persists the durable event log.
type Repository interface {
	// InsertIfNew writes the event unless its external id was seen before.
	// A replay reports created=false and leaves the stored row untouched.
	InsertIfNew(ctx context.Context, event *models.IngestedEvent) (created bool, err error)
	FindByExternalID(ctx context.Context, externalID string) (*models.IngestedEvent, error)
	// UpdateClassification records the outcome of the post-log steps.
	UpdateClassification(ctx context.Context, id uuid.UUID, status enums.IngestStatus, stageID, vehicleRef string, lastError *string) error
	// DeleteProcessedBefore prunes fully handled events older than the cutoff.
	// Deferred and failed rows stay until they have been dealt with.
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertIfNew(ctx context.Context, event *models.IngestedEvent) (bool, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(event).Error
	if err == nil {
		return true, nil
	}
	if dbpkg.IsUniqueViolation(err, "") {
		return false, nil
	}
	return false, err
}

func (r *repositoryImpl) FindByExternalID(ctx context.Context, externalID string) (*models.IngestedEvent, error) {
	var event models.IngestedEvent
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repositoryImpl) UpdateClassification(ctx context.Context, id uuid.UUID, status enums.IngestStatus, stageID, vehicleRef string, lastError *string) error {
	updates := map[string]any{
		"processing_status": status,
		"last_error":        lastError,
	}
	if stageID != "" {
		updates["stage_id"] = stageID
	}
	if vehicleRef != "" {
		updates["vehicle_ref"] = vehicleRef
	}
	return r.db.WithContext(ctx).
		Model(&models.IngestedEvent{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("processing_status = ? AND received_at < ?", enums.IngestStatusProcessed, cutoff).
		Delete(&models.IngestedEvent{})
	return result.RowsAffected, result.Error
}
