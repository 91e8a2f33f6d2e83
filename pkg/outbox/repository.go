package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes the entry inside the caller's transaction so the delivery
// obligation commits atomically with the domain change that produced it.
func (r *Repository) Insert(tx *gorm.DB, entry *models.OutboxEntry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return tx.Create(entry).Error
}

// ClaimDue selects due pending entries oldest-first and claims each one with
// a conditional update. Two dispatchers racing on the same row disagree on
// RowsAffected, so a row is claimed at most once.
func (r *Repository) ClaimDue(ctx context.Context, limit int, now time.Time) ([]models.OutboxEntry, error) {
	var candidates []models.OutboxEntry
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OutboxStatusPending).
		Where("next_run_at <= ?", now).
		Order("next_run_at ASC").
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	claimed := make([]models.OutboxEntry, 0, len(candidates))
	for _, candidate := range candidates {
		result := r.db.WithContext(ctx).
			Model(&models.OutboxEntry{}).
			Where("id = ? AND status = ?", candidate.ID, candidate.Status).
			Updates(map[string]any{
				"status":     enums.OutboxStatusProcessing,
				"updated_at": now,
			})
		if result.Error != nil {
			return claimed, result.Error
		}
		if result.RowsAffected == 0 {
			continue
		}
		candidate.Status = enums.OutboxStatusProcessing
		claimed = append(claimed, candidate)
	}
	return claimed, nil
}

// MarkSucceeded finalizes a delivered entry. The attempt that delivered it is
// counted.
func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID, attempts int) error {
	return r.db.WithContext(ctx).
		Model(&models.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.OutboxStatusSucceeded,
			"attempts":   attempts,
			"last_error": nil,
		}).Error
}

// MarkRetry returns a failed entry to pending with a later nextRunAt so a
// future batch picks it up again.
func (r *Repository) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, nextRunAt time.Time, cause error) error {
	return r.db.WithContext(ctx).
		Model(&models.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.OutboxStatusPending,
			"attempts":    attempts,
			"next_run_at": nextRunAt,
			"last_error":  errorMessage(cause),
		}).Error
}

// MarkExhausted parks an entry that will never be retried. The row stays
// behind for audit and manual replay.
func (r *Repository) MarkExhausted(ctx context.Context, id uuid.UUID, attempts int, cause error) error {
	return r.db.WithContext(ctx).
		Model(&models.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     enums.OutboxStatusExhausted,
			"attempts":   attempts,
			"last_error": errorMessage(cause),
		}).Error
}

// PendingCount reports entries still awaiting delivery; surfaced on the
// operational dispatch endpoint.
func (r *Repository) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEntry{}).
		Where("status = ?", enums.OutboxStatusPending).
		Count(&count).Error
	return count, err
}

// RequeueStale returns processing rows abandoned by a crashed dispatcher to
// pending once their claim is older than the lease cutoff. The row is already
// due, so the next batch reconsiders it.
func (r *Repository) RequeueStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OutboxEntry{}).
		Where("status = ? AND updated_at < ?", enums.OutboxStatusProcessing, cutoff).
		Updates(map[string]any{
			"status":     enums.OutboxStatusPending,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// FindByEntity returns all entries emitted for one entity, newest first.
func (r *Repository) FindByEntity(ctx context.Context, entityType, entityID string) ([]models.OutboxEntry, error) {
	var rows []models.OutboxEntry
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// DeleteSucceededBefore prunes delivered entries older than the cutoff.
// Exhausted entries are kept until someone has looked at them.
func (r *Repository) DeleteSucceededBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.OutboxStatusSucceeded, cutoff).
		Delete(&models.OutboxEntry{})
	return result.RowsAffected, result.Error
}

func errorMessage(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return &msg
}
