package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
)

// Service is the writer half of the outbox. Domain services call Emit inside
// their own transaction; the dispatcher picks entries up after commit.
type Service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, now: time.Now}
}

func (s *Service) Emit(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !entry.TargetSystem.IsValid() {
		return fmt.Errorf("invalid target system %q", entry.TargetSystem)
	}
	if !entry.EventType.IsValid() {
		return fmt.Errorf("invalid event type %q", entry.EventType)
	}

	data, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("marshaling event data: %w", err)
	}
	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}
	envelope := Envelope{
		Version:    EnvelopeVersion,
		EventID:    uuid.NewString(),
		EventType:  string(entry.EventType),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OccurredAt: occurredAt,
		Data:       data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	row := models.OutboxEntry{
		EntityType:   entry.EntityType,
		EntityID:     entry.EntityID,
		TargetSystem: entry.TargetSystem,
		EventType:    entry.EventType,
		Payload:      payload,
		NextRunAt:    s.now(),
	}
	if err := s.repo.Insert(tx, &row); err != nil {
		return err
	}

	if s.logg != nil {
		fields := map[string]any{
			"event_id":      envelope.EventID,
			"event_type":    entry.EventType,
			"entity_id":     entry.EntityID,
			"entity_type":   entry.EntityType,
			"target_system": entry.TargetSystem,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox entry queued")
	}
	return nil
}
