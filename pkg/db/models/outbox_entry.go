package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

// OutboxEntry is one pending delivery obligation to exactly one external
// target. Rows are never deleted by normal operation; terminal entries stay
// behind for audit.
type OutboxEntry struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	EntityType   string                `gorm:"column:entity_type;not null"`
	EntityID     string                `gorm:"column:entity_id;not null;index:ix_outbox_entries_entity"`
	TargetSystem enums.TargetSystem    `gorm:"column:target_system;type:target_system_enum;not null"`
	EventType    enums.OutboxEventType `gorm:"column:event_type;type:event_type_enum;not null"`
	Payload      json.RawMessage       `gorm:"column:payload;type:jsonb;not null"`
	Status       enums.OutboxStatus    `gorm:"column:status;type:outbox_status_enum;not null;default:pending;index:ix_outbox_entries_due,priority:1"`
	Attempts     int                   `gorm:"column:attempts;not null;default:0"`
	NextRunAt    time.Time             `gorm:"column:next_run_at;not null;index:ix_outbox_entries_due,priority:2"`
	LastError    *string               `gorm:"column:last_error"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
