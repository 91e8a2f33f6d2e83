package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

// IngestedEvent is the durable record of one upstream CRM webhook delivery.
// It is written before any side effect is attempted; redelivery of the same
// external id is a no-op.
type IngestedEvent struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ExternalID        string             `gorm:"column:external_id;uniqueIndex:ux_ingested_events_external_id;not null"`
	RawPayload        json.RawMessage    `gorm:"column:raw_payload;type:jsonb;not null"`
	SignatureVerified bool               `gorm:"column:signature_verified;not null"`
	ProcessingStatus  enums.IngestStatus `gorm:"column:processing_status;type:ingest_status_enum;not null;default:received"`
	StageID           string             `gorm:"column:stage_id"`
	VehicleRef        string             `gorm:"column:vehicle_ref"`
	LastError         *string            `gorm:"column:last_error"`
	ReceivedAt        time.Time          `gorm:"column:received_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
