package outbox

import (
	"encoding/json"
	"time"

	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

// Entry describes one delivery obligation at the moment a domain transaction
// commits. The writer serializes it into a durable outbox row.
type Entry struct {
	EntityType   string
	EntityID     string
	TargetSystem enums.TargetSystem
	EventType    enums.OutboxEventType
	Data         any
	OccurredAt   time.Time
}

// Envelope is the stable payload structure stored in outbox_entries. Consumers
// key on Version before decoding Data.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// EnvelopeVersion is bumped when the envelope shape changes incompatibly.
const EnvelopeVersion = 1

// DecodeEnvelope unpacks a stored outbox payload.
func DecodeEnvelope(payload json.RawMessage) (Envelope, error) {
	var envelope Envelope
	err := json.Unmarshal(payload, &envelope)
	return envelope, err
}
