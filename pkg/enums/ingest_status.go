package enums

import "fmt"

// IngestStatus maps to the ingest_status enum in Postgres. Transitions are
// forward-only: received -> ignored_pending_status | processed | failed.
type IngestStatus string

const (
	IngestStatusReceived       IngestStatus = "received"
	IngestStatusIgnoredPending IngestStatus = "ignored_pending_status"
	IngestStatusProcessed      IngestStatus = "processed"
	IngestStatusFailed         IngestStatus = "failed"
)

var validIngestStatuses = []IngestStatus{
	IngestStatusReceived,
	IngestStatusIgnoredPending,
	IngestStatusProcessed,
	IngestStatusFailed,
}

// IsValid reports whether the value matches the canonical ingest_status enum.
func (s IngestStatus) IsValid() bool {
	for _, candidate := range validIngestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseIngestStatus converts raw input into IngestStatus.
func ParseIngestStatus(value string) (IngestStatus, error) {
	for _, candidate := range validIngestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ingest status %q", value)
}
