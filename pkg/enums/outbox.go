package enums

import "fmt"

// OutboxStatus maps to the outbox_status enum in Postgres. Entries move along
// pending -> processing -> succeeded | pending (retry) | exhausted.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusSucceeded  OutboxStatus = "succeeded"
	OutboxStatusFailed     OutboxStatus = "failed"
	OutboxStatusExhausted  OutboxStatus = "exhausted"
)

var validOutboxStatuses = []OutboxStatus{
	OutboxStatusPending,
	OutboxStatusProcessing,
	OutboxStatusSucceeded,
	OutboxStatusFailed,
	OutboxStatusExhausted,
}

// IsValid reports whether the value matches the canonical outbox_status enum.
func (s OutboxStatus) IsValid() bool {
	for _, candidate := range validOutboxStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TargetSystem identifies the external capability an outbox entry delivers to.
type TargetSystem string

const (
	TargetAccounting   TargetSystem = "accounting"
	TargetNotification TargetSystem = "notification"
)

var validTargetSystems = []TargetSystem{
	TargetAccounting,
	TargetNotification,
}

// IsValid reports whether the value matches the canonical target_system enum.
func (t TargetSystem) IsValid() bool {
	for _, candidate := range validTargetSystems {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTargetSystem converts raw input into TargetSystem.
func ParseTargetSystem(value string) (TargetSystem, error) {
	for _, candidate := range validTargetSystems {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid target system %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBookingStatusChanged  OutboxEventType = "booking_status_changed"
	EventBookingConfirmed      OutboxEventType = "booking_confirmed"
	EventBookingSettled        OutboxEventType = "booking_settled"
	EventTaskCreated           OutboxEventType = "task_created"
	EventServiceAdded          OutboxEventType = "additional_service_added"
	EventSalesOrderRequested   OutboxEventType = "sales_order_requested"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBookingStatusChanged,
	EventBookingConfirmed,
	EventBookingSettled,
	EventTaskCreated,
	EventServiceAdded,
	EventSalesOrderRequested,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
