package enums

import "fmt"

// LifecycleStatus maps to the booking_lifecycle_status enum in Postgres. It is
// the internal booking state derived from upstream CRM pipeline stages.
type LifecycleStatus string

const (
	LifecycleNew         LifecycleStatus = "new"
	LifecyclePreparation LifecycleStatus = "preparation"
	LifecycleDelivery    LifecycleStatus = "delivery"
	LifecycleInRent      LifecycleStatus = "in_rent"
	LifecycleSettlement  LifecycleStatus = "settlement"
)

var validLifecycleStatuses = []LifecycleStatus{
	LifecycleNew,
	LifecyclePreparation,
	LifecycleDelivery,
	LifecycleInRent,
	LifecycleSettlement,
}

// IsValid reports whether the value matches the canonical lifecycle enum.
func (s LifecycleStatus) IsValid() bool {
	for _, candidate := range validLifecycleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLifecycleStatus converts raw input into LifecycleStatus.
func ParseLifecycleStatus(value string) (LifecycleStatus, error) {
	for _, candidate := range validLifecycleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lifecycle status %q", value)
}
