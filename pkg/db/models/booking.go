package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

// Booking is owned by the operational data store. The synchronization
// subsystem reads it freely but writes only LifecycleStatus.
type Booking struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	CRMDealID       string                `gorm:"column:crm_deal_id;uniqueIndex:ux_bookings_crm_deal_id;not null"`
	LifecycleStatus enums.LifecycleStatus `gorm:"column:lifecycle_status;type:booking_lifecycle_status;not null;default:new"`
	CustomerID      string                `gorm:"column:customer_id"`
	VehicleRef      string                `gorm:"column:vehicle_ref"`
	Salesperson     string                `gorm:"column:salesperson"`
	RentalAmount    string                `gorm:"column:rental_amount"`
	DeliveryOption  string                `gorm:"column:delivery_option"`
	InsuranceOption string                `gorm:"column:insurance_option"`
	DepositOption   string                `gorm:"column:deposit_option"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
