package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
)

type Repository interface {
	FindByCRMDealID(ctx context.Context, tx *gorm.DB, dealID string) (*models.Booking, error)
	UpdateLifecycle(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.LifecycleStatus, vehicleRef string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindByCRMDealID(ctx context.Context, tx *gorm.DB, dealID string) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).Where("crm_deal_id = ?", dealID).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repositoryImpl) UpdateLifecycle(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.LifecycleStatus, vehicleRef string) error {
	updates := map[string]any{
		"lifecycle_status": status,
	}
	if vehicleRef != "" {
		updates["vehicle_ref"] = vehicleRef
	}
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}
