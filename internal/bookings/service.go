package bookings

import (
	"context"
	stdErrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/MagnumMax/skyluxse-sub003/internal/stages"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
	"github.com/MagnumMax/skyluxse-sub003/pkg/outbox"
)

// StatusChangedEvent is the payload queued for the notification capability
// whenever a booking moves lifecycle state.
type StatusChangedEvent struct {
	DealID      string                `json:"dealId"`
	BookingID   string                `json:"bookingId"`
	Previous    enums.LifecycleStatus `json:"previous"`
	Current     enums.LifecycleStatus `json:"current"`
	StageLabel  string                `json:"stageLabel"`
	VehicleRef  string                `json:"vehicleRef,omitempty"`
	NeedsReview bool                  `json:"needsReview,omitempty"`
}

// SalesOrderEvent is the payload queued for accounting when a booking enters
// settlement. Fee selections travel as the raw CRM labels; the accounting
// deliverer prices them at delivery time.
type SalesOrderEvent struct {
	DealID          string `json:"dealId"`
	BookingID       string `json:"bookingId"`
	CustomerID      string `json:"customerId"`
	VehicleRef      string `json:"vehicleRef,omitempty"`
	Salesperson     string `json:"salesperson,omitempty"`
	RentalAmount    string `json:"rentalAmount,omitempty"`
	DeliveryOption  string `json:"deliveryOption,omitempty"`
	InsuranceOption string `json:"insuranceOption,omitempty"`
	DepositOption   string `json:"depositOption,omitempty"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	DB     txRunner
	Repo   Repository
	Outbox *outbox.Service
	Logger *logger.Logger
}

// Service applies translated CRM stages to bookings. The lifecycle update and
// every delivery obligation it produces commit in one transaction.
type Service struct {
	db     txRunner
	repo   Repository
	outbox *outbox.Service
	logg   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("bookings service requires a database client")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("bookings service requires a repository")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("bookings service requires the outbox writer")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("bookings service requires a logger")
	}
	return &Service{
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		logg:   params.Logger,
	}, nil
}

// ApplyStage moves the booking behind dealID to the lifecycle state the stage
// mapping names. Re-applying the current state is a no-op and queues nothing.
func (s *Service) ApplyStage(ctx context.Context, dealID string, mapping stages.Mapping, vehicleRef string) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.repo.FindByCRMDealID(ctx, tx, dealID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no booking for deal %s", dealID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading booking")
		}

		ctx := s.logg.WithBookingID(ctx, booking.ID.String())
		if booking.LifecycleStatus == mapping.Lifecycle {
			s.logg.Info(ctx, "booking already in target lifecycle state")
			return nil
		}

		previous := booking.LifecycleStatus
		if err := s.repo.UpdateLifecycle(ctx, tx, booking.ID, mapping.Lifecycle, vehicleRef); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating booking lifecycle")
		}

		statusEvent := StatusChangedEvent{
			DealID:      dealID,
			BookingID:   booking.ID.String(),
			Previous:    previous,
			Current:     mapping.Lifecycle,
			StageLabel:  mapping.Label,
			VehicleRef:  vehicleRef,
			NeedsReview: mapping.NeedsReview,
		}
		if err := s.outbox.Emit(ctx, tx, outbox.Entry{
			EntityType:   "booking",
			EntityID:     booking.ID.String(),
			TargetSystem: enums.TargetNotification,
			EventType:    enums.EventBookingStatusChanged,
			Data:         statusEvent,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing status notification")
		}

		if mapping.Lifecycle == enums.LifecycleSettlement {
			orderEvent := SalesOrderEvent{
				DealID:          dealID,
				BookingID:       booking.ID.String(),
				CustomerID:      booking.CustomerID,
				VehicleRef:      booking.VehicleRef,
				Salesperson:     booking.Salesperson,
				RentalAmount:    booking.RentalAmount,
				DeliveryOption:  booking.DeliveryOption,
				InsuranceOption: booking.InsuranceOption,
				DepositOption:   booking.DepositOption,
			}
			if vehicleRef != "" {
				orderEvent.VehicleRef = vehicleRef
			}
			if err := s.outbox.Emit(ctx, tx, outbox.Entry{
				EntityType:   "booking",
				EntityID:     booking.ID.String(),
				TargetSystem: enums.TargetAccounting,
				EventType:    enums.EventSalesOrderRequested,
				Data:         orderEvent,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing sales order request")
			}
		}

		s.logg.Info(s.logg.WithField(ctx, "lifecycle", mapping.Lifecycle), "booking lifecycle updated")
		return nil
	})
}
