package accounting

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MagnumMax/skyluxse-sub003/internal/bookings"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/outbox"
)

type fakeOrderCreator struct {
	got CreateOrderRequest
	err error
}

func (f *fakeOrderCreator) CreateOrder(_ context.Context, req CreateOrderRequest) (*Order, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &Order{ID: "SO-1"}, nil
}

func newTestDeliverer(t *testing.T, creator OrderCreator) *Deliverer {
	t.Helper()
	deliverer, err := NewDeliverer(creator, config.AccountingConfig{VATRate: "0.05"}, testLogger())
	if err != nil {
		t.Fatalf("NewDeliverer: %v", err)
	}
	return deliverer
}

func salesOrderEntry(t *testing.T, event bookings.SalesOrderEvent) models.OutboxEntry {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshaling event: %v", err)
	}
	payload, err := json.Marshal(outbox.Envelope{
		Version:    outbox.EnvelopeVersion,
		EventID:    uuid.NewString(),
		EventType:  string(enums.EventSalesOrderRequested),
		EntityType: "booking",
		EntityID:   event.BookingID,
		OccurredAt: time.Now(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshaling envelope: %v", err)
	}
	return models.OutboxEntry{
		ID:           uuid.New(),
		EntityType:   "booking",
		EntityID:     event.BookingID,
		TargetSystem: enums.TargetAccounting,
		EventType:    enums.EventSalesOrderRequested,
		Payload:      payload,
	}
}

func lineByName(items []LineItem, name string) (LineItem, bool) {
	for _, item := range items {
		if item.Name == name {
			return item, true
		}
	}
	return LineItem{}, false
}

func TestDeliverComposesSalesOrder(t *testing.T) {
	creator := &fakeOrderCreator{}
	deliverer := newTestDeliverer(t, creator)

	entry := salesOrderEntry(t, bookings.SalesOrderEvent{
		DealID:          "D-1",
		BookingID:       "BK-1",
		CustomerID:      "CUST-1",
		VehicleRef:      "VH-1",
		Salesperson:     "amira.k",
		RentalAmount:    "1000",
		DeliveryOption:  "Delivery Fee- 250 aed",
		InsuranceOption: "Basic Insurance - 250 aed",
		DepositOption:   "Security Deposit -2000 aed",
	})
	if err := deliverer.Deliver(context.Background(), entry); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	req := creator.got
	if req.CustomerID != "CUST-1" {
		t.Errorf("customer id = %q, want CUST-1", req.CustomerID)
	}
	if req.CustomFields["owner"] != "Amira Khalil" {
		t.Errorf("owner = %q, want Amira Khalil", req.CustomFields["owner"])
	}
	if req.CustomFields["dealId"] != "D-1" {
		t.Errorf("dealId = %q, want D-1", req.CustomFields["dealId"])
	}

	if len(req.LineItems) != 5 {
		t.Fatalf("line items = %d, want 5: %+v", len(req.LineItems), req.LineItems)
	}
	deposit, ok := lineByName(req.LineItems, "Security deposit")
	if !ok {
		t.Fatal("deposit line missing")
	}
	if deposit.Taxable {
		t.Error("refundable deposit must not be taxable")
	}
	if !deposit.Amount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("deposit amount = %s, want 2000", deposit.Amount)
	}

	// VAT covers rental 1000 + delivery 250 + insurance 250 at 5%.
	vat, ok := lineByName(req.LineItems, "VAT")
	if !ok {
		t.Fatal("VAT line missing")
	}
	if !vat.Amount.Equal(decimal.NewFromInt(75)) {
		t.Errorf("VAT = %s, want 75", vat.Amount)
	}
}

func TestDeliverSkipsUnselectedFees(t *testing.T) {
	creator := &fakeOrderCreator{}
	deliverer := newTestDeliverer(t, creator)

	entry := salesOrderEntry(t, bookings.SalesOrderEvent{
		DealID:       "D-2",
		BookingID:    "BK-2",
		CustomerID:   "CUST-2",
		RentalAmount: "500",
	})
	if err := deliverer.Deliver(context.Background(), entry); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if len(creator.got.LineItems) != 2 {
		t.Fatalf("line items = %d, want rental and VAT only: %+v", len(creator.got.LineItems), creator.got.LineItems)
	}
	vat, _ := lineByName(creator.got.LineItems, "VAT")
	if !vat.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("VAT = %s, want 25", vat.Amount)
	}
}

func TestDeliverUnknownLabelPricesZero(t *testing.T) {
	creator := &fakeOrderCreator{}
	deliverer := newTestDeliverer(t, creator)

	entry := salesOrderEntry(t, bookings.SalesOrderEvent{
		DealID:         "D-3",
		BookingID:      "BK-3",
		CustomerID:     "CUST-3",
		DeliveryOption: "Delivery Fee - 9999 aed",
	})
	if err := deliverer.Deliver(context.Background(), entry); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	delivery, ok := lineByName(creator.got.LineItems, "Delivery")
	if !ok {
		t.Fatal("delivery line missing despite selection")
	}
	if !delivery.Amount.IsZero() || !delivery.Taxable {
		t.Errorf("unknown label must price zero taxable, got %+v", delivery)
	}
}

func TestDeliverRejectsForeignEventType(t *testing.T) {
	deliverer := newTestDeliverer(t, &fakeOrderCreator{})

	err := deliverer.Deliver(context.Background(), models.OutboxEntry{
		EventType: enums.EventBookingStatusChanged,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want code %s", err, pkgerrors.CodeValidation)
	}
	if pkgerrors.IsRetryable(err) {
		t.Error("foreign event types must not be retried")
	}
}
