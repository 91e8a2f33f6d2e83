package accounting

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MagnumMax/skyluxse-sub003/internal/bookings"
	"github.com/MagnumMax/skyluxse-sub003/internal/fees"
	"github.com/MagnumMax/skyluxse-sub003/internal/salespeople"
	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
	"github.com/MagnumMax/skyluxse-sub003/pkg/db/models"
	"github.com/MagnumMax/skyluxse-sub003/pkg/enums"
	pkgerrors "github.com/MagnumMax/skyluxse-sub003/pkg/errors"
	"github.com/MagnumMax/skyluxse-sub003/pkg/logger"
	"github.com/MagnumMax/skyluxse-sub003/pkg/outbox"
)

// OrderCreator is the slice of the accounting client the deliverer needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
}

// Deliverer turns queued sales-order events into accounting orders. It is the
// outbox consumer for the accounting target system.
type Deliverer struct {
	client  OrderCreator
	sales   *salespeople.Resolver
	vatRate decimal.Decimal
	logg    *logger.Logger
}

func NewDeliverer(client OrderCreator, cfg config.AccountingConfig, logg *logger.Logger) (*Deliverer, error) {
	if client == nil {
		return nil, fmt.Errorf("accounting deliverer requires a client")
	}
	if logg == nil {
		return nil, errLoggerRequired
	}
	rate, err := decimal.NewFromString(cfg.VATRate)
	if err != nil {
		return nil, fmt.Errorf("parsing VAT rate %q: %w", cfg.VATRate, err)
	}
	sales, err := salespeople.NewDefaultResolver()
	if err != nil {
		return nil, err
	}
	return &Deliverer{client: client, sales: sales, vatRate: rate, logg: logg}, nil
}

func (d *Deliverer) Deliver(ctx context.Context, entry models.OutboxEntry) error {
	if entry.EventType != enums.EventSalesOrderRequested {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("accounting cannot handle event type %q", entry.EventType))
	}

	envelope, err := outbox.DecodeEnvelope(entry.Payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding outbox envelope")
	}
	var event bookings.SalesOrderEvent
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding sales order event")
	}

	req := CreateOrderRequest{
		CustomerID: event.CustomerID,
		LineItems:  d.composeLineItems(event),
		CustomFields: map[string]string{
			"dealId":    event.DealID,
			"bookingId": event.BookingID,
			"owner":     d.sales.Resolve(event.Salesperson),
		},
	}
	if event.VehicleRef != "" {
		req.CustomFields["vehicleRef"] = event.VehicleRef
	}

	order, err := d.client.CreateOrder(ctx, req)
	if err != nil {
		return err
	}
	d.logg.Info(d.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"deal_id":  event.DealID,
	}), "sales order created")
	return nil
}

// composeLineItems prices the rental and its fee selections. Unselected
// categories produce no line; the VAT line covers every taxable amount.
func (d *Deliverer) composeLineItems(event bookings.SalesOrderEvent) []LineItem {
	items := make([]LineItem, 0, 5)
	taxable := decimal.Zero

	if event.RentalAmount != "" {
		if amount, err := decimal.NewFromString(event.RentalAmount); err == nil && amount.IsPositive() {
			items = append(items, LineItem{Name: "Rental", Code: "RENT", Amount: amount, Taxable: true})
			taxable = taxable.Add(amount)
		}
	}

	categories := []struct {
		name string
		fee  fees.ResolvedFee
	}{
		{"Delivery", fees.ResolveDeliveryFee(event.DeliveryOption)},
		{"Insurance", fees.ResolveInsurance(event.InsuranceOption)},
		{"Security deposit", fees.ResolveDeposit(event.DepositOption)},
	}
	for _, category := range categories {
		if !category.fee.Selected {
			continue
		}
		items = append(items, LineItem{
			Name:    category.name,
			Amount:  category.fee.Amount,
			Taxable: category.fee.Taxable,
		})
		if category.fee.Taxable {
			taxable = taxable.Add(category.fee.Amount)
		}
	}

	if vat := fees.VAT(taxable, d.vatRate); vat.IsPositive() {
		items = append(items, LineItem{Name: "VAT", Code: "VAT", Amount: vat})
	}
	return items
}
