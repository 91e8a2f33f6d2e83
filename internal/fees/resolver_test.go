package fees

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestResolveDepositRefundableIsNotTaxable(t *testing.T) {
	fee := ResolveDeposit("Security Deposit -2000 aed")

	if !fee.Amount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected 2000, got %s", fee.Amount)
	}
	if fee.Taxable {
		t.Fatal("refundable deposits must not be taxable")
	}
	if !fee.Selected {
		t.Fatal("expected selection to register")
	}
}

func TestResolveDeliveryFeeIsAlwaysTaxable(t *testing.T) {
	fee := ResolveDeliveryFee("Delivery Fee- 150 aed")

	if !fee.Amount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected 150, got %s", fee.Amount)
	}
	if !fee.Taxable {
		t.Fatal("delivery fees are always taxable")
	}

	free := ResolveDeliveryFee("Free Pickup")
	if !free.Amount.IsZero() || !free.Taxable {
		t.Fatalf("free pickup should be zero and taxable, got %+v", free)
	}
}

func TestResolveInsuranceIsTaxable(t *testing.T) {
	fee := ResolveInsurance("Full Insurance - 500 aed")
	if !fee.Amount.Equal(decimal.NewFromInt(500)) || !fee.Taxable {
		t.Fatalf("expected taxable 500, got %+v", fee)
	}
}

func TestResolveFeeUnknownLabelDefaultsTaxableZero(t *testing.T) {
	fee := ResolveDeposit("Deposit -9000 aed")

	if !fee.Amount.IsZero() {
		t.Fatalf("unknown labels must price at zero, got %s", fee.Amount)
	}
	if !fee.Taxable {
		t.Fatal("unknown-but-present selections default to taxable")
	}
	if !fee.Selected {
		t.Fatal("unknown labels still count as a selection")
	}
}

func TestResolveFeeNoSelection(t *testing.T) {
	fee := ResolveDeposit("   ")
	if fee.Selected {
		t.Fatal("blank label is not a selection")
	}
	if !fee.Amount.IsZero() || !fee.Taxable {
		t.Fatalf("no selection should be zero/taxable, got %+v", fee)
	}
}

func TestResolveFeeMissingAmountEntry(t *testing.T) {
	labels := LabelTable{"Broken Option": "NOPE"}
	fee := ResolveFee("Broken Option", labels, AmountTable{}, nil)
	if !fee.Amount.IsZero() || !fee.Taxable || !fee.Selected {
		t.Fatalf("dangling id should resolve to zero/taxable, got %+v", fee)
	}
}

func TestTaxableSubtotalExcludesRefundableHolds(t *testing.T) {
	delivery := ResolveDeliveryFee("Delivery Fee- 150 aed")
	insurance := ResolveInsurance("Basic Insurance - 250 aed")
	deposit := ResolveDeposit("Security Deposit -5000 aed")

	subtotal := TaxableSubtotal(delivery, insurance, deposit)
	if !subtotal.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected 400 (deposit excluded), got %s", subtotal)
	}

	vat := VAT(subtotal, decimal.RequireFromString("0.05"))
	if !vat.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected 20 AED VAT, got %s", vat)
	}
}
