package fees

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ResolvedFee is the monetary outcome of one coded option selection.
// Taxable amounts enter the VAT subtotal; refundable holds never do.
type ResolvedFee struct {
	Amount   decimal.Decimal
	Taxable  bool
	Selected bool
}

// LabelTable maps the human-facing option labels the CRM stores to coded
// identifiers. Labels are matched after trimming, exactly as entered by the
// sales team, typos included.
type LabelTable map[string]string

// AmountTable maps coded identifiers to AED amounts.
type AmountTable map[string]decimal.Decimal

// IDSet marks coded identifiers with a shared property.
type IDSet map[string]struct{}

// Canonical tables for the three fee categories.
var (
	DeliveryFeeLabels = LabelTable{
		"Delivery Fee- 150 aed": "DLV150",
		"Delivery Fee- 250 aed": "DLV250",
		"Free Pickup":           "DLV0",
	}
	DeliveryFeeAmounts = AmountTable{
		"DLV150": decimal.NewFromInt(150),
		"DLV250": decimal.NewFromInt(250),
		"DLV0":   decimal.Zero,
	}

	InsuranceLabels = LabelTable{
		"Basic Insurance - 250 aed": "INS250",
		"Full Insurance - 500 aed":  "INS500",
	}
	InsuranceAmounts = AmountTable{
		"INS250": decimal.NewFromInt(250),
		"INS500": decimal.NewFromInt(500),
	}

	DepositLabels = LabelTable{
		"Security Deposit -2000 aed": "DEP2000",
		"Security Deposit -5000 aed": "DEP5000",
	}
	DepositAmounts = AmountTable{
		"DEP2000": decimal.NewFromInt(2000),
		"DEP5000": decimal.NewFromInt(5000),
	}

	// RefundableDepositIDs lists the deposit options returned to the customer
	// after the rental. These are holds, not revenue, so they are never taxed.
	RefundableDepositIDs = IDSet{
		"DEP2000": {},
		"DEP5000": {},
	}
)

// ResolveFee maps a selected label through the coded identifier tables.
// Unknown-but-present selections resolve to a zero, taxable amount; an empty
// selection additionally reports Selected=false so callers can distinguish
// "picked nothing" from "picked something we cannot price".
func ResolveFee(selectedLabel string, labelToID LabelTable, idToAmount AmountTable, refundableIDs IDSet) ResolvedFee {
	label := strings.TrimSpace(selectedLabel)
	if label == "" {
		return ResolvedFee{Amount: decimal.Zero, Taxable: true}
	}

	id, ok := labelToID[label]
	if !ok {
		return ResolvedFee{Amount: decimal.Zero, Taxable: true, Selected: true}
	}

	amount, ok := idToAmount[id]
	if !ok {
		return ResolvedFee{Amount: decimal.Zero, Taxable: true, Selected: true}
	}

	taxable := true
	if refundableIDs != nil {
		if _, refundable := refundableIDs[id]; refundable {
			taxable = false
		}
	}
	return ResolvedFee{Amount: amount, Taxable: taxable, Selected: true}
}

// ResolveDeliveryFee prices a delivery option. Delivery is always taxable.
func ResolveDeliveryFee(selectedLabel string) ResolvedFee {
	return ResolveFee(selectedLabel, DeliveryFeeLabels, DeliveryFeeAmounts, nil)
}

// ResolveInsurance prices an insurance option.
func ResolveInsurance(selectedLabel string) ResolvedFee {
	return ResolveFee(selectedLabel, InsuranceLabels, InsuranceAmounts, nil)
}

// ResolveDeposit prices a deposit option, marking refundable holds non-taxable.
func ResolveDeposit(selectedLabel string) ResolvedFee {
	return ResolveFee(selectedLabel, DepositLabels, DepositAmounts, RefundableDepositIDs)
}

// TaxableSubtotal sums the taxable amounts of the given fees.
func TaxableSubtotal(resolved ...ResolvedFee) decimal.Decimal {
	subtotal := decimal.Zero
	for _, fee := range resolved {
		if fee.Taxable {
			subtotal = subtotal.Add(fee.Amount)
		}
	}
	return subtotal
}

// VAT applies the given rate to a taxable subtotal, rounded to fils.
func VAT(subtotal decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(2)
}
