// Package fees is the single authoritative place fee percentages and rounding
// rules live. The client-facing estimate, the charge construction, and the
// webhook ledger write all call through here so the three agree to the cent.
package fees

import (
	"fmt"
	"math"
)

const (
	// Double-10 model: buyer pays +10% on the base amount, seller gives up 10%.
	BuyerFeeRate  = 0.10
	SellerFeeRate = 0.10

	// Card processor pricing applied on top of the marked-up amount.
	ProcessorRate      = 0.029
	ProcessorFlatCents = 30

	MaxQuantity = 999
)

type InvalidArgumentError struct {
	Field string
	Msg   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("fees: invalid %s: %s", e.Field, e.Msg)
}

// Breakdown is the buyer-facing estimate for one order. All fields are rounded
// to two decimal places and Total == Subtotal + PlatformFee exactly.
type Breakdown struct {
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platformFee"`
	Total       float64 `json:"total"`
}

// Split is the pre-rounding three-way division of a base amount. Callers round
// display values to cents; buyer-side and seller-side fees are rounded
// independently at those call sites, which is why the platform share is not
// computed as a flat 20%.
type Split struct {
	TotalCaptured float64 `json:"totalCaptured"`
	SellerPayout  float64 `json:"sellerPayout"`
	AppRevenue    float64 `json:"appRevenue"`
}

// OrderBreakdown computes the fee-inclusive charge estimate for quantity units
// at unitPrice. unitPrice must be finite and non-negative; quantity must be in
// [1, MaxQuantity].
func OrderBreakdown(unitPrice float64, quantity int) (Breakdown, error) {
	if math.IsNaN(unitPrice) || math.IsInf(unitPrice, 0) || unitPrice < 0 {
		return Breakdown{}, &InvalidArgumentError{Field: "unitPrice", Msg: "must be finite and >= 0"}
	}
	if quantity < 1 || quantity > MaxQuantity {
		return Breakdown{}, &InvalidArgumentError{Field: "quantity", Msg: fmt.Sprintf("must be in [1, %d]", MaxQuantity)}
	}
	subtotal := round2(unitPrice * float64(quantity))
	fee := round2(subtotal * BuyerFeeRate)
	return Breakdown{
		Subtotal:    subtotal,
		PlatformFee: fee,
		Total:       round2(subtotal + fee),
	}, nil
}

// OrderSplit divides a base amount under the double-10 model. AppRevenue is
// derived as captured minus payout so the split always reconciles exactly.
func OrderSplit(baseAmount float64) (Split, error) {
	if math.IsNaN(baseAmount) || math.IsInf(baseAmount, 0) || baseAmount < 0 {
		return Split{}, &InvalidArgumentError{Field: "baseAmount", Msg: "must be finite and >= 0"}
	}
	captured := baseAmount * (1 + BuyerFeeRate)
	payout := baseAmount * (1 - SellerFeeRate)
	return Split{
		TotalCaptured: captured,
		SellerPayout:  payout,
		AppRevenue:    captured - payout,
	}, nil
}

// TotalWithFeesCents builds the amount for a direct provider charge from a
// listed price: +10% marketplace markup, then the processor fee computed on
// the marked-up amount. Each stage rounds to the nearest integer cent.
func TotalWithFeesCents(basePrice float64) (int64, error) {
	if math.IsNaN(basePrice) || math.IsInf(basePrice, 0) || basePrice < 0 {
		return 0, &InvalidArgumentError{Field: "basePrice", Msg: "must be finite and >= 0"}
	}
	marked := int64(math.Round(basePrice * (1 + BuyerFeeRate) * 100))
	processor := int64(math.Round(float64(marked)*ProcessorRate + ProcessorFlatCents))
	return marked + processor, nil
}

// round2 rounds half away from zero to two decimals. Not banker's rounding:
// fee disclosures use the rounding buyers expect on receipts.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
