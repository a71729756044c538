package fees

import "plate-backend/internal/domain"

// Assumptions are the dashboard's tunable inputs for revenue projection.
// Zero-valued fields fall back to DefaultAssumptions values; these are
// secondary tunables, unlike order amounts, which are never coerced.
type Assumptions struct {
	MakerSubscriptionPrice float64 // monthly premium price for makers
	TakerSubscriptionPrice float64 // monthly premium price for takers
	PremiumAdoptionRate    float64 // fraction of users on premium
	AverageOrderValue      float64
	OrdersPerTakerPerMonth float64
	BuyerFeeRate           float64
	SellerFeeRate          float64
	WeeksPerMonth          float64 // time-unit conversion factor
}

func DefaultAssumptions() Assumptions {
	return Assumptions{
		MakerSubscriptionPrice: 9.99,
		TakerSubscriptionPrice: 4.99,
		PremiumAdoptionRate:    0.15,
		AverageOrderValue:      18.50,
		OrdersPerTakerPerMonth: 4,
		BuyerFeeRate:           BuyerFeeRate,
		SellerFeeRate:          SellerFeeRate,
		WeeksPerMonth:          4.345,
	}
}

func (a Assumptions) withDefaults() Assumptions {
	d := DefaultAssumptions()
	if a.MakerSubscriptionPrice <= 0 {
		a.MakerSubscriptionPrice = d.MakerSubscriptionPrice
	}
	if a.TakerSubscriptionPrice <= 0 {
		a.TakerSubscriptionPrice = d.TakerSubscriptionPrice
	}
	if a.PremiumAdoptionRate <= 0 {
		a.PremiumAdoptionRate = d.PremiumAdoptionRate
	}
	if a.AverageOrderValue <= 0 {
		a.AverageOrderValue = d.AverageOrderValue
	}
	if a.OrdersPerTakerPerMonth <= 0 {
		a.OrdersPerTakerPerMonth = d.OrdersPerTakerPerMonth
	}
	if a.BuyerFeeRate <= 0 {
		a.BuyerFeeRate = d.BuyerFeeRate
	}
	if a.SellerFeeRate <= 0 {
		a.SellerFeeRate = d.SellerFeeRate
	}
	if a.WeeksPerMonth <= 0 {
		a.WeeksPerMonth = d.WeeksPerMonth
	}
	return a
}

// Projection converts a monthly revenue baseline into the dashboard's time
// frames via fixed divisors. Approximation for display, not billing-accurate:
// no partial months, no leap years.
type Projection struct {
	Daily     float64 `json:"daily"`
	Weekly    float64 `json:"weekly"`
	Monthly   float64 `json:"monthly"`
	Quarterly float64 `json:"quarterly"`
	Annual    float64 `json:"annual"`
}

// MetroForecast is the per-metro revenue projection with its monthly inputs.
type MetroForecast struct {
	MetroArea           string     `json:"metroArea"`
	SubscriptionMonthly float64    `json:"subscriptionMonthly"`
	OrderFeeMonthly     float64    `json:"orderFeeMonthly"`
	Projection          Projection `json:"projection"`
}

// ForecastRevenueForMetro projects platform revenue for one metro area from
// its maker/taker counts.
func ForecastRevenueForMetro(m domain.MetroAreaCounts, a Assumptions) MetroForecast {
	a = a.withDefaults()
	subs := float64(m.MakerCount)*a.PremiumAdoptionRate*a.MakerSubscriptionPrice +
		float64(m.TakerCount)*a.PremiumAdoptionRate*a.TakerSubscriptionPrice
	orderFees := float64(m.TakerCount) * a.OrdersPerTakerPerMonth * a.AverageOrderValue *
		(a.BuyerFeeRate + a.SellerFeeRate)
	monthly := subs + orderFees
	return MetroForecast{
		MetroArea:           m.MetroArea,
		SubscriptionMonthly: round2(subs),
		OrderFeeMonthly:     round2(orderFees),
		Projection:          project(monthly, a),
	}
}

// ForecastRevenueTotals aggregates metro projections into one platform-wide
// projection.
func ForecastRevenueTotals(metros []domain.MetroAreaCounts, a Assumptions) Projection {
	a = a.withDefaults()
	var monthly float64
	for _, m := range metros {
		f := ForecastRevenueForMetro(m, a)
		monthly += f.SubscriptionMonthly + f.OrderFeeMonthly
	}
	return project(monthly, a)
}

func project(monthly float64, a Assumptions) Projection {
	return Projection{
		Daily:     round2(monthly / 30),
		Weekly:    round2(monthly / a.WeeksPerMonth),
		Monthly:   round2(monthly),
		Quarterly: round2(monthly * 3),
		Annual:    round2(monthly * 12),
	}
}
