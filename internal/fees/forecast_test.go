package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-backend/internal/domain"
)

func TestForecastRevenueForMetro(t *testing.T) {
	m := domain.MetroAreaCounts{MetroArea: "austin", MakerCount: 40, TakerCount: 400}
	a := Assumptions{
		MakerSubscriptionPrice: 10,
		TakerSubscriptionPrice: 5,
		PremiumAdoptionRate:    0.10,
		AverageOrderValue:      20,
		OrdersPerTakerPerMonth: 2,
		BuyerFeeRate:           0.10,
		SellerFeeRate:          0.10,
		WeeksPerMonth:          4.345,
	}
	f := ForecastRevenueForMetro(m, a)
	// subs: 40*0.1*10 + 400*0.1*5 = 240; fees: 400*2*20*0.2 = 3200
	require.Equal(t, 240.0, f.SubscriptionMonthly)
	require.Equal(t, 3200.0, f.OrderFeeMonthly)
	assert.Equal(t, 3440.0, f.Projection.Monthly)
	assert.InDelta(t, 3440.0/30, f.Projection.Daily, 0.01)
	assert.InDelta(t, 3440.0/4.345, f.Projection.Weekly, 0.01)
	assert.Equal(t, 3440.0*3, f.Projection.Quarterly)
	assert.Equal(t, 3440.0*12, f.Projection.Annual)
}

func TestForecastZeroAssumptionsFallBack(t *testing.T) {
	m := domain.MetroAreaCounts{MetroArea: "denver", MakerCount: 10, TakerCount: 100}
	f := ForecastRevenueForMetro(m, Assumptions{})
	d := ForecastRevenueForMetro(m, DefaultAssumptions())
	assert.Equal(t, d, f)
}

func TestForecastRevenueTotals(t *testing.T) {
	metros := []domain.MetroAreaCounts{
		{MetroArea: "austin", MakerCount: 40, TakerCount: 400},
		{MetroArea: "denver", MakerCount: 10, TakerCount: 100},
	}
	total := ForecastRevenueTotals(metros, DefaultAssumptions())
	a := ForecastRevenueForMetro(metros[0], DefaultAssumptions())
	b := ForecastRevenueForMetro(metros[1], DefaultAssumptions())
	assert.InDelta(t, a.Projection.Monthly+b.Projection.Monthly, total.Monthly, 0.011)
}
