package fees

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBreakdown(t *testing.T) {
	b, err := OrderBreakdown(10.99, 3)
	require.NoError(t, err)
	assert.Equal(t, 32.97, b.Subtotal)
	assert.Equal(t, 3.30, b.PlatformFee)
	assert.Equal(t, 36.27, b.Total)
}

func TestOrderBreakdownTotalIsSum(t *testing.T) {
	cases := []struct {
		price float64
		qty   int
	}{
		{0, 1},
		{0.01, 1},
		{9.99, 2},
		{10.99, 3},
		{4.55, 7},
		{123.45, 999},
		{0.33, 13},
	}
	for _, c := range cases {
		b, err := OrderBreakdown(c.price, c.qty)
		require.NoError(t, err)
		assert.Equal(t, b.Total, round2(b.Subtotal+b.PlatformFee))
		// every field carries at most two decimal digits
		for _, v := range []float64{b.Subtotal, b.PlatformFee, b.Total} {
			assert.Equal(t, v, round2(v))
		}
	}
}

func TestOrderBreakdownRejectsBadInput(t *testing.T) {
	for _, c := range []struct {
		price float64
		qty   int
	}{
		{-1, 1},
		{math.NaN(), 1},
		{math.Inf(1), 1},
		{10, 0},
		{10, -3},
		{10, 1000},
	} {
		_, err := OrderBreakdown(c.price, c.qty)
		var inv *InvalidArgumentError
		require.ErrorAs(t, err, &inv, "price=%v qty=%d", c.price, c.qty)
	}
}

func TestOrderSplit(t *testing.T) {
	s, err := OrderSplit(32.97)
	require.NoError(t, err)
	assert.InDelta(t, 36.267, s.TotalCaptured, 1e-9)
	assert.InDelta(t, 29.673, s.SellerPayout, 1e-9)
	assert.InDelta(t, 6.594, s.AppRevenue, 1e-9)
}

func TestOrderSplitReconciles(t *testing.T) {
	for _, base := range []float64{0, 0.01, 1, 9.99, 32.97, 100, 12345.67} {
		s, err := OrderSplit(base)
		require.NoError(t, err)
		assert.InDelta(t, s.AppRevenue, s.TotalCaptured-s.SellerPayout, 0.01)
	}
}

func TestOrderSplitRejectsBadInput(t *testing.T) {
	for _, base := range []float64{-0.01, math.NaN(), math.Inf(-1)} {
		_, err := OrderSplit(base)
		assert.Error(t, err)
	}
}

func TestTotalWithFeesCents(t *testing.T) {
	total, err := TotalWithFeesCents(15.00)
	require.NoError(t, err)
	// markup 1650, processor round(1650*0.029+30) = 78
	assert.Equal(t, int64(1728), total)

	_, err = TotalWithFeesCents(-1)
	assert.Error(t, err)
}
