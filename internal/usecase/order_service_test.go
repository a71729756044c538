package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-backend/internal/domain"
	"plate-backend/internal/infrastructure/repo"
	"plate-backend/internal/infrastructure/stripe"
)

type fakeIntents struct {
	lastAmount   int64
	lastMetadata map[string]string
}

func (f *fakeIntents) CreatePaymentIntent(_ context.Context, amountCents int64, currency string, metadata map[string]string) (stripe.PaymentIntentRef, error) {
	f.lastAmount = amountCents
	f.lastMetadata = metadata
	return stripe.PaymentIntentRef{ID: "pi_test", ClientSecret: "secret"}, nil
}

func newOrderService(t *testing.T) (*OrderService, *repo.MemoryOrderRepo) {
	t.Helper()
	meals := repo.NewMemoryMealRepo()
	now := time.Now().UTC()
	require.NoError(t, meals.PutMeal(&domain.Meal{
		MealID: "meal-1", MakerID: "maker-1", Name: "Paella",
		PriceCents: 1099, Available: true, CreatedAt: now, UpdatedAt: now,
	}))
	orders := repo.NewMemoryOrderRepo()
	return &OrderService{Repo: orders, Meals: meals, Intents: &fakeIntents{}}, orders
}

func TestCreateOrderComputesTotalServerSide(t *testing.T) {
	svc, _ := newOrderService(t)
	o, err := svc.Create(CreateOrderInput{MealID: "meal-1", TakerID: "taker-1", Quantity: 3})
	require.NoError(t, err)
	// 10.99 * 3 = 32.97 subtotal, +10% fee = 36.27
	assert.Equal(t, int64(1099), o.UnitPriceCents)
	assert.Equal(t, int64(3627), o.TotalPriceCents)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.False(t, o.Paid)
}

func TestCreateOrderRejectsBadQuantity(t *testing.T) {
	svc, _ := newOrderService(t)
	for _, qty := range []int{0, -1, 1000} {
		_, err := svc.Create(CreateOrderInput{MealID: "meal-1", TakerID: "taker-1", Quantity: qty})
		assert.Error(t, err, "quantity %d", qty)
	}
}

func TestCreateOrderUnknownMeal(t *testing.T) {
	svc, _ := newOrderService(t)
	_, err := svc.Create(CreateOrderInput{MealID: "nope", TakerID: "taker-1", Quantity: 1})
	var nf ErrNotFound
	assert.ErrorAs(t, err, &nf)
}

func TestCheckoutLinksIntentWithFeeMetadata(t *testing.T) {
	svc, orders := newOrderService(t)
	o, err := svc.Create(CreateOrderInput{MealID: "meal-1", TakerID: "taker-1", Quantity: 3})
	require.NoError(t, err)

	intents := svc.Intents.(*fakeIntents)
	ref, err := svc.Checkout(context.Background(), CheckoutInput{OrderIDs: []string{o.OrderID}})
	require.NoError(t, err)
	assert.Equal(t, "pi_test", ref.ID)
	assert.Equal(t, int64(3627), intents.lastAmount)
	// captured 3627 minus payout round(2967.3)=2967 -> 660 platform take
	assert.Equal(t, "660", intents.lastMetadata["platform_fee_cents"])

	linked, ok := orders.Get(o.OrderID)
	require.True(t, ok)
	assert.Equal(t, "pi_test", linked.PaymentIntentID)
}

func TestCheckoutPassesProcessorFeesThrough(t *testing.T) {
	svc, _ := newOrderService(t)
	meals := svc.Meals.(*repo.MemoryMealRepo)
	now := time.Now().UTC()
	require.NoError(t, meals.PutMeal(&domain.Meal{
		MealID: "meal-15", MakerID: "maker-1", Name: "Bento",
		PriceCents: 1500, Available: true, CreatedAt: now, UpdatedAt: now,
	}))
	o, err := svc.Create(CreateOrderInput{MealID: "meal-15", TakerID: "taker-1", Quantity: 1})
	require.NoError(t, err)

	intents := svc.Intents.(*fakeIntents)
	_, err = svc.Checkout(context.Background(), CheckoutInput{
		OrderIDs:          []string{o.OrderID},
		PassProcessorFees: true,
	})
	require.NoError(t, err)
	// 15.00 marks up to 1650, processor round(1650*0.029+30)=78 -> buyer pays 1728;
	// payout stays 1350, so the platform take absorbs the recovered 78.
	assert.Equal(t, int64(1728), intents.lastAmount)
	assert.Equal(t, "378", intents.lastMetadata["platform_fee_cents"])
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, orders := newOrderService(t)
	o, err := svc.Create(CreateOrderInput{MealID: "meal-1", TakerID: "taker-1", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(o.OrderID, domain.OrderPreparing)
	var conflict ErrConflict
	assert.ErrorAs(t, err, &conflict, "pending cannot go straight to preparing")

	for _, to := range []domain.OrderStatus{
		domain.OrderAccepted, domain.OrderPreparing, domain.OrderReady, domain.OrderCompleted,
	} {
		got, err := svc.UpdateStatus(o.OrderID, to)
		require.NoError(t, err, "transition to %s", to)
		assert.Equal(t, to, got.Status)
	}

	_, err = svc.UpdateStatus(o.OrderID, domain.OrderCancelled)
	assert.Error(t, err, "completed orders cannot be cancelled")

	// refund requires payment
	o2, err := svc.Create(CreateOrderInput{MealID: "meal-1", TakerID: "taker-1", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(o2.OrderID, domain.OrderRefunded)
	assert.Error(t, err)

	paid, _ := orders.Get(o2.OrderID)
	paid.Paid = true
	paid.Status = domain.OrderAccepted
	require.NoError(t, orders.Put(paid))
	got, err := svc.UpdateStatus(o2.OrderID, domain.OrderRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderRefunded, got.Status)
}
