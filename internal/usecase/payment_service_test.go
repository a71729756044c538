package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-backend/internal/domain"
	"plate-backend/internal/infrastructure/repo"
	"plate-backend/internal/infrastructure/stripe"
)

type fakePusher struct {
	sent []string
	err  error
}

func (p *fakePusher) Send(_ context.Context, token, title, body string) error {
	p.sent = append(p.sent, token)
	return p.err
}

func intentEvent(t *testing.T, id string, amount int64, metadata map[string]string) stripe.Event {
	t.Helper()
	obj, err := json.Marshal(map[string]any{
		"id":       id,
		"amount":   amount,
		"currency": "usd",
		"metadata": metadata,
	})
	require.NoError(t, err)
	body := fmt.Sprintf(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":%s}}`, obj)
	ev, err := stripe.ParseEvent([]byte(body))
	require.NoError(t, err)
	return ev
}

func subscriptionEvent(t *testing.T, typ, customer, status string) stripe.Event {
	t.Helper()
	body := fmt.Sprintf(`{"id":"evt_2","type":"%s","data":{"object":{"id":"sub_1","customer":"%s","status":"%s"}}}`, typ, customer, status)
	ev, err := stripe.ParseEvent([]byte(body))
	require.NoError(t, err)
	return ev
}

func seedOrder(t *testing.T, orders *repo.MemoryOrderRepo, id, intentID string, unitCents int64, qty int) {
	t.Helper()
	now := time.Now().UTC()
	base := unitCents * int64(qty)
	require.NoError(t, orders.Put(&domain.Order{
		OrderID:         id,
		MealID:          "meal-" + id,
		TakerID:         "taker-1",
		MakerID:         "maker-1",
		Quantity:        qty,
		UnitPriceCents:  unitCents,
		TotalPriceCents: base + base/10,
		Status:          domain.OrderPending,
		PaymentIntentID: intentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}))
}

func TestHandleIntentSucceededReconcilesLedger(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	txs := repo.NewMemoryTransactionRepo()
	seedOrder(t, orders, "o1", "pi_1", 1099, 3) // base 3297
	seedOrder(t, orders, "o2", "pi_1", 500, 2)  // base 1000

	svc := &PaymentService{Orders: orders, Transactions: txs}
	ev := intentEvent(t, "pi_1", 4727, map[string]string{"platform_fee_cents": "859"})
	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	for _, id := range []string{"o1", "o2"} {
		o, ok := orders.Get(id)
		require.True(t, ok)
		assert.True(t, o.Paid)
		assert.Equal(t, domain.OrderAccepted, o.Status)
	}

	rows, err := txs.ListByIntent("pi_1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	var sumCap, sumFee, sumPay int64
	for _, tx := range rows {
		assert.Equal(t, tx.BuyerPaymentCents, tx.SellerPayoutCents+tx.AppRevenueCents)
		sumCap += tx.BuyerPaymentCents
		sumFee += tx.AppRevenueCents
		sumPay += tx.SellerPayoutCents
	}
	assert.Equal(t, int64(4727), sumCap)
	assert.Equal(t, int64(859), sumFee)
	assert.Equal(t, int64(4727-859), sumPay)
}

func TestHandleIntentSucceededReplayIsNoOp(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	txs := repo.NewMemoryTransactionRepo()
	seedOrder(t, orders, "o1", "pi_2", 1500, 1)

	svc := &PaymentService{Orders: orders, Transactions: txs}
	ev := intentEvent(t, "pi_2", 1650, map[string]string{"platform_fee_cents": "300"})
	require.NoError(t, svc.HandleEvent(context.Background(), ev))
	first, ok := orders.Get("o1")
	require.True(t, ok)

	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	second, ok := orders.Get("o1")
	require.True(t, ok)
	assert.Equal(t, first.Paid, second.Paid)
	assert.Equal(t, first.Status, second.Status)

	rows, err := txs.ListByIntent("pi_2")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestHandleIntentSucceededNoMatchingOrders(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	txs := repo.NewMemoryTransactionRepo()
	svc := &PaymentService{Orders: orders, Transactions: txs}

	ev := intentEvent(t, "pi_unknown", 1000, nil)
	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	rows, err := txs.ListByIntent("pi_unknown")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHandleIntentFeeDerivedWithoutMetadata(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	txs := repo.NewMemoryTransactionRepo()
	seedOrder(t, orders, "o1", "pi_3", 3297, 1) // base 3297, captured 3627, payout 2967

	svc := &PaymentService{Orders: orders, Transactions: txs}
	ev := intentEvent(t, "pi_3", 3627, nil)
	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	rows, err := txs.ListByIntent("pi_3")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3627), rows[0].BuyerPaymentCents)
	assert.Equal(t, int64(2967), rows[0].SellerPayoutCents)
	assert.Equal(t, int64(660), rows[0].AppRevenueCents)
}

func TestSubscriptionTierMapping(t *testing.T) {
	profiles := repo.NewMemoryProfileRepo()
	now := time.Now().UTC()
	require.NoError(t, profiles.PutProfile(&domain.Profile{
		UserID: "u1", Role: domain.RoleTaker, StripeCustomerID: "cus_1",
		Tier: domain.TierFree, CreatedAt: now, UpdatedAt: now,
	}))
	svc := &PaymentService{Profiles: profiles}

	cases := []struct {
		typ, status string
		want        domain.MembershipTier
	}{
		{"customer.subscription.created", "trialing", domain.TierPremium},
		{"customer.subscription.updated", "active", domain.TierPremium},
		{"customer.subscription.updated", "past_due", domain.TierFree},
		{"customer.subscription.updated", "active", domain.TierPremium},
		{"customer.subscription.deleted", "active", domain.TierFree},
	}
	for _, c := range cases {
		require.NoError(t, svc.HandleEvent(context.Background(), subscriptionEvent(t, c.typ, "cus_1", c.status)))
		p, ok := profiles.GetProfileByCustomer("cus_1")
		require.True(t, ok)
		assert.Equal(t, c.want, p.Tier, "%s/%s", c.typ, c.status)
	}

	// unknown customer acknowledged without error
	require.NoError(t, svc.HandleEvent(context.Background(), subscriptionEvent(t, "customer.subscription.updated", "cus_missing", "active")))
}

func TestTrialEndingNotifiesBestEffort(t *testing.T) {
	profiles := repo.NewMemoryProfileRepo()
	metro := repo.NewMemoryMetroRepo()
	now := time.Now().UTC()
	require.NoError(t, profiles.PutProfile(&domain.Profile{
		UserID: "u1", StripeCustomerID: "cus_1", Tier: domain.TierPremium,
		ExpoPushToken: "ExponentPushToken[abc]", CreatedAt: now, UpdatedAt: now,
	}))
	push := &fakePusher{err: fmt.Errorf("push gateway down")}
	svc := &PaymentService{Profiles: profiles, Notifications: metro, Push: push}

	ev := subscriptionEvent(t, "customer.subscription.trial_will_end", "cus_1", "trialing")
	// push failure is logged, never escalated
	require.NoError(t, svc.HandleEvent(context.Background(), ev))
	assert.Len(t, metro.Notifications(), 1)
	assert.Equal(t, []string{"ExponentPushToken[abc]"}, push.sent)
}

func TestUnknownEventTypeIgnored(t *testing.T) {
	svc := &PaymentService{}
	ev, err := stripe.ParseEvent([]byte(`{"id":"evt_9","type":"charge.refunded","data":{"object":{}}}`))
	require.NoError(t, err)
	assert.NoError(t, svc.HandleEvent(context.Background(), ev))
}
