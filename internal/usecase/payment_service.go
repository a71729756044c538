package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"plate-backend/internal/domain"
	"plate-backend/internal/fees"
	"plate-backend/internal/infrastructure/stripe"
)

type TransactionRepo interface {
	Insert(*domain.Transaction) (bool, error)
}

type ProfileRepo interface {
	PutProfile(*domain.Profile) error
	GetProfileByCustomer(customerID string) (*domain.Profile, bool)
}

type NotificationRepo interface {
	InsertNotification(*domain.Notification) error
}

type Pusher interface {
	Send(ctx context.Context, pushToken, title, body string) error
}

// PaymentService turns verified provider events into order/ledger/profile
// state. The order update is the primary step and fails loudly; everything
// after it is best-effort.
type PaymentService struct {
	Orders        OrderRepo
	Transactions  TransactionRepo
	Profiles      ProfileRepo
	Notifications NotificationRepo
	Push          Pusher
}

// HandleEvent dispatches one verified webhook event. Unrecognized types are
// acknowledged without side effects.
func (s *PaymentService) HandleEvent(ctx context.Context, ev stripe.Event) error {
	switch ev.Type {
	case stripe.EventPaymentIntentSucceeded:
		pi, err := ev.PaymentIntent()
		if err != nil {
			return ErrBadRequest(err.Error())
		}
		return s.handleIntentSucceeded(pi)
	case stripe.EventSubscriptionCreated, stripe.EventSubscriptionUpdated, stripe.EventSubscriptionDeleted:
		sub, err := ev.Subscription()
		if err != nil {
			return ErrBadRequest(err.Error())
		}
		return s.handleSubscription(ev.Type, sub)
	case stripe.EventSubscriptionTrialEnding:
		sub, err := ev.Subscription()
		if err != nil {
			return ErrBadRequest(err.Error())
		}
		return s.handleTrialEnding(ctx, sub)
	default:
		log.Printf("[webhook] ignoring event type %s", ev.Type)
		return nil
	}
}

// handleIntentSucceeded flips every order under the intent to paid/accepted in
// one atomic statement, then writes the proportional ledger split. Ledger or
// allocation failures never roll back the paid state: the buyer has already
// been charged, and missing rows are reconciled from provider records later.
func (s *PaymentService) handleIntentSucceeded(pi stripe.PaymentIntent) error {
	orders, err := s.Orders.MarkPaidByIntent(pi.ID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		// Legitimate when order linking failed or raced; provider retries on
		// non-2xx would only duplicate work here.
		log.Printf("[webhook] no orders matched payment intent %s", pi.ID)
		return nil
	}

	base := make([]int64, len(orders))
	for i, o := range orders {
		base[i] = o.UnitPriceCents * int64(o.Quantity)
	}
	feeCents, ok := pi.PlatformFeeCents()
	if !ok {
		feeCents = derivedFeeCents(base, pi.Amount)
	}
	allocs, err := fees.AllocateIntent(base, pi.Amount, feeCents)
	if err != nil {
		log.Printf("[webhook] allocation failed for intent %s: %v", pi.ID, err)
		return nil
	}

	now := time.Now().UTC()
	currency := pi.Currency
	if currency == "" {
		currency = "usd"
	}
	for i, o := range orders {
		t := &domain.Transaction{
			ID:                uuid.NewString(),
			PaymentIntentID:   pi.ID,
			OrderID:           o.OrderID,
			TakerID:           o.TakerID,
			MakerID:           o.MakerID,
			MealID:            o.MealID,
			BasePriceCents:    base[i],
			BuyerPaymentCents: allocs[i].CapturedCents,
			SellerPayoutCents: allocs[i].SellerPayoutCents,
			AppRevenueCents:   allocs[i].AppRevenueCents,
			Currency:          currency,
			Status:            domain.TransactionSucceeded,
			CreatedAt:         now,
		}
		inserted, err := s.Transactions.Insert(t)
		if err != nil {
			log.Printf("[webhook] ledger insert failed for order %s: %v", o.OrderID, err)
			continue
		}
		if !inserted {
			log.Printf("[webhook] ledger row already exists for intent %s order %s", pi.ID, o.OrderID)
		}
	}
	return nil
}

func (s *PaymentService) handleSubscription(eventType string, sub stripe.Subscription) error {
	tier := domain.TierFree
	if eventType != stripe.EventSubscriptionDeleted && stripe.PremiumStatus(sub.Status) {
		tier = domain.TierPremium
	}
	p, ok := s.Profiles.GetProfileByCustomer(sub.Customer)
	if !ok {
		log.Printf("[webhook] no profile for customer %s", sub.Customer)
		return nil
	}
	if p.Tier == tier {
		return nil
	}
	p.Tier = tier
	p.UpdatedAt = time.Now().UTC()
	return s.Profiles.PutProfile(p)
}

func (s *PaymentService) handleTrialEnding(ctx context.Context, sub stripe.Subscription) error {
	p, ok := s.Profiles.GetProfileByCustomer(sub.Customer)
	if !ok {
		log.Printf("[webhook] no profile for customer %s", sub.Customer)
		return nil
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		Title:     "Your trial is ending soon",
		Body:      "Your premium trial ends in a few days. Keep premium to stay featured.",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Notifications.InsertNotification(n); err != nil {
		log.Printf("[webhook] notification write failed for user %s: %v", p.UserID, err)
	}
	if s.Push != nil && p.ExpoPushToken != "" {
		if err := s.Push.Send(ctx, p.ExpoPushToken, n.Title, n.Body); err != nil {
			log.Printf("[webhook] push dispatch failed for user %s: %v", p.UserID, err)
		}
	}
	return nil
}

// derivedFeeCents reconstructs the platform take when the intent carries no
// fee metadata: captured minus the 90% seller payout over all base amounts.
func derivedFeeCents(base []int64, capturedCents int64) int64 {
	var payout int64
	for _, b := range base {
		split, err := fees.OrderSplit(dollars(b))
		if err != nil {
			continue
		}
		payout += cents(split.SellerPayout)
	}
	fee := capturedCents - payout
	if fee < 0 {
		return 0
	}
	if fee > capturedCents {
		return capturedCents
	}
	return fee
}
