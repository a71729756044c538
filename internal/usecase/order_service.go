package usecase

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"plate-backend/internal/domain"
	"plate-backend/internal/fees"
	"plate-backend/internal/infrastructure/stripe"
)

type OrderRepo interface {
	Put(*domain.Order) error
	Get(id string) (*domain.Order, bool)
	MarkPaidByIntent(intentID string) ([]domain.Order, error)
	LinkIntent(orderIDs []string, intentID string) error
}

type MealRepo interface {
	GetMeal(id string) (*domain.Meal, bool)
}

type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (stripe.PaymentIntentRef, error)
}

type OrderService struct {
	Repo    OrderRepo
	Meals   MealRepo
	Intents IntentCreator
}

type CreateOrderInput struct {
	MealID   string `json:"mealId"`
	TakerID  string `json:"takerId"`
	Quantity int    `json:"quantity"`
}

// Create prices the order from the stored meal snapshot. Whatever total the
// client showed the buyer is irrelevant here: the fee engine's number is the
// one that gets persisted and charged.
func (s *OrderService) Create(in CreateOrderInput) (*domain.Order, error) {
	if in.MealID == "" || in.TakerID == "" {
		return nil, ErrBadRequest("mealId and takerId required")
	}
	meal, ok := s.Meals.GetMeal(in.MealID)
	if !ok {
		return nil, ErrNotFound("meal")
	}
	if !meal.Available {
		return nil, ErrConflict("meal not available")
	}
	b, err := fees.OrderBreakdown(dollars(meal.PriceCents), in.Quantity)
	if err != nil {
		return nil, ErrBadRequest(err.Error())
	}
	now := time.Now().UTC()
	o := &domain.Order{
		OrderID:         uuid.NewString(),
		MealID:          meal.MealID,
		TakerID:         in.TakerID,
		MakerID:         meal.MakerID,
		Quantity:        in.Quantity,
		UnitPriceCents:  meal.PriceCents,
		TotalPriceCents: cents(b.Total),
		Paid:            false,
		Status:          domain.OrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Put(o); err != nil {
		return nil, err
	}
	return o, nil
}

type CheckoutInput struct {
	OrderIDs []string `json:"orderIds"`
	// PassProcessorFees charges the buyer the processor cost on top of the
	// marked-up price instead of absorbing it into the platform take.
	PassProcessorFees bool `json:"passProcessorFees"`
}

// Checkout creates one provider payment intent covering the given orders and
// links its id to each row. The intent carries the platform fee as metadata so
// the webhook ledger pass does not have to re-derive it.
func (s *OrderService) Checkout(ctx context.Context, in CheckoutInput) (stripe.PaymentIntentRef, error) {
	if len(in.OrderIDs) == 0 {
		return stripe.PaymentIntentRef{}, ErrBadRequest("at least one order required")
	}
	var amount, fee int64
	for _, id := range in.OrderIDs {
		o, ok := s.Repo.Get(id)
		if !ok {
			return stripe.PaymentIntentRef{}, ErrNotFound("order " + id)
		}
		if o.Paid {
			return stripe.PaymentIntentRef{}, ErrConflict("order already paid")
		}
		base := dollars(o.UnitPriceCents) * float64(o.Quantity)
		split, err := fees.OrderSplit(base)
		if err != nil {
			return stripe.PaymentIntentRef{}, ErrBadRequest(err.Error())
		}
		lineTotal := o.TotalPriceCents
		if in.PassProcessorFees {
			lineTotal, err = fees.TotalWithFeesCents(base)
			if err != nil {
				return stripe.PaymentIntentRef{}, ErrBadRequest(err.Error())
			}
		}
		amount += lineTotal
		fee += lineTotal - cents(split.SellerPayout)
	}
	ref, err := s.Intents.CreatePaymentIntent(ctx, amount, "usd", map[string]string{
		"platform_fee_cents": strconv.FormatInt(fee, 10),
		"order_count":        strconv.Itoa(len(in.OrderIDs)),
	})
	if err != nil {
		return stripe.PaymentIntentRef{}, err
	}
	if err := s.Repo.LinkIntent(in.OrderIDs, ref.ID); err != nil {
		return stripe.PaymentIntentRef{}, err
	}
	return ref, nil
}

// UpdateStatus applies a seller-driven lifecycle transition.
func (s *OrderService) UpdateStatus(orderID string, to domain.OrderStatus) (*domain.Order, error) {
	o, ok := s.Repo.Get(orderID)
	if !ok {
		return nil, ErrNotFound("order")
	}
	if !o.CanTransition(to) {
		return nil, ErrConflict("cannot transition " + string(o.Status) + " -> " + string(to))
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Put(o); err != nil {
		return nil, err
	}
	return o, nil
}

func dollars(c int64) float64 { return float64(c) / 100 }

func cents(d float64) int64 { return int64(math.Round(d * 100)) }
