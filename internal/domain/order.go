package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderDenied    OrderStatus = "denied"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// Order is one taker's request for one meal from one maker. TotalPriceCents is
// always recomputed server-side from the unit-price snapshot; a client-supplied
// total is never persisted.
type Order struct {
	OrderID         string      `json:"orderId"`
	MealID          string      `json:"mealId"`
	TakerID         string      `json:"takerId"`
	MakerID         string      `json:"makerId"`
	Quantity        int         `json:"quantity"`
	UnitPriceCents  int64       `json:"unitPriceCents"`
	TotalPriceCents int64       `json:"totalPriceCents"`
	Paid            bool        `json:"paid"`
	Status          OrderStatus `json:"status"`
	PaymentIntentID string      `json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// CanTransition reports whether a seller/system-driven status change is legal.
// pending -> accepted|denied, accepted -> preparing -> ready -> completed,
// any pre-completion state -> cancelled, refunded only after payment.
func (o *Order) CanTransition(to OrderStatus) bool {
	switch to {
	case OrderAccepted, OrderDenied:
		return o.Status == OrderPending
	case OrderPreparing:
		return o.Status == OrderAccepted
	case OrderReady:
		return o.Status == OrderPreparing
	case OrderCompleted:
		return o.Status == OrderReady
	case OrderCancelled:
		switch o.Status {
		case OrderPending, OrderAccepted, OrderPreparing, OrderReady:
			return true
		}
		return false
	case OrderRefunded:
		return o.Paid && o.Status != OrderRefunded
	}
	return false
}
