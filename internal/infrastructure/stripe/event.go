package stripe

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	EventPaymentIntentSucceeded  = "payment_intent.succeeded"
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventSubscriptionTrialEnding = "customer.subscription.trial_will_end"
)

// Event is the provider's webhook envelope. Data.Object is kept raw and
// decoded per event type.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("parse event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("event type missing")
	}
	return ev, nil
}

type PaymentIntent struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// PlatformFeeCents reads the fee the checkout path stamped on the intent.
// Returns false when the metadata is absent or unparseable.
func (pi PaymentIntent) PlatformFeeCents() (int64, bool) {
	v, ok := pi.Metadata["platform_fee_cents"]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (ev Event) PaymentIntent() (PaymentIntent, error) {
	var pi PaymentIntent
	if err := json.Unmarshal(ev.Data.Object, &pi); err != nil {
		return PaymentIntent{}, fmt.Errorf("parse payment intent: %w", err)
	}
	if pi.ID == "" {
		return PaymentIntent{}, fmt.Errorf("payment intent id missing")
	}
	return pi, nil
}

type Subscription struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	TrialEnd int64  `json:"trial_end"`
}

func (ev Event) Subscription() (Subscription, error) {
	var sub Subscription
	if err := json.Unmarshal(ev.Data.Object, &sub); err != nil {
		return Subscription{}, fmt.Errorf("parse subscription: %w", err)
	}
	if sub.Customer == "" {
		return Subscription{}, fmt.Errorf("subscription customer missing")
	}
	return sub, nil
}

// PremiumStatus reports whether a provider subscription status maps to the
// premium tier. Everything outside active/trialing is free.
func PremiumStatus(status string) bool {
	return status == "active" || status == "trialing"
}
