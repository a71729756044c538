package domain

import "time"

type TransactionStatus string

const (
	TransactionSucceeded TransactionStatus = "succeeded"
)

// Transaction is one append-only ledger row: the confirmed monetary split for
// one order. Rows are created once per (payment intent, order) pair and never
// mutated. BuyerPaymentCents == SellerPayoutCents + AppRevenueCents exactly.
type Transaction struct {
	ID                string            `json:"id"`
	PaymentIntentID   string            `json:"paymentIntentId"`
	OrderID           string            `json:"orderId"`
	TakerID           string            `json:"takerId"`
	MakerID           string            `json:"makerId"`
	MealID            string            `json:"mealId"`
	BasePriceCents    int64             `json:"basePriceCents"`
	BuyerPaymentCents int64             `json:"buyerPaymentCents"`
	SellerPayoutCents int64             `json:"sellerPayoutCents"`
	AppRevenueCents   int64             `json:"appRevenueCents"`
	Currency          string            `json:"currency"`
	Status            TransactionStatus `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
}
