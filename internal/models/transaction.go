package models

import "time"

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry, one per gateway payment.
// (provider, payment_id) is unique; the insert doubles as the idempotency
// guard for redelivered notifications.
type Transaction struct {
	ID          string            `json:"id"`
	OrderID     string            `json:"order_id"`
	PaymentID   string            `json:"payment_id"`
	UserID      string            `json:"user_id"`
	PropertyID  *string           `json:"property_id,omitempty"`
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Status      TransactionStatus `json:"status"`
	Provider    string            `json:"provider"`
	CreatedAt   time.Time         `json:"created_at"`
}
