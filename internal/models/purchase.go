package models

import "time"

type DigitalPurchase struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PropertyID  string    `json:"property_id"`
	ProductType string    `json:"product_type"`
	PaymentID   string    `json:"payment_id"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
