package models

import "time"

type Wallet struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	BalanceCents       int64     `json:"balance_cents"`
	TotalDepositsCents int64     `json:"total_deposits_cents"`
	Currency           string    `json:"currency"`
	IsActive           bool      `json:"is_active"`
	LastUpdatedAt      time.Time `json:"last_updated_at"`
}
