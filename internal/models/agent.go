package models

import "time"

type AgentStatus string

const (
	AgentActive   AgentStatus = "active"
	AgentInactive AgentStatus = "inactive"
	AgentExpired  AgentStatus = "expired"
)

type Agent struct {
	ID                 string      `json:"id"`
	UserID             string      `json:"user_id"`
	Status             AgentStatus `json:"status"`
	IsVerified         bool        `json:"is_verified"`
	SubscriptionUntil  *time.Time  `json:"subscription_until,omitempty"`
	TotalEarningsCents int64       `json:"total_earnings_cents"`
	ListingsUploaded   int         `json:"listings_uploaded"`
}

// AgentPayment records an agent-hire payment split between the agent and
// the platform. Policy: 20% platform fee, 80% agent share.
type AgentPayment struct {
	ID               string    `json:"id"`
	AgentID          string    `json:"agent_id"`
	ListingID        string    `json:"listing_id"`
	AmountCents      int64     `json:"amount_cents"`
	PlatformFeeCents int64     `json:"platform_fee_cents"`
	AgentShareCents  int64     `json:"agent_share_cents"`
	Status           string    `json:"status"`
	OrderID          string    `json:"order_id"`
	PaidAt           time.Time `json:"paid_at"`
}

const hireFeePercent = 20

// SplitHireAmount computes the platform fee and agent share in cents.
func SplitHireAmount(amountCents int64) (fee, share int64) {
	fee = amountCents * hireFeePercent / 100
	return fee, amountCents - fee
}
