package models

import "time"

type ListingStatus string

const (
	ListingDraft   ListingStatus = "draft"
	ListingPending ListingStatus = "pending"
	ListingActive  ListingStatus = "active"
	ListingSold    ListingStatus = "sold"
	ListingExpired ListingStatus = "expired"
)

type Listing struct {
	ID                    string        `json:"id"`
	AgentID               *string       `json:"agent_id,omitempty"`
	Status                ListingStatus `json:"status"`
	IsBoosted             bool          `json:"is_boosted"`
	BoostUntil            *time.Time    `json:"boost_until,omitempty"`
	VerificationRequested bool          `json:"verification_requested"`
	VerificationPaid      bool          `json:"verification_paid"`
	IsVerified            bool          `json:"is_verified"`
	VerificationCode      *string       `json:"-"`
	CreatedAt             time.Time     `json:"created_at"`
}
