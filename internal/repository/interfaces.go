package repository

import (
	"context"
	"time"

	"github.com/landsalelk/payments-backend/internal/models"
)

type Transactions interface {
	// Claim inserts a ledger row for (provider, payment_id), or returns the
	// existing row with inserted=false. This is the idempotency guard.
	Claim(ctx context.Context, tx models.Transaction) (models.Transaction, bool, error)
	UpdateStatus(ctx context.Context, id string, status models.TransactionStatus) error
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

type Listings interface {
	Get(ctx context.Context, id string) (models.Listing, error)
	Boost(ctx context.Context, id string, until time.Time) error
	MarkVerified(ctx context.Context, id string) error
	// ExpireBoosts clears the boosted flag on listings whose boost window
	// has passed; returns the number of rows changed.
	ExpireBoosts(ctx context.Context, now time.Time) (int64, error)
}

type Agents interface {
	GetByUserID(ctx context.Context, userID string) (models.Agent, error)
	ActivateSubscription(ctx context.Context, id string, until time.Time) error
	AddHireEarnings(ctx context.Context, id string, shareCents int64) error
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

type AgentPayments interface {
	// RecordHire creates the payment record and activates the listing in a
	// single database transaction.
	RecordHire(ctx context.Context, p models.AgentPayment) (models.AgentPayment, error)
}

type Purchases interface {
	Create(ctx context.Context, p models.DigitalPurchase) (models.DigitalPurchase, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.DigitalPurchase, error)
}

type Wallets interface {
	// Deposit creates the wallet on first use, otherwise increments both
	// balance and the running deposit total.
	Deposit(ctx context.Context, userID string, amountCents int64, currency string) (models.Wallet, error)
	Get(ctx context.Context, userID string) (models.Wallet, error)
}

type Users interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
