package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/landsalelk/payments-backend/internal/models"
)

type walletsRepo struct{ pool *pgxpool.Pool }

func (r *walletsRepo) Deposit(ctx context.Context, userID string, amountCents int64, currency string) (models.Wallet, error) {
	var w models.Wallet
	// single upsert so concurrent deposits never lose an increment
	err := r.pool.QueryRow(ctx, `
INSERT INTO wallets (id, user_id, balance_cents, total_deposits_cents, currency, is_active)
VALUES ($1,$2,$3,$3,$4,true)
ON CONFLICT (user_id) DO UPDATE
   SET balance_cents        = wallets.balance_cents + EXCLUDED.balance_cents,
       total_deposits_cents = wallets.total_deposits_cents + EXCLUDED.total_deposits_cents,
       last_updated_at      = now()
RETURNING id, user_id, balance_cents, total_deposits_cents, currency, is_active, last_updated_at`,
		uuid.NewString(), userID, amountCents, currency,
	).Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.TotalDepositsCents,
		&w.Currency, &w.IsActive, &w.LastUpdatedAt)
	return w, err
}

func (r *walletsRepo) Get(ctx context.Context, userID string) (models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, balance_cents, total_deposits_cents, currency, is_active, last_updated_at
		   FROM wallets WHERE user_id=$1`, userID,
	).Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.TotalDepositsCents,
		&w.Currency, &w.IsActive, &w.LastUpdatedAt)
	return w, mapErr(err, "wallet for user", userID)
}
