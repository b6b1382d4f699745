package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/landsalelk/payments-backend/internal/models"
)

type agentPaymentsRepo struct{ pool *pgxpool.Pool }

// RecordHire writes the payment record and activates the listing together.
// The listing's verification code is a one-time security token and is
// cleared on activation.
func (r *agentPaymentsRepo) RecordHire(ctx context.Context, p models.AgentPayment) (models.AgentPayment, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return models.AgentPayment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
INSERT INTO agent_payments (id, agent_id, listing_id, amount_cents, platform_fee_cents, agent_share_cents, status, order_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING paid_at`,
		p.ID, p.AgentID, p.ListingID, p.AmountCents, p.PlatformFeeCents,
		p.AgentShareCents, p.Status, p.OrderID,
	).Scan(&p.PaidAt)
	if err != nil {
		return models.AgentPayment{}, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE listings SET status=$2, verification_code=NULL WHERE id=$1`,
		p.ListingID, models.ListingActive)
	if err != nil {
		return models.AgentPayment{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.AgentPayment{}, errNotFound("listing", p.ListingID)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.AgentPayment{}, err
	}
	return p, nil
}
