package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/landsalelk/payments-backend/internal/models"
)

type listingsRepo struct{ pool *pgxpool.Pool }

func (r *listingsRepo) Get(ctx context.Context, id string) (models.Listing, error) {
	var l models.Listing
	err := r.pool.QueryRow(ctx,
		`SELECT id, agent_id, status, is_boosted, boost_until,
		        verification_requested, verification_paid, is_verified,
		        verification_code, created_at
		   FROM listings WHERE id=$1`, id,
	).Scan(&l.ID, &l.AgentID, &l.Status, &l.IsBoosted, &l.BoostUntil,
		&l.VerificationRequested, &l.VerificationPaid, &l.IsVerified,
		&l.VerificationCode, &l.CreatedAt)
	return l, mapErr(err, "listing", id)
}

func (r *listingsRepo) Boost(ctx context.Context, id string, until time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET is_boosted=true, boost_until=$2 WHERE id=$1`,
		id, until)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound("listing", id)
	}
	return nil
}

func (r *listingsRepo) MarkVerified(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings
		    SET verification_requested=true, verification_paid=true, is_verified=true
		  WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound("listing", id)
	}
	return nil
}

func (r *listingsRepo) ExpireBoosts(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET is_boosted=false WHERE is_boosted AND boost_until < $1`,
		now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
