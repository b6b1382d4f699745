package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/landsalelk/payments-backend/internal/models"
)

type agentsRepo struct{ pool *pgxpool.Pool }

func (r *agentsRepo) GetByUserID(ctx context.Context, userID string) (models.Agent, error) {
	var a models.Agent
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, status, is_verified, subscription_until,
		        total_earnings_cents, listings_uploaded
		   FROM agents WHERE user_id=$1`, userID,
	).Scan(&a.ID, &a.UserID, &a.Status, &a.IsVerified, &a.SubscriptionUntil,
		&a.TotalEarningsCents, &a.ListingsUploaded)
	return a, mapErr(err, "agent for user", userID)
}

func (r *agentsRepo) ActivateSubscription(ctx context.Context, id string, until time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents
		    SET is_verified=true, status=$2, subscription_until=$3
		  WHERE id=$1`,
		id, models.AgentActive, until)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound("agent", id)
	}
	return nil
}

func (r *agentsRepo) AddHireEarnings(ctx context.Context, id string, shareCents int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents
		    SET total_earnings_cents = total_earnings_cents + $2,
		        listings_uploaded = listings_uploaded + 1
		  WHERE id=$1`,
		id, shareCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound("agent", id)
	}
	return nil
}

func (r *agentsRepo) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents SET status=$2
		  WHERE status=$1 AND subscription_until IS NOT NULL AND subscription_until < $3`,
		models.AgentActive, models.AgentExpired, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
