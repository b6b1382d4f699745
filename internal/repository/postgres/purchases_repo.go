package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/landsalelk/payments-backend/internal/models"
)

type purchasesRepo struct{ pool *pgxpool.Pool }

func (r *purchasesRepo) Create(ctx context.Context, p models.DigitalPurchase) (models.DigitalPurchase, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO digital_purchases (id, user_id, property_id, product_type, payment_id, amount_cents, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING created_at`,
		p.ID, p.UserID, p.PropertyID, p.ProductType, p.PaymentID, p.AmountCents, p.Status,
	).Scan(&p.CreatedAt)
	if err != nil {
		return models.DigitalPurchase{}, err
	}
	return p, nil
}

func (r *purchasesRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.DigitalPurchase, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, property_id, product_type, payment_id, amount_cents, status, created_at
		   FROM digital_purchases
		  WHERE user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DigitalPurchase
	for rows.Next() {
		var p models.DigitalPurchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.PropertyID, &p.ProductType,
			&p.PaymentID, &p.AmountCents, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
