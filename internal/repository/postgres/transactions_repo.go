package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/landsalelk/payments-backend/internal/models"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txnColumns = `id, order_id, payment_id, user_id, property_id, amount_cents, currency, status, provider, created_at`

func (r *transactionsRepo) Claim(ctx context.Context, tx models.Transaction) (models.Transaction, bool, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	// ON CONFLICT DO NOTHING returns no row on a duplicate, so a miss here
	// means some earlier delivery already holds the claim.
	err := r.pool.QueryRow(ctx, `
INSERT INTO transactions (id, order_id, payment_id, user_id, property_id, amount_cents, currency, status, provider)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (provider, payment_id) DO NOTHING
RETURNING `+txnColumns,
		tx.ID, tx.OrderID, tx.PaymentID, tx.UserID, tx.PropertyID,
		tx.AmountCents, tx.Currency, tx.Status, tx.Provider,
	).Scan(&tx.ID, &tx.OrderID, &tx.PaymentID, &tx.UserID, &tx.PropertyID,
		&tx.AmountCents, &tx.Currency, &tx.Status, &tx.Provider, &tx.CreatedAt)
	if err == nil {
		return tx, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, false, err
	}

	existing, err := r.getByPayment(ctx, tx.Provider, tx.PaymentID)
	if err != nil {
		return models.Transaction{}, false, err
	}
	return existing, false, nil
}

func (r *transactionsRepo) getByPayment(ctx context.Context, provider, paymentID string) (models.Transaction, error) {
	var tx models.Transaction
	err := r.pool.QueryRow(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE provider=$1 AND payment_id=$2`,
		provider, paymentID,
	).Scan(&tx.ID, &tx.OrderID, &tx.PaymentID, &tx.UserID, &tx.PropertyID,
		&tx.AmountCents, &tx.Currency, &tx.Status, &tx.Provider, &tx.CreatedAt)
	return tx, mapErr(err, "payment", paymentID)
}

func (r *transactionsRepo) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE transactions SET status=$2 WHERE id=$1`, id, status)
	return err
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	var tx models.Transaction
	err := r.pool.QueryRow(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE id=$1`, id,
	).Scan(&tx.ID, &tx.OrderID, &tx.PaymentID, &tx.UserID, &tx.PropertyID,
		&tx.AmountCents, &tx.Currency, &tx.Status, &tx.Provider, &tx.CreatedAt)
	return tx, mapErr(err, "transaction", id)
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnColumns+` FROM transactions
		  WHERE user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.OrderID, &tx.PaymentID, &tx.UserID, &tx.PropertyID,
			&tx.AmountCents, &tx.Currency, &tx.Status, &tx.Provider, &tx.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
