package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	repo "github.com/landsalelk/payments-backend/internal/repository"
)

func errNotFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, repo.ErrNotFound)
}

// mapErr converts driver-level misses into the repository sentinel.
func mapErr(err error, entity, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errNotFound(entity, id)
	}
	return err
}
