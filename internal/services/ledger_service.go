package services

import (
	"context"

	"github.com/landsalelk/payments-backend/internal/models"
	repo "github.com/landsalelk/payments-backend/internal/repository"
)

// LedgerService backs the admin read API.
type LedgerService struct {
	trx       repo.Transactions
	wallets   repo.Wallets
	listings  repo.Listings
	purchases repo.Purchases
}

func NewLedgerService(trx repo.Transactions, wallets repo.Wallets, listings repo.Listings, purchases repo.Purchases) *LedgerService {
	return &LedgerService{trx: trx, wallets: wallets, listings: listings, purchases: purchases}
}

func (s *LedgerService) Transaction(ctx context.Context, id string) (models.Transaction, error) {
	return s.trx.GetByID(ctx, id)
}

func (s *LedgerService) TransactionsByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	return s.trx.ListByUser(ctx, userID, limit, offset)
}

func (s *LedgerService) Wallet(ctx context.Context, userID string) (models.Wallet, error) {
	return s.wallets.Get(ctx, userID)
}

func (s *LedgerService) Listing(ctx context.Context, id string) (models.Listing, error) {
	return s.listings.Get(ctx, id)
}

func (s *LedgerService) PurchasesByUser(ctx context.Context, userID string, limit, offset int) ([]models.DigitalPurchase, error) {
	return s.purchases.ListByUser(ctx, userID, limit, offset)
}
