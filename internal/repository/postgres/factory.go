package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	repo "github.com/landsalelk/payments-backend/internal/repository"
)

type Repositories struct {
	Transactions  repo.Transactions
	Listings      repo.Listings
	Agents        repo.Agents
	AgentPayments repo.AgentPayments
	Purchases     repo.Purchases
	Wallets       repo.Wallets
	Users         repo.Users
	AuditLogs     repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Transactions:  &transactionsRepo{pool},
		Listings:      &listingsRepo{pool},
		Agents:        &agentsRepo{pool},
		AgentPayments: &agentPaymentsRepo{pool},
		Purchases:     &purchasesRepo{pool},
		Wallets:       &walletsRepo{pool},
		Users:         &usersRepo{pool},
		AuditLogs:     &auditLogsRepo{pool},
	}
}
