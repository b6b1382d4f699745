package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/landsalelk/payments-backend/internal/metrics"
	"github.com/landsalelk/payments-backend/internal/models"
	"github.com/landsalelk/payments-backend/internal/payhere"
	repo "github.com/landsalelk/payments-backend/internal/repository"
	"github.com/landsalelk/payments-backend/internal/worker"
)

// ErrInvalidAmount rejects success notifications whose amount is missing,
// malformed or non-positive.
var ErrInvalidAmount = errors.New("invalid payment amount")

type OutcomeState string

const (
	OutcomeApplied   OutcomeState = "applied"
	OutcomeDuplicate OutcomeState = "duplicate"
	OutcomeIgnored   OutcomeState = "ignored"
)

// Outcome is the result of reconciling one notification. SecondaryErr
// carries a swallowed secondary-effect failure (agent stats, purchase
// record) on an otherwise applied payment.
type Outcome struct {
	State        OutcomeState
	Order        models.Order
	Transaction  models.Transaction
	SecondaryErr error
}

// Policy constants. Fixed percentages and windows, not computed.
const (
	boostLongThreshold = 1500 // major units
	boostLongDays      = 30
	boostShortDays     = 7
	subscriptionDays   = 30
)

type ReconcileService struct {
	trx       repo.Transactions
	listings  repo.Listings
	agents    repo.Agents
	hires     repo.AgentPayments
	purchases repo.Purchases
	wallets   repo.Wallets
	audit     repo.AuditLogs
	wp        *worker.Pool
}

func NewReconcileService(
	trx repo.Transactions,
	listings repo.Listings,
	agents repo.Agents,
	hires repo.AgentPayments,
	purchases repo.Purchases,
	wallets repo.Wallets,
	audit repo.AuditLogs,
	wp *worker.Pool,
) *ReconcileService {
	return &ReconcileService{
		trx:       trx,
		listings:  listings,
		agents:    agents,
		hires:     hires,
		purchases: purchases,
		wallets:   wallets,
		audit:     audit,
		wp:        wp,
	}
}

// Process reconciles a verified notification: claims the ledger row (the
// idempotency guard), routes on the decoded order and applies the domain
// mutation. The caller has already checked the signature.
func (s *ReconcileService) Process(ctx context.Context, n models.Notification) (Outcome, error) {
	order := models.ParseOrder(n.OrderID, n.ContextID)

	if n.StatusCode != payhere.StatusSuccess {
		slog.Info("ignoring non-success payment",
			"payment_id", n.PaymentID, "status_code", n.StatusCode)
		metrics.PaymentsTotal.WithLabelValues(string(order.Kind), "ignored").Inc()
		return Outcome{State: OutcomeIgnored, Order: order}, nil
	}

	amount := n.AmountValue()
	if amount <= 0 {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidAmount, n.Amount)
	}
	cents := models.Cents(amount)

	userID := n.UserID
	if userID == "" {
		userID = "anonymous"
	}

	tx, inserted, err := s.trx.Claim(ctx, models.Transaction{
		OrderID:     n.OrderID,
		PaymentID:   n.PaymentID,
		UserID:      userID,
		PropertyID:  propertyID(order, n),
		AmountCents: cents,
		Currency:    n.Currency,
		Status:      models.TxnPending,
		Provider:    payhere.Provider,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("claim payment %s: %w", n.PaymentID, err)
	}
	if !inserted && tx.Status != models.TxnFailed {
		// completed earlier, or another delivery holds the claim right now
		slog.Info("payment already processed, skipping", "payment_id", n.PaymentID)
		metrics.PaymentsTotal.WithLabelValues(string(order.Kind), "duplicate").Inc()
		return Outcome{State: OutcomeDuplicate, Order: order, Transaction: tx}, nil
	}

	secondaryErr, primaryErr := s.apply(ctx, order, n, userID, amount, cents)
	if primaryErr != nil {
		if err := s.trx.UpdateStatus(ctx, tx.ID, models.TxnFailed); err != nil {
			slog.Error("ledger status update", "transaction_id", tx.ID, "err", err)
		}
		metrics.PaymentsTotal.WithLabelValues(string(order.Kind), "failed").Inc()
		s.auditOutcome(tx, "failed")
		return Outcome{}, primaryErr
	}

	if err := s.trx.UpdateStatus(ctx, tx.ID, models.TxnCompleted); err != nil {
		slog.Error("ledger status update", "transaction_id", tx.ID, "err", err)
	}
	tx.Status = models.TxnCompleted

	if secondaryErr != nil {
		metrics.SecondaryFailures.Inc()
		slog.Warn("secondary effect failed",
			"payment_id", n.PaymentID, "order_type", order.Kind, "err", secondaryErr)
	}
	metrics.PaymentsTotal.WithLabelValues(string(order.Kind), "applied").Inc()
	s.auditOutcome(tx, "applied")
	return Outcome{State: OutcomeApplied, Order: order, Transaction: tx, SecondaryErr: secondaryErr}, nil
}

// apply runs the mutator for the order kind. The first return value is a
// secondary (swallowed) failure, the second a primary failure that must
// mark the payment failed and surface to the gateway.
func (s *ReconcileService) apply(ctx context.Context, order models.Order, n models.Notification, userID string, amount float64, cents int64) (secondary, primary error) {
	switch order.Kind {
	case models.OrderHire:
		return s.applyHire(ctx, order, n, cents)

	case models.OrderBoost:
		if n.ContextID == "" {
			slog.Warn("boost payment without property id", "order_id", n.OrderID)
			return nil, nil
		}
		days := boostShortDays
		if amount >= boostLongThreshold {
			days = boostLongDays
		}
		return nil, s.listings.Boost(ctx, n.ContextID, time.Now().AddDate(0, 0, days))

	case models.OrderVerify:
		if n.ContextID == "" {
			slog.Warn("verification payment without property id", "order_id", n.OrderID)
			return nil, nil
		}
		return nil, s.listings.MarkVerified(ctx, n.ContextID)

	case models.OrderAgent:
		agent, err := s.agents.GetByUserID(ctx, userID)
		if err != nil {
			return err, nil
		}
		return s.agents.ActivateSubscription(ctx, agent.ID, time.Now().AddDate(0, 0, subscriptionDays)), nil

	case models.OrderDigital:
		if n.ContextID == "" {
			slog.Warn("digital purchase without property id", "order_id", n.OrderID)
			return nil, nil
		}
		_, err := s.purchases.Create(ctx, models.DigitalPurchase{
			UserID:      userID,
			PropertyID:  n.ContextID,
			ProductType: order.ProductType,
			PaymentID:   n.PaymentID,
			AmountCents: cents,
			Status:      "completed",
		})
		return err, nil

	case models.OrderWalletDeposit:
		_, err := s.wallets.Deposit(ctx, userID, cents, n.Currency)
		return nil, err

	default:
		slog.Info("unrecognized order type, recording only", "order_id", n.OrderID)
		return nil, nil
	}
}

func (s *ReconcileService) applyHire(ctx context.Context, order models.Order, n models.Notification, cents int64) (secondary, primary error) {
	listing, err := s.listings.Get(ctx, order.ListingID)
	if err != nil {
		return nil, err
	}

	agentID := "unknown"
	if listing.AgentID != nil && *listing.AgentID != "" {
		agentID = *listing.AgentID
	}
	fee, share := models.SplitHireAmount(cents)

	if _, err := s.hires.RecordHire(ctx, models.AgentPayment{
		AgentID:          agentID,
		ListingID:        order.ListingID,
		AmountCents:      cents,
		PlatformFeeCents: fee,
		AgentShareCents:  share,
		Status:           "completed",
		OrderID:          n.OrderID,
	}); err != nil {
		return nil, err
	}

	if listing.AgentID != nil && *listing.AgentID != "" {
		id := *listing.AgentID
		s.wp.Submit(func() {
			if err := s.agents.AddHireEarnings(context.Background(), id, share); err != nil {
				metrics.SecondaryFailures.Inc()
				slog.Warn("agent stats update failed", "agent_id", id, "err", err)
			}
		})
	}
	return nil, nil
}

func (s *ReconcileService) auditOutcome(tx models.Transaction, action string) {
	id := tx.ID
	details := map[string]any{"order_id": tx.OrderID, "payment_id": tx.PaymentID}
	s.wp.Submit(func() {
		if err := s.audit.Create(context.Background(), models.AuditLog{
			EntityType: "payment",
			EntityID:   &id,
			Action:     action,
			Details:    details,
		}); err != nil {
			slog.Warn("audit write failed", "transaction_id", id, "err", err)
		}
	})
}

// propertyID picks the ledger's property reference: the listing id for
// hires, the gateway context field for property-scoped orders, nothing for
// deposits and subscriptions.
func propertyID(order models.Order, n models.Notification) *string {
	switch order.Kind {
	case models.OrderHire:
		return &order.ListingID
	case models.OrderBoost, models.OrderVerify, models.OrderDigital:
		if n.ContextID != "" {
			v := n.ContextID
			return &v
		}
	}
	return nil
}
