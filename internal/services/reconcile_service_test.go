package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landsalelk/payments-backend/internal/models"
	"github.com/landsalelk/payments-backend/internal/payhere"
	repo "github.com/landsalelk/payments-backend/internal/repository"
	"github.com/landsalelk/payments-backend/internal/worker"
)

// ---- in-memory fakes ----

type fakeLedger struct {
	mu   sync.Mutex
	rows []models.Transaction
}

func (f *fakeLedger) Claim(_ context.Context, tx models.Transaction) (models.Transaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Provider == tx.Provider && r.PaymentID == tx.PaymentID {
			return r, false, nil
		}
	}
	tx.ID = fmt.Sprintf("txn-%d", len(f.rows)+1)
	tx.CreatedAt = time.Now()
	f.rows = append(f.rows, tx)
	return tx, true, nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, id string, status models.TransactionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = status
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeLedger) GetByID(_ context.Context, id string) (models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Transaction{}, repo.ErrNotFound
}

func (f *fakeLedger) ListByUser(_ context.Context, userID string, _, _ int) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeListings struct {
	mu    sync.Mutex
	items map[string]*models.Listing
}

func (f *fakeListings) Get(_ context.Context, id string) (models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return models.Listing{}, repo.ErrNotFound
	}
	return *l, nil
}

func (f *fakeListings) Boost(_ context.Context, id string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return repo.ErrNotFound
	}
	l.IsBoosted = true
	l.BoostUntil = &until
	return nil
}

func (f *fakeListings) MarkVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return repo.ErrNotFound
	}
	l.VerificationRequested = true
	l.VerificationPaid = true
	l.IsVerified = true
	return nil
}

func (f *fakeListings) ExpireBoosts(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range f.items {
		if l.IsBoosted && l.BoostUntil != nil && l.BoostUntil.Before(now) {
			l.IsBoosted = false
			n++
		}
	}
	return n, nil
}

type fakeAgents struct {
	mu    sync.Mutex
	items map[string]*models.Agent // keyed by agent id
}

func (f *fakeAgents) GetByUserID(_ context.Context, userID string) (models.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.UserID == userID {
			return *a, nil
		}
	}
	return models.Agent{}, repo.ErrNotFound
}

func (f *fakeAgents) ActivateSubscription(_ context.Context, id string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return repo.ErrNotFound
	}
	a.IsVerified = true
	a.Status = models.AgentActive
	a.SubscriptionUntil = &until
	return nil
}

func (f *fakeAgents) AddHireEarnings(_ context.Context, id string, shareCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return repo.ErrNotFound
	}
	a.TotalEarningsCents += shareCents
	a.ListingsUploaded++
	return nil
}

func (f *fakeAgents) ExpireSubscriptions(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, a := range f.items {
		if a.Status == models.AgentActive && a.SubscriptionUntil != nil && a.SubscriptionUntil.Before(now) {
			a.Status = models.AgentExpired
			n++
		}
	}
	return n, nil
}

type fakeHires struct {
	mu       sync.Mutex
	listings *fakeListings
	payments []models.AgentPayment
}

func (f *fakeHires) RecordHire(_ context.Context, p models.AgentPayment) (models.AgentPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings.mu.Lock()
	defer f.listings.mu.Unlock()
	l, ok := f.listings.items[p.ListingID]
	if !ok {
		return models.AgentPayment{}, repo.ErrNotFound
	}
	p.ID = fmt.Sprintf("pay-%d", len(f.payments)+1)
	p.PaidAt = time.Now()
	f.payments = append(f.payments, p)
	l.Status = models.ListingActive
	l.VerificationCode = nil
	return p, nil
}

type fakePurchases struct {
	mu        sync.Mutex
	items     []models.DigitalPurchase
	createErr error
}

func (f *fakePurchases) Create(_ context.Context, p models.DigitalPurchase) (models.DigitalPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.DigitalPurchase{}, f.createErr
	}
	p.ID = fmt.Sprintf("dp-%d", len(f.items)+1)
	p.CreatedAt = time.Now()
	f.items = append(f.items, p)
	return p, nil
}

func (f *fakePurchases) ListByUser(_ context.Context, userID string, _, _ int) ([]models.DigitalPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DigitalPurchase
	for _, p := range f.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeWallets struct {
	mu    sync.Mutex
	items map[string]*models.Wallet
}

func (f *fakeWallets) Deposit(_ context.Context, userID string, amountCents int64, currency string) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.items[userID]
	if !ok {
		w = &models.Wallet{ID: "w-" + userID, UserID: userID, Currency: currency, IsActive: true}
		f.items[userID] = w
	}
	w.BalanceCents += amountCents
	w.TotalDepositsCents += amountCents
	w.LastUpdatedAt = time.Now()
	return *w, nil
}

func (f *fakeWallets) Get(_ context.Context, userID string) (models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.items[userID]
	if !ok {
		return models.Wallet{}, repo.ErrNotFound
	}
	return *w, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (f *fakeAudit) Create(_ context.Context, l models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, l)
	return nil
}

// ---- fixtures ----

type fixtures struct {
	ledger    *fakeLedger
	listings  *fakeListings
	agents    *fakeAgents
	hires     *fakeHires
	purchases *fakePurchases
	wallets   *fakeWallets
	audit     *fakeAudit
	wp        *worker.Pool
}

func newFixtures() *fixtures {
	listings := &fakeListings{items: map[string]*models.Listing{}}
	return &fixtures{
		ledger:    &fakeLedger{},
		listings:  listings,
		agents:    &fakeAgents{items: map[string]*models.Agent{}},
		hires:     &fakeHires{listings: listings},
		purchases: &fakePurchases{},
		wallets:   &fakeWallets{items: map[string]*models.Wallet{}},
		audit:     &fakeAudit{},
		wp:        worker.NewPool(1),
	}
}

func (f *fixtures) service() *ReconcileService {
	return NewReconcileService(f.ledger, f.listings, f.agents, f.hires, f.purchases, f.wallets, f.audit, f.wp)
}

// drain waits for queued secondary effects; no Process calls may follow.
func (f *fixtures) drain() { f.wp.Stop() }

func notif(orderID, paymentID, amount, userID, contextID string) models.Notification {
	return models.Notification{
		MerchantID: "1221149",
		OrderID:    orderID,
		PaymentID:  paymentID,
		Amount:     amount,
		Currency:   "LKR",
		StatusCode: payhere.StatusSuccess,
		UserID:     userID,
		ContextID:  contextID,
	}
}

// ---- tests ----

func TestProcessIgnoresNonSuccessStatus(t *testing.T) {
	f := newFixtures()
	defer f.drain()
	svc := f.service()

	for _, status := range []string{payhere.StatusPending, payhere.StatusCanceled, payhere.StatusFailed, payhere.StatusChargeback} {
		n := notif("ORDER1", "p-"+status, "1000.00", "u1", "wallet_deposit")
		n.StatusCode = status

		out, err := svc.Process(context.Background(), n)
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, out.State)
	}

	assert.Empty(t, f.ledger.rows, "non-success notifications must not be recorded")
	assert.Empty(t, f.wallets.items, "non-success notifications must not mutate")
}

func TestProcessRejectsInvalidAmount(t *testing.T) {
	f := newFixtures()
	defer f.drain()
	svc := f.service()

	for _, amount := range []string{"", "abc", "0", "-100"} {
		_, err := svc.Process(context.Background(), notif("ORDER1", "p1", amount, "u1", "wallet_deposit"))
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %q", amount)
	}
	assert.Empty(t, f.ledger.rows)
}

func TestProcessWalletDeposit(t *testing.T) {
	f := newFixtures()
	svc := f.service()

	out, err := svc.Process(context.Background(), notif("ORDER1", "p1", "1000.00", "u1", "wallet_deposit"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)

	w, err := f.wallets.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), w.BalanceCents)
	assert.Equal(t, int64(100000), w.TotalDepositsCents)

	// second deposit accumulates
	_, err = svc.Process(context.Background(), notif("ORDER2", "p2", "250.00", "u1", "wallet_deposit"))
	require.NoError(t, err)
	f.drain()

	w, err = f.wallets.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(125000), w.BalanceCents)
	assert.Equal(t, int64(125000), w.TotalDepositsCents)

	require.Len(t, f.ledger.rows, 2)
	for _, row := range f.ledger.rows {
		assert.Equal(t, models.TxnCompleted, row.Status)
		assert.Equal(t, payhere.Provider, row.Provider)
	}
}

func TestProcessDuplicateNotification(t *testing.T) {
	f := newFixtures()
	svc := f.service()

	n := notif("ORDER1", "p1", "1000.00", "u1", "wallet_deposit")

	out, err := svc.Process(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)

	out, err = svc.Process(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, out.State)
	f.drain()

	w, _ := f.wallets.Get(context.Background(), "u1")
	assert.Equal(t, int64(100000), w.BalanceCents, "redelivery must not double-apply")
	assert.Len(t, f.ledger.rows, 1)
}

func TestProcessBoost(t *testing.T) {
	tests := []struct {
		amount   string
		wantDays int
	}{
		{amount: "2000.00", wantDays: 30},
		{amount: "1500.00", wantDays: 30},
		{amount: "1000.00", wantDays: 7},
	}

	for _, tt := range tests {
		f := newFixtures()
		f.listings.items["prop1"] = &models.Listing{ID: "prop1", Status: models.ListingActive}
		svc := f.service()

		out, err := svc.Process(context.Background(), notif("BOOST_1699999999999", "p1", tt.amount, "u1", "prop1"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeApplied, out.State)
		f.drain()

		l, err := f.listings.Get(context.Background(), "prop1")
		require.NoError(t, err)
		assert.True(t, l.IsBoosted)
		require.NotNil(t, l.BoostUntil)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, tt.wantDays), *l.BoostUntil, time.Minute,
			"amount %s should boost for %d days", tt.amount, tt.wantDays)
	}
}

func TestProcessVerify(t *testing.T) {
	f := newFixtures()
	f.listings.items["prop1"] = &models.Listing{ID: "prop1", Status: models.ListingActive}
	svc := f.service()

	out, err := svc.Process(context.Background(), notif("VERIFY_1699999999999", "p1", "500.00", "u1", "prop1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)
	f.drain()

	l, _ := f.listings.Get(context.Background(), "prop1")
	assert.True(t, l.VerificationRequested)
	assert.True(t, l.VerificationPaid)
	assert.True(t, l.IsVerified)
}

func TestProcessHire(t *testing.T) {
	f := newFixtures()
	agentID := "ag1"
	code := "SEC123"
	f.listings.items["lst1"] = &models.Listing{
		ID:               "lst1",
		AgentID:          &agentID,
		Status:           models.ListingPending,
		VerificationCode: &code,
	}
	f.agents.items[agentID] = &models.Agent{ID: agentID, UserID: "agent-user"}
	svc := f.service()

	out, err := svc.Process(context.Background(), notif("HIRE_lst1_1699999999999", "p1", "5000.00", "u1", ""))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)
	assert.NoError(t, out.SecondaryErr)
	f.drain()

	require.Len(t, f.hires.payments, 1)
	p := f.hires.payments[0]
	assert.Equal(t, agentID, p.AgentID)
	assert.Equal(t, int64(500000), p.AmountCents)
	assert.Equal(t, int64(100000), p.PlatformFeeCents, "platform fee must be 20%")
	assert.Equal(t, int64(400000), p.AgentShareCents, "agent share must be 80%")

	l, _ := f.listings.Get(context.Background(), "lst1")
	assert.Equal(t, models.ListingActive, l.Status)
	assert.Nil(t, l.VerificationCode)

	a := f.agents.items[agentID]
	assert.Equal(t, int64(400000), a.TotalEarningsCents)
	assert.Equal(t, 1, a.ListingsUploaded)

	require.Len(t, f.ledger.rows, 1)
	assert.Equal(t, models.TxnCompleted, f.ledger.rows[0].Status)
	require.NotNil(t, f.ledger.rows[0].PropertyID)
	assert.Equal(t, "lst1", *f.ledger.rows[0].PropertyID)
}

func TestProcessHireMissingListingFailsPayment(t *testing.T) {
	f := newFixtures()
	svc := f.service()

	_, err := svc.Process(context.Background(), notif("HIRE_ghost_1699999999999", "p1", "5000.00", "u1", ""))
	require.Error(t, err)
	f.drain()

	require.Len(t, f.ledger.rows, 1)
	assert.Equal(t, models.TxnFailed, f.ledger.rows[0].Status)
}

func TestProcessRetriesAfterFailedMutation(t *testing.T) {
	f := newFixtures()
	svc := f.service()

	n := notif("HIRE_lst1_1699999999999", "p1", "5000.00", "u1", "")

	_, err := svc.Process(context.Background(), n)
	require.Error(t, err, "listing missing on first delivery")

	// listing shows up before the gateway redelivers
	f.listings.items["lst1"] = &models.Listing{ID: "lst1", Status: models.ListingPending}

	out, err := svc.Process(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)
	f.drain()

	require.Len(t, f.ledger.rows, 1, "redelivery must reuse the claimed ledger row")
	assert.Equal(t, models.TxnCompleted, f.ledger.rows[0].Status)
	assert.Len(t, f.hires.payments, 1)
}

func TestProcessAgentSubscription(t *testing.T) {
	f := newFixtures()
	f.agents.items["ag1"] = &models.Agent{ID: "ag1", UserID: "u1", Status: models.AgentInactive}
	svc := f.service()

	out, err := svc.Process(context.Background(), notif("AGENT_1699999999999", "p1", "2500.00", "u1", ""))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)
	assert.NoError(t, out.SecondaryErr)
	f.drain()

	a := f.agents.items["ag1"]
	assert.True(t, a.IsVerified)
	assert.Equal(t, models.AgentActive, a.Status)
	require.NotNil(t, a.SubscriptionUntil)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *a.SubscriptionUntil, time.Minute)
}

func TestProcessAgentSubscriptionMissingAgentIsSecondary(t *testing.T) {
	f := newFixtures()
	svc := f.service()

	out, err := svc.Process(context.Background(), notif("AGENT_1699999999999", "p1", "2500.00", "nobody", ""))
	require.NoError(t, err, "missing agent must not fail the payment")
	assert.Equal(t, OutcomeApplied, out.State)
	assert.Error(t, out.SecondaryErr)
	f.drain()

	require.Len(t, f.ledger.rows, 1)
	assert.Equal(t, models.TxnCompleted, f.ledger.rows[0].Status)
}

func TestProcessDigitalPurchase(t *testing.T) {
	f := newFixtures()
	svc := f.service()

	out, err := svc.Process(context.Background(),
		notif("DIGITAL_INVESTMENT_REPORT_prop1_1699999999999", "p1", "750.00", "u1", "prop1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)
	assert.NoError(t, out.SecondaryErr)
	f.drain()

	require.Len(t, f.purchases.items, 1)
	p := f.purchases.items[0]
	assert.Equal(t, "investment_report", p.ProductType)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "prop1", p.PropertyID)
	assert.Equal(t, "p1", p.PaymentID)
	assert.Equal(t, int64(75000), p.AmountCents)
	assert.Equal(t, "completed", p.Status)
}

func TestProcessDigitalPurchaseCreateFailureIsSecondary(t *testing.T) {
	f := newFixtures()
	f.purchases.createErr = fmt.Errorf("write rejected")
	svc := f.service()

	out, err := svc.Process(context.Background(),
		notif("DIGITAL_VALUATION_prop1_1699999999999", "p1", "750.00", "u1", "prop1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)
	assert.Error(t, out.SecondaryErr)
	f.drain()

	require.Len(t, f.ledger.rows, 1)
	assert.Equal(t, models.TxnCompleted, f.ledger.rows[0].Status)
}

func TestProcessUnknownOrderIsRecordedOnly(t *testing.T) {
	f := newFixtures()
	svc := f.service()

	out, err := svc.Process(context.Background(), notif("ORDER12345", "p1", "1000.00", "u1", ""))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out.State)
	f.drain()

	require.Len(t, f.ledger.rows, 1)
	assert.Equal(t, models.TxnCompleted, f.ledger.rows[0].Status)
	assert.Empty(t, f.wallets.items)
	assert.Empty(t, f.hires.payments)
	assert.Empty(t, f.purchases.items)
}

func TestProcessWritesAuditEntries(t *testing.T) {
	f := newFixtures()
	svc := f.service()

	_, err := svc.Process(context.Background(), notif("ORDER1", "p1", "1000.00", "u1", "wallet_deposit"))
	require.NoError(t, err)
	f.drain()

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "payment", f.audit.entries[0].EntityType)
	assert.Equal(t, "applied", f.audit.entries[0].Action)
}
