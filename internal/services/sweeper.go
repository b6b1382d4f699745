package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/landsalelk/payments-backend/internal/metrics"
	repo "github.com/landsalelk/payments-backend/internal/repository"
)

// Sweeper periodically expires paid-for state that has run out: boost
// windows on listings and agent subscriptions.
type Sweeper struct {
	listings repo.Listings
	agents   repo.Agents
	interval time.Duration
}

func NewSweeper(listings repo.Listings, agents repo.Agents, interval time.Duration) *Sweeper {
	return &Sweeper{listings: listings, agents: agents, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now()

	boosts, err := s.listings.ExpireBoosts(ctx, now)
	if err != nil {
		slog.Error("boost expiry sweep", "err", err)
	} else if boosts > 0 {
		metrics.SweptRecords.WithLabelValues("boost").Add(float64(boosts))
		slog.Info("expired listing boosts", "count", boosts)
	}

	subs, err := s.agents.ExpireSubscriptions(ctx, now)
	if err != nil {
		slog.Error("subscription expiry sweep", "err", err)
	} else if subs > 0 {
		metrics.SweptRecords.WithLabelValues("subscription").Add(float64(subs))
		slog.Info("expired agent subscriptions", "count", subs)
	}
}
