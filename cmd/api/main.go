package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/landsalelk/payments-backend/internal/api"
	"github.com/landsalelk/payments-backend/internal/auth"
	"github.com/landsalelk/payments-backend/internal/config"
	"github.com/landsalelk/payments-backend/internal/db"
	"github.com/landsalelk/payments-backend/internal/logger"
	"github.com/landsalelk/payments-backend/internal/metrics"
	"github.com/landsalelk/payments-backend/internal/repository/postgres"
	"github.com/landsalelk/payments-backend/internal/services"
	"github.com/landsalelk/payments-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, 15*time.Minute, 7*24*time.Hour)

	reconcileSvc := services.NewReconcileService(
		repos.Transactions,
		repos.Listings,
		repos.Agents,
		repos.AgentPayments,
		repos.Purchases,
		repos.Wallets,
		repos.AuditLogs,
		wp,
	)
	ledgerSvc := services.NewLedgerService(repos.Transactions, repos.Wallets, repos.Listings, repos.Purchases)
	userSvc := services.NewUserService(repos.Users)
	if err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Error("admin bootstrap", "err", err)
		os.Exit(1)
	}

	sweeper := services.NewSweeper(repos.Listings, repos.Agents, cfg.SweepInterval)
	go sweeper.Run(ctx)

	metrics.Init()
	r := api.NewRouter(cfg, tm, reconcileSvc, ledgerSvc, userSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
