package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/landsalelk/payments-backend/internal/api/handlers"
	"github.com/landsalelk/payments-backend/internal/api/httpx"
	"github.com/landsalelk/payments-backend/internal/auth"
	"github.com/landsalelk/payments-backend/internal/config"
	"github.com/landsalelk/payments-backend/internal/middleware"
	repo "github.com/landsalelk/payments-backend/internal/repository"
	"github.com/landsalelk/payments-backend/internal/services"
)

func NewRouter(cfg config.Config, tm *auth.TokenManager, reconcileSvc *services.ReconcileService, ledgerSvc *services.LedgerService, userSvc *services.UserService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	notifyH := handlers.NewNotifyHandler(reconcileSvc, cfg.MerchantID, cfg.MerchantSecret)
	authH := handlers.NewAuthHandler(tm, userSvc)
	authMW := middleware.NewAuthMiddleware(tm)

	r.Route("/api/v1", func(r chi.Router) {
		// gateway-facing, unauthenticated (signature-verified instead)
		r.Post("/payments/notify", notifyH.Notify)

		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// admin read surface
		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth, middleware.RequireRole("admin"))

			// further operator accounts; the first one is seeded at startup
			r.Post("/auth/register", authH.Register)

			r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
				u, err := userSvc.Get(r.Context(), chi.URLParam(r, "id"))
				if err != nil {
					writeLookupErr(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, u)
			})

			r.Get("/transactions", func(w http.ResponseWriter, r *http.Request) {
				uid := r.URL.Query().Get("user_id")
				if uid == "" {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "user_id required", nil)
					return
				}
				limit, offset := pagination(r)
				txs, err := ledgerSvc.TransactionsByUser(r.Context(), uid, limit, offset)
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, txs)
			})

			r.Get("/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
				tx, err := ledgerSvc.Transaction(r.Context(), chi.URLParam(r, "id"))
				if err != nil {
					writeLookupErr(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, tx)
			})

			r.Get("/wallets/{userID}", func(w http.ResponseWriter, r *http.Request) {
				wallet, err := ledgerSvc.Wallet(r.Context(), chi.URLParam(r, "userID"))
				if err != nil {
					writeLookupErr(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, wallet)
			})

			r.Get("/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
				l, err := ledgerSvc.Listing(r.Context(), chi.URLParam(r, "id"))
				if err != nil {
					writeLookupErr(w, err)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, l)
			})

			r.Get("/purchases", func(w http.ResponseWriter, r *http.Request) {
				uid := r.URL.Query().Get("user_id")
				if uid == "" {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "user_id required", nil)
					return
				}
				limit, offset := pagination(r)
				ps, err := ledgerSvc.PurchasesByUser(r.Context(), uid, limit, offset)
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, ps)
			})
		})
	})

	return r
}

func pagination(r *http.Request) (limit, offset int) {
	limit, offset = 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func writeLookupErr(w http.ResponseWriter, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
		return
	}
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", err.Error(), nil)
}
