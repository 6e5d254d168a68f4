package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/tonpad/deposit-backend/internal/api/httpx"
	"github.com/tonpad/deposit-backend/internal/api/validate"
	"github.com/tonpad/deposit-backend/internal/auth"
	"github.com/tonpad/deposit-backend/internal/config"
	"github.com/tonpad/deposit-backend/internal/metrics"
	"github.com/tonpad/deposit-backend/internal/middleware"
	repo "github.com/tonpad/deposit-backend/internal/repository"
	"github.com/tonpad/deposit-backend/internal/services"
)

func NewRouter(cfg config.Config, rs *services.ReconcileService, rates repo.Rates) http.Handler {
	tm := auth.NewTokenManager(cfg.JWTSecret, 12*time.Hour)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/ton", func(r chi.Router) {
		// submit a deposit intent and run the immediate check
		r.Post("/deposit", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				UserID        string  `json:"user_id"`
				WalletAddress string  `json:"wallet_address"`
				Amount        float64 `json:"amount"`
				IntentID      string  `json:"intent_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
				return
			}

			var errs validate.Errs
			for _, e := range []*validate.ErrField{
				validate.Required("user_id", req.UserID),
				validate.Required("wallet_address", req.WalletAddress),
				validate.Required("intent_id", req.IntentID),
				validate.PositiveAmount("amount", req.Amount),
			} {
				if e != nil {
					errs = append(errs, *e)
				}
			}
			if len(errs) > 0 {
				httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
				return
			}

			status, err := rs.SubmitDeposit(r.Context(), req.UserID, req.WalletAddress, req.Amount, req.IntentID)
			if err != nil {
				if services.IsUpstreamUnavailable(err) {
					httpx.WriteError(w, http.StatusInternalServerError, "upstream_unavailable",
						"could not reach the ledger, deposit left pending", nil)
					return
				}
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "deposit check failed", nil)
				return
			}

			msg := "transaction not found yet, will be re-checked later"
			if status == "success" {
				msg = "balance credited"
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]string{
				"status":  string(status),
				"message": msg,
			})
		})

		// poll an intent's status
		r.Get("/deposit/{intentID}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "intentID")
			if e := validate.Required("intent_id", id); e != nil {
				httpx.WriteError(w, http.StatusBadRequest, "validation_failed", e.Msg, nil)
				return
			}
			status, err := rs.Status(r.Context(), id)
			if err != nil {
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "status lookup failed", nil)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
		})

		// current TON balance
		r.Get("/balance", func(w http.ResponseWriter, r *http.Request) {
			uid := r.URL.Query().Get("user_id")
			if e := validate.Required("user_id", uid); e != nil {
				httpx.WriteError(w, http.StatusBadRequest, "validation_failed", e.Msg, nil)
				return
			}
			b, err := rs.Balance(r.Context(), uid)
			if err != nil {
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "balance lookup failed", nil)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, b)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Password string `json:"password"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "password required", nil)
				return
			}
			if cfg.AdminPasswordHash == "" {
				httpx.WriteError(w, http.StatusForbidden, "admin_disabled", "admin access is not configured", nil)
				return
			}
			if err := auth.VerifyPassword(req.Password, cfg.AdminPasswordHash); err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
				return
			}
			token, exp, err := tm.Generate("admin")
			if err != nil {
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token issue failed", nil)
				return
			}
			httpx.WriteJSON(w, http.StatusOK, map[string]any{"token": token, "expires_at": exp})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(tm))

			// stuck-intent triage: intents still pending, oldest first
			r.Get("/intents", func(w http.ResponseWriter, r *http.Request) {
				limit := 100
				if v := r.URL.Query().Get("limit"); v != "" {
					if n, err := strconv.Atoi(v); err == nil && n > 0 {
						limit = n
					}
				}
				intents, err := rs.PendingIntents(r.Context(), limit)
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "listing failed", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, intents)
			})

			// latest stored TON/USD rate snapshot
			r.Get("/rate", func(w http.ResponseWriter, r *http.Request) {
				rate, err := rates.Latest(r.Context(), services.Currency)
				if errors.Is(err, repo.ErrNotFound) {
					httpx.WriteError(w, http.StatusNotFound, "not_found", "no rate stored yet", nil)
					return
				}
				if err != nil {
					httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "rate lookup failed", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, rate)
			})
		})
	})

	return r
}
