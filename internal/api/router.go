package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/paltabank/bank-api/internal/api/handlers"
	"github.com/paltabank/bank-api/internal/auth"
	"github.com/paltabank/bank-api/internal/config"
	"github.com/paltabank/bank-api/internal/metrics"
	"github.com/paltabank/bank-api/internal/middleware"
	"github.com/paltabank/bank-api/internal/models"
	"github.com/paltabank/bank-api/internal/services"
)

type RouterDeps struct {
	Cfg        config.Config
	Tokens     *auth.TokenProvider
	AccountSvc *services.AccountService
	BalanceSvc *services.BalanceService
	TxnSvc     *services.TransactionService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	r.Use(middleware.HTTPMetrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authn := middleware.NewAuthMiddleware(d.Tokens)
	authH := handlers.NewAuthHandler(d.AccountSvc, d.Cfg.Env)
	accountsH := handlers.NewAccountsHandler(d.AccountSvc, d.BalanceSvc)
	txnsH := handlers.NewTransactionsHandler(d.TxnSvc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", authH.Signup)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authn.Auth)

			r.Get("/accounts/{id}", accountsH.Get)
			r.With(middleware.RequireRole(models.RoleAdmin)).Get("/accounts", accountsH.List)
			r.Get("/balances/current", accountsH.CurrentBalance)

			r.Post("/transactions/deposit", txnsH.Deposit)
			r.Post("/transactions/withdraw", txnsH.Withdraw)
			r.Post("/transactions/transfer", txnsH.Transfer)
		})
	})

	return r
}
