package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paltabank/bank-api/internal/api"
	"github.com/paltabank/bank-api/internal/auth"
	"github.com/paltabank/bank-api/internal/config"
	"github.com/paltabank/bank-api/internal/db"
	"github.com/paltabank/bank-api/internal/logger"
	"github.com/paltabank/bank-api/internal/metrics"
	"github.com/paltabank/bank-api/internal/repository/postgres"
	"github.com/paltabank/bank-api/internal/services"
	"github.com/paltabank/bank-api/internal/worker"
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

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tokens := auth.NewTokenProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	creds := auth.NewCredentialStore(repos.Users)

	accountSvc := services.NewAccountService(creds, tokens, repos.RefreshTokens, repos.Users, repos.Balances)
	balanceSvc := services.NewBalanceService(repos.Balances)
	txnSvc := services.NewTransactionService(repos.Balances, repos.AuditLogs, wp)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:        cfg,
		Tokens:     tokens,
		AccountSvc: accountSvc,
		BalanceSvc: balanceSvc,
		TxnSvc:     txnSvc,
	})

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
