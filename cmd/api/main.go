package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/auth"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/config"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/router"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/database"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/utilities"
)

func main() {
	// best effort: a missing .env falls back to the real environment
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service-ledger-go-stdlib", "addr", cfg.HTTPAddr, "jwt_algorithm", cfg.JWTAlgorithm)

	db, err := database.Connect(cfg.Database())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.EnsureSchema(schemaCtx, db)
	cancelSchema()
	if err != nil {
		sugar.Fatalf("ensure schema: %v", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecretKey, cfg.JWTAlgorithm, cfg.TokenTTL())
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.RegisterRoutes(sugar, db, tokens, metrics.New()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for in-flight requests
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	if err := database.Ping(doneCtx, db); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
