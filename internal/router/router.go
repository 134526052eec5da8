package router

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/auth"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/transaction"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/user"
)

// Pinger reports database reachability for the health route.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type middleware func(http.Handler) http.Handler

// chain applies guards so that the first one runs first.
func chain(h http.HandlerFunc, guards ...middleware) http.Handler {
	var out http.Handler = h
	for i := len(guards) - 1; i >= 0; i-- {
		out = guards[i](out)
	}
	return out
}

func health(db Pinger, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warnw("health check failed", "err", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// RegisterRoutes mounts every endpoint on a standard library ServeMux. The
// payload gate runs for every request ahead of routing, so it always
// precedes the auth gate.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, tokens *auth.TokenService, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	users := user.NewHandler(user.NewUserService(db, nil, nil, tokens), logger)
	txs := transaction.NewHandler(transaction.NewTransactionService(db, nil), logger)

	authed := auth.RequireAuth(tokens, logger)

	mux.HandleFunc("GET /health", health(db, logger))
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("POST /auth/register", users.Register)
	mux.HandleFunc("POST /auth/login", users.Login)

	mux.Handle("GET /me", chain(users.Me, authed))
	mux.Handle("PATCH /me", chain(users.UpdateMe, authed))
	mux.Handle("DELETE /me", chain(users.DeleteMe, authed))

	for _, p := range []string{"/transactions", "/transactions/{$}"} {
		mux.Handle("GET "+p, chain(txs.List, authed))
		mux.Handle("POST "+p, chain(txs.Create, authed))
	}
	mux.Handle("GET /transactions/{id}", chain(txs.Get, authed))
	mux.Handle("PATCH /transactions/{id}", chain(txs.Update, authed))
	mux.Handle("DELETE /transactions/{id}", chain(txs.Delete, authed))

	return chain(jsonFallback(mux).ServeHTTP,
		RecoverMiddleware(logger),
		LoggingMiddleware(logger),
		SecurityHeadersMiddleware(),
		m.Instrument,
		RequireJSON(logger),
	)
}
