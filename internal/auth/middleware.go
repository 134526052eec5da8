package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/httpio"
)

type ctxKey int

const userIDKey ctxKey = iota

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID returns the authenticated user id. ok is false outside RequireAuth.
func UserID(ctx context.Context) (id int64, ok bool) {
	id, ok = ctx.Value(userIDKey).(int64)
	return id, ok
}

const (
	msgBadHeader    = "Missing or invalid Authorization header"
	msgInvalidToken = "Invalid or expired token"
)

// Verifier is the part of TokenService the gate needs.
type Verifier interface {
	Verify(token string) (int64, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <token>"
// header and stores the token subject in the request context.
func RequireAuth(v Verifier, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httpio.WriteError(logger, w, r, apperr.NewUnauthorized(msgBadHeader))
				return
			}
			id, err := v.Verify(token)
			if err != nil {
				httpio.WriteError(logger, w, r, apperr.Wrap(apperr.Unauthorized, msgInvalidToken, err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
