// Package httpio holds the JSON response helpers shared by every handler.
package httpio

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/apperr"
)

const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id attached by the logging middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error any `json:"error"`
}

// WriteError renders err as {"error": ...}. Internal errors are logged with
// their cause and rendered with the generic message only.
func WriteError(logger *zap.SugaredLogger, w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	status := e.Status()
	if e.Kind == apperr.Internal {
		if logger != nil {
			logger.Errorw("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", RequestID(r.Context()),
				"err", err,
			)
		}
		WriteJSON(w, status, errorBody{Error: apperr.InternalMessage})
		return
	}
	if logger != nil {
		logger.Debugw("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"kind", e.Kind.String(),
			"err", err,
		)
	}
	if len(e.Fields) > 0 {
		WriteJSON(w, status, errorBody{Error: e.Fields})
		return
	}
	WriteJSON(w, status, errorBody{Error: e.Message})
}
