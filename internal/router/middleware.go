package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/httpio"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/utilities"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	if lrw.status == 0 {
		lrw.status = code
	}
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware tags every request with an X-Request-ID and logs it at
// debug level once the response is written.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(httpio.RequestIDHeader)
			if id == "" {
				id = utilities.NewRequestID()
			}
			w.Header().Set(httpio.RequestIDHeader, id)
			r = r.WithContext(httpio.WithRequestID(r.Context(), id))

			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)

			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", id,
			)
		})
	}
}

// RecoverMiddleware turns a handler panic into a logged Internal error.
func RecoverMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				httpio.WriteError(logger, w, r, apperr.NewInternal(fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer-when-downgrade")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if h.Get("Content-Security-Policy") == "" {
				h.Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only makes sense over TLS
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireJSON is the payload gate for POST, PUT and PATCH: the request must
// declare a JSON media type and carry a JSON body other than null. The body
// is restored for the handler.
func RequireJSON(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || !isJSONMediaType(mt) {
				httpio.WriteError(logger, w, r, apperr.NewUnsupportedMediaType("Content-Type must be application/json"))
				return
			}
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpio.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Request body too large"})
				return
			}
			if err != nil || !json.Valid(body) || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
				httpio.WriteError(logger, w, r, apperr.NewUnsupportedMediaType("Request body must contain valid JSON"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// isJSONMediaType accepts application/json and structured-syntax suffixes
// such as application/merge-patch+json.
func isJSONMediaType(mt string) bool {
	return mt == "application/json" ||
		(strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}

// fallbackWriter swallows the plain-text bodies ServeMux writes for
// unmatched requests.
type fallbackWriter struct {
	http.ResponseWriter
	status int
}

func (f *fallbackWriter) WriteHeader(code int) {
	if f.status == 0 {
		f.status = code
	}
}

func (f *fallbackWriter) Write(b []byte) (int, error) { return len(b), nil }

// jsonFallback renders the mux's own 404 and 405 responses as JSON.
func jsonFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}
		fw := &fallbackWriter{ResponseWriter: w}
		mux.ServeHTTP(fw, r)
		if fw.status == http.StatusMethodNotAllowed {
			httpio.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
			return
		}
		httpio.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
}
