package user

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/auth"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/httpio"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/validation"
)

// Handler exposes HTTP endpoints for registration, login and the caller's profile.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := validation.Bind(r.Body, &req); err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	out, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	h.logger.Infow("user registered", "username", out.User.Username)
	httpio.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validation.Bind(r.Body, &req); err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	out, err := h.svc.Authenticate(r.Context(), req)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		httpio.WriteError(h.logger, w, r, apperr.NewUnauthorized("Missing or invalid Authorization header"))
		return
	}
	out, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		httpio.WriteError(h.logger, w, r, apperr.NewUnauthorized("Missing or invalid Authorization header"))
		return
	}
	var req UpdateRequest
	if err := validation.Bind(r.Body, &req); err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	out, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		httpio.WriteError(h.logger, w, r, apperr.NewUnauthorized("Missing or invalid Authorization header"))
		return
	}
	out, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	h.logger.Infow("user deleted", "user_id", id)
	httpio.WriteJSON(w, http.StatusOK, out)
}
