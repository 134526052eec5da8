package transaction

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/auth"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/httpio"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/validation"
)

// Handler exposes the caller's transactions over HTTP. Routes are expected
// to sit behind auth.RequireAuth.
type Handler struct {
	svc    *TransactionService
	logger *zap.SugaredLogger
}

func NewHandler(svc *TransactionService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// pathID reads the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperr.Invalid([]apperr.FieldError{{
			Loc: []string{"id"},
			Msg: "Input should be a valid integer",
		}})
	}
	if id < 1 {
		return 0, apperr.Invalid([]apperr.FieldError{{
			Loc: []string{"id"},
			Msg: "Input should be greater than or equal to 1",
		}})
	}
	return id, nil
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		httpio.WriteError(h.logger, w, r, apperr.NewUnauthorized("Missing or invalid Authorization header"))
	}
	return id, ok
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req CreateRequest
	if err := validation.Bind(r.Body, &req); err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	out, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	h.logger.Infow("transaction created", "user_id", userID, "id", out.ID)
	httpio.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	out, err := h.svc.List(r.Context(), userID)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	out, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	var req UpdateRequest
	if err := validation.Bind(r.Body, &req); err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	out, err := h.svc.Update(r.Context(), userID, id, req)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	out, err := h.svc.Delete(r.Context(), userID, id)
	if err != nil {
		httpio.WriteError(h.logger, w, r, err)
		return
	}
	h.logger.Infow("transaction deleted", "user_id", userID, "id", id)
	httpio.WriteJSON(w, http.StatusOK, out)
}
