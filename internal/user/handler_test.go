package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/auth"
)

func newTestHandler() (*Handler, *memRepo) {
	repo := newMemRepo()
	svc := NewUserService(nil, repo, &fakeHasher{}, fakeIssuer{})
	return NewHandler(svc, zap.NewNop().Sugar()), repo
}

func do(h http.HandlerFunc, method, path, body string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterHandler(t *testing.T) {
	h, _ := newTestHandler()

	rec := do(h.Register, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"password123"}`, 0)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"User registered successfully","user":{"username":"alice","email":"alice@example.com"}}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = do(h.Register, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"password123"}`, 0)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Resource already exists"}`, rec.Body.String())
}

func TestRegisterHandlerValidation(t *testing.T) {
	h, _ := newTestHandler()
	rec := do(h.Register, http.MethodPost, "/auth/register", `{"username":"al","email":"bad","password":"password123"}`, 0)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":[
		{"loc":["username"],"msg":"String should have at least 3 characters"},
		{"loc":["email"],"msg":"value is not a valid email address"}
	]}`, rec.Body.String())
}

func TestLoginHandler(t *testing.T) {
	h, _ := newTestHandler()
	do(h.Register, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"password123"}`, 0)

	rec := do(h.Login, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"password123"}`, 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"access_token":"token-for-1","token_type":"Bearer"}`, rec.Body.String())

	rec = do(h.Login, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrongpassword"}`, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())

	rec = do(h.Login, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"password123"}`, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
}

func TestMeHandlers(t *testing.T) {
	h, _ := newTestHandler()
	do(h.Register, http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"password123"}`, 0)
	do(h.Register, http.MethodPost, "/auth/register", `{"username":"bob","email":"bob@example.com","password":"password123"}`, 0)

	rec := do(h.Me, http.MethodGet, "/me", "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"alice","email":"alice@example.com"}`, rec.Body.String())

	rec = do(h.UpdateMe, http.MethodPatch, "/me", `{}`, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No data provided"}`, rec.Body.String())

	rec = do(h.UpdateMe, http.MethodPatch, "/me", `{"email":"bob@example.com"}`, 1)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(h.UpdateMe, http.MethodPatch, "/me", `{"username":"alicia","password":"newpassword1"}`, 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"alicia","email":"alice@example.com","password":"********"}`, rec.Body.String())

	rec = do(h.UpdateMe, http.MethodPatch, "/me", `{"username":null}`, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"A required field is missing"}`, rec.Body.String())

	rec = do(h.DeleteMe, http.MethodDelete, "/me", "", 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"User alicia, was deleted successfully!"}`, rec.Body.String())

	rec = do(h.Me, http.MethodGet, "/me", "", 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
}

func TestMeWithoutIdentity(t *testing.T) {
	h, _ := newTestHandler()
	rec := do(h.Me, http.MethodGet, "/me", "", 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
