package auth

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func newTestTokens(t *testing.T, opts ...Option) *TokenService {
	t.Helper()
	s, err := NewTokenService(testSecret, "HS256", time.Hour, opts...)
	require.NoError(t, err)
	return s
}

func TestNewTokenServiceRejectsBadSettings(t *testing.T) {
	_, err := NewTokenService("", "HS256", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenService(testSecret, "RS256", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenService(testSecret, "none", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenService(testSecret, "HS256", 0)
	assert.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			s, err := NewTokenService(testSecret, alg, time.Minute)
			require.NoError(t, err)
			tok, err := s.Issue(42)
			require.NoError(t, err)
			id, err := s.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, int64(42), id)
		})
	}
}

func TestIssuedClaims(t *testing.T) {
	now := time.Date(2025, 9, 25, 12, 0, 0, 0, time.UTC)
	s := newTestTokens(t, WithClock(fixedClock(now)))
	tok, err := s.Issue(7)
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(tok, &claims)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyExpired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	tok, err := newTestTokens(t, WithClock(fixedClock(issued))).Issue(1)
	require.NoError(t, err)

	_, err = newTestTokens(t).Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

// signRaw signs a literal JSON payload so number forms reach the verifier
// exactly as written.
func signRaw(t *testing.T, payload string) string {
	t.Helper()
	enc := base64.RawURLEncoding
	signing := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + enc.EncodeToString([]byte(payload))
	sig, err := jwt.SigningMethodHS256.Sign(signing, []byte(testSecret))
	require.NoError(t, err)
	return signing + "." + enc.EncodeToString(sig)
}

func TestVerifyAcceptsNumericSubject(t *testing.T) {
	s := newTestTokens(t)
	exp := time.Now().Add(time.Hour).Unix()

	tok := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": 5, "exp": exp})
	id, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	id, err = s.Verify(signRaw(t, `{"sub":"6","exp":"`+strconv.FormatInt(exp, 10)+`"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(6), id)
}

func TestVerifyFractionalExpIsNotExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour).Unix()
	_, err := newTestTokens(t).Verify(signRaw(t, `{"sub":"3","exp":`+strconv.FormatInt(past, 10)+`.5}`))
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyInvalid(t *testing.T) {
	s := newTestTokens(t)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	good, err := s.Issue(3)
	require.NoError(t, err)
	other, err := s.Issue(4)
	require.NoError(t, err)
	g, o := strings.Split(good, "."), strings.Split(other, ".")

	tests := map[string]string{
		"garbage":          "not-a-token",
		"empty":            "",
		"swapped payload":  g[0] + "." + o[1] + "." + g[2],
		"wrong secret":     sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "3", ExpiresAt: exp}),
		"other hmac alg":   sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.RegisteredClaims{Subject: "3", ExpiresAt: exp}),
		"unsigned":         sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.RegisteredClaims{Subject: "3", ExpiresAt: exp}),
		"missing exp":      sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "3"}),
		"missing sub":      sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{ExpiresAt: exp}),
		"non integer sub":  sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "abc", ExpiresAt: exp}),
		"non positive sub": sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "0", ExpiresAt: exp}),
		"string exp":       sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "3", "exp": "tomorrow"}),
		"fractional exp":   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "3", "exp": float64(exp.Unix()) + 0.5}),
		"exponent exp":     signRaw(t, `{"sub":"3","exp":1.9e10}`),
		"fractional sub":   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": 3.5, "exp": exp.Unix()}),
		"boolean sub":      sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": true, "exp": exp.Unix()}),
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, h.Verify(hash, "password123"))
	assert.False(t, h.Verify(hash, "password124"))
	assert.False(t, h.Verify("not-a-hash", "password123"))

	_, err = h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

type stubVerifier struct {
	id  int64
	err error
	got string
}

func (s *stubVerifier) Verify(token string) (int64, error) {
	s.got = token
	return s.id, s.err
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier *stubVerifier
		status   int
		body     string
	}{
		{"missing header", "", &stubVerifier{id: 1}, http.StatusUnauthorized, `{"error":"Missing or invalid Authorization header"}`},
		{"wrong scheme", "Bearerrrr tok", &stubVerifier{id: 1}, http.StatusUnauthorized, `{"error":"Missing or invalid Authorization header"}`},
		{"lowercase scheme", "bearer tok", &stubVerifier{id: 1}, http.StatusUnauthorized, `{"error":"Missing or invalid Authorization header"}`},
		{"no token", "Bearer", &stubVerifier{id: 1}, http.StatusUnauthorized, `{"error":"Missing or invalid Authorization header"}`},
		{"extra parts", "Bearer a b", &stubVerifier{id: 1}, http.StatusUnauthorized, `{"error":"Missing or invalid Authorization header"}`},
		{"expired", "Bearer tok", &stubVerifier{err: ErrExpiredToken}, http.StatusUnauthorized, `{"error":"Invalid or expired token"}`},
		{"invalid", "Bearer tok", &stubVerifier{err: ErrInvalidToken}, http.StatusUnauthorized, `{"error":"Invalid or expired token"}`},
		{"ok", "Bearer tok", &stubVerifier{id: 9}, http.StatusOK, `{"user_id":9}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := UserID(r.Context())
				require.True(t, ok)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"user_id":` + strconv.FormatInt(id, 10) + `}`))
			})
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			RequireAuth(tt.verifier, zap.NewNop().Sugar())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, "tok", tt.verifier.got)
			}
		})
	}
}

func TestRequireAuthWithRealTokens(t *testing.T) {
	s := newTestTokens(t)
	tok, err := s.Issue(5)
	require.NoError(t, err)

	var seen int64
	h := RequireAuth(s, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, int64(5), seen)
}

func TestUserIDAbsent(t *testing.T) {
	_, ok := UserID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
