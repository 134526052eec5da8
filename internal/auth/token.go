package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/utilities"
)

var (
	ErrExpiredToken = errors.New("expired token")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenService issues and verifies HMAC-signed access tokens. It keeps no
// session state, so a token stays valid until it expires.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*TokenService)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret, algorithm string, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported token algorithm %q", algorithm)
	}
	s := &TokenService{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Issue returns a signed token whose subject is userID.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        utilities.NewTokenID(),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// accessClaims reads sub and exp as JSON numbers so that both the string
// subject Issue writes and a bare integer subject are accepted. Neither may
// carry a fraction or exponent.
type accessClaims struct {
	Sub json.Number `json:"sub"`
	Exp json.Number `json:"exp"`
}

func (c accessClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.Exp == "" {
		return nil, nil
	}
	sec, err := strconv.ParseInt(string(c.Exp), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("exp %q is not an integer", c.Exp)
	}
	return jwt.NewNumericDate(time.Unix(sec, 0)), nil
}

func (c accessClaims) GetIssuedAt() (*jwt.NumericDate, error) { return nil, nil }
func (c accessClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c accessClaims) GetIssuer() (string, error) { return "", nil }
func (c accessClaims) GetSubject() (string, error) { return string(c.Sub), nil }
func (c accessClaims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// Verify checks the signature and expiry of token and returns its subject.
// Expiry yields ErrExpiredToken; every other failure yields ErrInvalidToken.
func (s *TokenService) Verify(token string) (int64, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(string(claims.Sub), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, claims.Sub)
	}
	return id, nil
}
