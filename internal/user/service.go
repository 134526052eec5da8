package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/auth"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/validation"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/database"
)

// Repository is the storage the account flows need. *userrepo.UserRepo implements it.
type Repository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, id int64, changes []database.Assignment) (*entity.User, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// TokenIssuer is satisfied by *auth.TokenService.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

var (
	errUserNotFound       = apperr.NewNotFound("User not found")
	errInvalidCredentials = apperr.NewUnauthorized("Invalid credentials")
	errNoData             = apperr.NewBadRequest("No data provided")
	errPasswordTooLong    = apperr.Invalid([]apperr.FieldError{{Loc: []string{"password"}, Msg: "String should have at most 72 bytes"}})
)

// UserService orchestrates registration, login and profile flows.
type UserService struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sqlx.DB, r Repository, hasher auth.PasswordHasher, tokens TokenIssuer) *UserService {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = auth.BcryptHasher{Cost: 12}
	}
	return &UserService{repo: r, hasher: hasher, tokens: tokens}
}

func (s *UserService) hash(pw string) (string, error) {
	h, err := s.hasher.Hash(pw)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", errPasswordTooLong
		}
		return "", apperr.NewInternal(fmt.Errorf("hash password: %w", err))
	}
	return h, nil
}

// storageError maps a repository error; sql.ErrNoRows becomes notFound.
func storageError(err error, notFound *apperr.Error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return apperr.FromStorage(err)
}

// Register creates an account. A duplicate email is a Conflict.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	h, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, req.Username, req.Email, h)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	out := &RegisterResponse{
		Message: "User registered successfully",
		User:    UserResponse{Username: u.Username, Email: u.Email},
	}
	if err := validation.Output(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Authenticate checks credentials and issues an access token. Unknown email
// and wrong password fail the same way, after the same amount of hashing work.
func (s *UserService) Authenticate(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.hasher.Verify(s.dummy(), req.Password)
			return nil, errInvalidCredentials
		}
		return nil, apperr.FromStorage(err)
	}
	if !s.hasher.Verify(u.PasswordHash, req.Password) {
		return nil, errInvalidCredentials
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}
	out := &TokenResponse{AccessToken: tok, TokenType: "Bearer"}
	if err := validation.Output(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyHash
}

// Get returns the profile of userID.
func (s *UserService) Get(ctx context.Context, userID int64) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, storageError(err, errUserNotFound)
	}
	out := &UserResponse{Username: u.Username, Email: u.Email}
	if err := validation.Output(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the fields present in req. A new password is always
// re-hashed; null values are passed to storage as NULL.
func (s *UserService) Update(ctx context.Context, userID int64, req UpdateRequest) (*UpdateResponse, error) {
	if req.Empty() {
		return nil, errNoData
	}
	var changes []database.Assignment
	if req.Username.Present {
		changes = append(changes, database.Assignment{Column: "username", Value: req.Username.Any()})
	}
	if req.Email.Present {
		changes = append(changes, database.Assignment{Column: "email", Value: req.Email.Any()})
	}
	if req.Password.Present {
		var hash any
		if req.Password.HasValue() {
			h, err := s.hash(req.Password.Value)
			if err != nil {
				return nil, err
			}
			hash = h
		}
		changes = append(changes, database.Assignment{Column: "password_hash", Value: hash})
	}
	u, err := s.repo.Update(ctx, userID, changes)
	if err != nil {
		return nil, storageError(err, errUserNotFound)
	}
	out := &UpdateResponse{Username: u.Username, Email: u.Email, Password: MaskedPassword}
	if err := validation.Output(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the account and everything it owns.
func (s *UserService) Delete(ctx context.Context, userID int64) (*DeleteResponse, error) {
	username, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return nil, storageError(err, errUserNotFound)
	}
	out := &DeleteResponse{Message: fmt.Sprintf("User %s, was deleted successfully!", username)}
	if err := validation.Output(out); err != nil {
		return nil, err
	}
	return out, nil
}
