package user

import (
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/validation"
)

// MaskedPassword is rendered in place of the password after a profile update.
const MaskedPassword = "********"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateRequest is a partial profile update; only fields present in the
// payload are applied.
type UpdateRequest struct {
	Username validation.Optional[string] `json:"username" validate:"min=3,max=50"`
	Email    validation.Optional[string] `json:"email" validate:"email"`
	Password validation.Optional[string] `json:"password" validate:"min=8"`
}

func (u UpdateRequest) Empty() bool {
	return !u.Username.Present && !u.Email.Present && !u.Password.Present
}

type UserResponse struct {
	Username string `json:"username" validate:"min=3,max=50"`
	Email    string `json:"email" validate:"email"`
}

type RegisterResponse struct {
	Message string       `json:"message" validate:"eq=User registered successfully"`
	User    UserResponse `json:"user"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token" validate:"required"`
	TokenType   string `json:"token_type" validate:"eq=Bearer"`
}

type UpdateResponse struct {
	Username string `json:"username" validate:"min=3,max=50"`
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"eq=********"`
}

type DeleteResponse struct {
	Message string `json:"message" validate:"required"`
}
