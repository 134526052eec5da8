package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/transaction/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/validation"
)

type CreateRequest struct {
	Kind            string                               `json:"kind" validate:"required,oneof=expense income"`
	TransactionDate string                               `json:"transaction_date" validate:"required,isodate"`
	Amount          validation.Optional[decimal.Decimal] `json:"amount" validate:"required,money"`
	Description     string                               `json:"description" validate:"required,min=1,max=255"`
}

// UpdateRequest is a partial update; only fields present in the payload are applied.
type UpdateRequest struct {
	Kind            validation.Optional[string]          `json:"kind" validate:"oneof=expense income"`
	TransactionDate validation.Optional[string]          `json:"transaction_date" validate:"isodate"`
	Amount          validation.Optional[decimal.Decimal] `json:"amount" validate:"money"`
	Description     validation.Optional[string]          `json:"description" validate:"min=1,max=255"`
}

func (u UpdateRequest) Empty() bool {
	return !u.Kind.Present && !u.TransactionDate.Present && !u.Amount.Present && !u.Description.Present
}

// Response is the client view of a transaction: dates as YYYY-MM-DD and
// amounts with exactly two fractional digits.
type Response struct {
	ID              int64  `json:"id" validate:"gte=1"`
	Kind            string `json:"kind" validate:"oneof=expense income"`
	TransactionDate string `json:"transaction_date" validate:"isodate"`
	Amount          string `json:"amount" validate:"money"`
	Description     string `json:"description" validate:"min=1,max=255"`
}

type ListResponse struct {
	Transactions []Response `json:"transactions" validate:"dive"`
}

type DeleteResponse struct {
	Message string `json:"message" validate:"required"`
}

func toResponse(t *entity.Transaction) Response {
	return Response{
		ID:              t.ID,
		Kind:            t.Kind,
		TransactionDate: t.TransactionDate.Format(validation.DateLayout),
		Amount:          t.Amount.StringFixed(2),
		Description:     t.Description,
	}
}
