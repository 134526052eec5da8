package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/transaction/entity"
	txrepo "github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/transaction/repo"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/validation"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/database"
)

// Repository is the owner-scoped storage the service needs. *txrepo.TransactionRepo implements it.
type Repository interface {
	Create(ctx context.Context, t *entity.Transaction) (*entity.Transaction, error)
	Get(ctx context.Context, userID, id int64) (*entity.Transaction, error)
	List(ctx context.Context, userID int64) ([]entity.Transaction, error)
	Update(ctx context.Context, userID, id int64, changes []database.Assignment) (*entity.Transaction, error)
	Delete(ctx context.Context, userID, id int64) (int64, error)
}

var (
	errNotFound = apperr.NewNotFound("Transaction not found")
	errNoData   = apperr.NewBadRequest("No data provided")
)

type TransactionService struct {
	repo Repository
}

func NewTransactionService(db *sqlx.DB, r Repository) *TransactionService {
	if r == nil {
		r = txrepo.NewTransactionRepo(db)
	}
	return &TransactionService{repo: r}
}

func storageError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errNotFound
	}
	return apperr.FromStorage(err)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(validation.DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Invalid([]apperr.FieldError{{
			Loc: []string{"transaction_date"},
			Msg: "Input should be a valid date in YYYY-MM-DD format",
		}})
	}
	return d, nil
}

func respond(t *entity.Transaction) (*Response, error) {
	out := toResponse(t)
	if err := validation.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create records a transaction for userID. If the user no longer exists the
// foreign key fails and the caller gets NotFound.
func (s *TransactionService) Create(ctx context.Context, userID int64, req CreateRequest) (*Response, error) {
	date, err := parseDate(req.TransactionDate)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.Create(ctx, &entity.Transaction{
		UserID:          userID,
		Kind:            req.Kind,
		TransactionDate: date,
		Amount:          req.Amount.Value,
		Description:     req.Description,
	})
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return respond(t)
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (*Response, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, storageError(err)
	}
	return respond(t)
}

// List returns every transaction of userID. A user that no longer exists
// simply has none.
func (s *TransactionService) List(ctx context.Context, userID int64) (*ListResponse, error) {
	rows, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	out := &ListResponse{Transactions: make([]Response, 0, len(rows))}
	for i := range rows {
		out.Transactions = append(out.Transactions, toResponse(&rows[i]))
	}
	if err := validation.Output(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the fields present in req to the caller's transaction.
func (s *TransactionService) Update(ctx context.Context, userID, id int64, req UpdateRequest) (*Response, error) {
	if req.Empty() {
		return nil, errNoData
	}
	var changes []database.Assignment
	if req.Kind.Present {
		changes = append(changes, database.Assignment{Column: "kind", Value: req.Kind.Any()})
	}
	if req.TransactionDate.Present {
		var v any
		if req.TransactionDate.HasValue() {
			d, err := parseDate(req.TransactionDate.Value)
			if err != nil {
				return nil, err
			}
			v = d
		}
		changes = append(changes, database.Assignment{Column: "transaction_date", Value: v})
	}
	if req.Amount.Present {
		changes = append(changes, database.Assignment{Column: "amount", Value: req.Amount.Any()})
	}
	if req.Description.Present {
		changes = append(changes, database.Assignment{Column: "description", Value: req.Description.Any()})
	}
	t, err := s.repo.Update(ctx, userID, id, changes)
	if err != nil {
		return nil, storageError(err)
	}
	return respond(t)
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) (*DeleteResponse, error) {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return nil, storageError(err)
	}
	out := &DeleteResponse{Message: fmt.Sprintf("Transaction with id: %d, deleted successfully!", deleted)}
	if err := validation.Output(out); err != nil {
		return nil, err
	}
	return out, nil
}
