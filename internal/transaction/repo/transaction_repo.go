package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/transaction/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/database"
)

// TransactionRepo reads and writes the transactions table. Every statement
// is scoped by user_id; a row owned by someone else behaves as missing.
type TransactionRepo struct {
	db *sqlx.DB
}

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txColumns = `id, user_id, kind, transaction_date, amount, description`

var updatable = []string{"kind", "transaction_date", "amount", "description"}

// Create inserts t for t.UserID. A missing owner fails the foreign key.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) (*entity.Transaction, error) {
	const q = `INSERT INTO transactions (user_id, kind, transaction_date, amount, description)
VALUES (:user_id, :kind, :transaction_date, :amount, :description)
RETURNING ` + txColumns
	rows, err := r.db.NamedQueryContext(ctx, q, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOne(rows)
}

func (r *TransactionRepo) Get(ctx context.Context, userID, id int64) (*entity.Transaction, error) {
	const q = `SELECT ` + txColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	var t entity.Transaction
	if err := r.db.GetContext(ctx, &t, q, id, userID); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the user's transactions oldest first; never nil.
func (r *TransactionRepo) List(ctx context.Context, userID int64) ([]entity.Transaction, error) {
	const q = `SELECT ` + txColumns + ` FROM transactions WHERE user_id = $1 ORDER BY id`
	out := []entity.Transaction{}
	if err := r.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TransactionRepo) Update(ctx context.Context, userID, id int64, changes []database.Assignment) (*entity.Transaction, error) {
	set, args, err := database.SetClause(changes, updatable...)
	if err != nil {
		return nil, err
	}
	args["id"] = id
	args["user_id"] = userID
	q := `UPDATE transactions SET ` + set + ` WHERE id = :id AND user_id = :user_id RETURNING ` + txColumns
	rows, err := r.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOne(rows)
}

// Delete removes the row and returns its id.
func (r *TransactionRepo) Delete(ctx context.Context, userID, id int64) (int64, error) {
	const q = `DELETE FROM transactions WHERE id = $1 AND user_id = $2 RETURNING id`
	var deleted int64
	if err := r.db.GetContext(ctx, &deleted, q, id, userID); err != nil {
		return 0, err
	}
	return deleted, nil
}

func scanOne(rows *sqlx.Rows) (*entity.Transaction, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	var t entity.Transaction
	if err := rows.StructScan(&t); err != nil {
		return nil, err
	}
	return &t, nil
}
