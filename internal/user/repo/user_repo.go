package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-ledger-go-stdlib/pkg/database"
)

// UserRepo provides data access for users table using sqlx.
// Lookups that match nothing return sql.ErrNoRows.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, username, email, password_hash, created_at`

// updatable lists the columns a profile update may touch.
var updatable = []string{"username", "email", "password_hash"}

// Create inserts a new user row and returns it as stored.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (*entity.User, error) {
	const q = `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING ` + userColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, username, email, passwordHash); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies a partial update in a single statement and returns the new row.
func (r *UserRepo) Update(ctx context.Context, id int64, changes []database.Assignment) (*entity.User, error) {
	set, args, err := database.SetClause(changes, updatable...)
	if err != nil {
		return nil, err
	}
	args["id"] = id
	q := `UPDATE users SET ` + set + ` WHERE id = :id RETURNING ` + userColumns
	rows, err := r.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	var u entity.User
	if err := rows.StructScan(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes the user (transactions cascade) and returns the deleted username.
func (r *UserRepo) Delete(ctx context.Context, id int64) (string, error) {
	const q = `DELETE FROM users WHERE id = $1 RETURNING username`
	var username string
	if err := r.db.GetContext(ctx, &username, q, id); err != nil {
		return "", err
	}
	return username, nil
}
