package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindExpense = "expense"
	KindIncome  = "income"
)

// Transaction is one income or expense record owned by a user.
type Transaction struct {
	ID              int64           `db:"id"`
	UserID          int64           `db:"user_id"`
	Kind            string          `db:"kind"`
	TransactionDate time.Time       `db:"transaction_date"`
	Amount          decimal.Decimal `db:"amount"`
	Description     string          `db:"description"`
}
