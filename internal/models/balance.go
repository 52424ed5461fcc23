package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the single monetary record owned by one user. It is mutated
// only through the transaction service, inside a database transaction.
type Balance struct {
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}
