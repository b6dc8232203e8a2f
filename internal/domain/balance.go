// internal/domain/balance.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance is the authoritative amount a user holds in one currency.
// At most one row exists per (UserID, CurrencyID).
type UserBalance struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	CurrencyID     int64           `db:"currency_id" json:"currency_id"`
	Amount         decimal.Decimal `db:"amount" json:"amount"` // NUMERIC(28, 8) in DB, never negative
	LastUpdateTime time.Time       `db:"last_update_time" json:"last_update_time"`
}

// NewUserBalance creates a new UserBalance instance.
func NewUserBalance(userID, currencyID int64, amount decimal.Decimal) *UserBalance {
	return &UserBalance{
		UserID:         userID,
		CurrencyID:     currencyID,
		Amount:         amount,
		LastUpdateTime: time.Now().UTC(),
	}
}
