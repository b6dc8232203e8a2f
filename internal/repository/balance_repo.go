// internal/repository/balance_repo.go
package repository

import (
	"context"

	"coinledger/internal/domain"

	"github.com/shopspring/decimal"
)

// BalanceRepository is CRUD access to per-(user, currency) balance rows. It holds no business rules.
type BalanceRepository interface {
	// GetBalance retrieves the balance row of (userID, currencyID) or util.ErrBalanceNotFound.
	GetBalance(ctx context.Context, q DBExecutor, userID, currencyID int64) (*domain.UserBalance, error)
	// CreateBalanceIfNotExists inserts the row unless one already exists for the pair,
	// and returns the row now stored. An existing row is never modified.
	CreateBalanceIfNotExists(ctx context.Context, q DBExecutor, balance *domain.UserBalance) (*domain.UserBalance, error)
	// AdjustBalance adds delta (possibly negative) to the row and stamps LastUpdateTime.
	// It fails with util.ErrInsufficientFunds when the result would be negative and
	// util.ErrBalanceNotFound when the row does not exist.
	AdjustBalance(ctx context.Context, q DBExecutor, userID, currencyID int64, delta decimal.Decimal) error
	// GetBalancesByUserID lists every balance row of a user ordered by currency.
	GetBalancesByUserID(ctx context.Context, q DBExecutor, userID int64) ([]domain.UserBalance, error)
}
