// internal/repository/postgres/balance_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"

	"github.com/shopspring/decimal"
)

// BalanceRepository implements repository.BalanceRepository for PostgreSQL.
type BalanceRepository struct{}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository() repository.BalanceRepository {
	return &BalanceRepository{}
}

const balanceColumns = `id, user_id, currency_id, amount, last_update_time`

// GetBalance retrieves the balance row of a (user, currency) pair.
func (r *BalanceRepository) GetBalance(ctx context.Context, q repository.DBExecutor, userID, currencyID int64) (*domain.UserBalance, error) {
	var balance domain.UserBalance
	query := `SELECT ` + balanceColumns + ` FROM user_balances WHERE user_id = $1 AND currency_id = $2`
	if err := q.GetContext(ctx, &balance, query, userID, currencyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrBalanceNotFound
		}
		return nil, fmt.Errorf("failed to get balance of user %d in currency %d: %w", userID, currencyID, err)
	}
	return &balance, nil
}

// CreateBalanceIfNotExists relies on the (user_id, currency_id) unique constraint:
// a concurrent insert of the same pair waits for the other transaction and then does nothing.
func (r *BalanceRepository) CreateBalanceIfNotExists(ctx context.Context, q repository.DBExecutor, balance *domain.UserBalance) (*domain.UserBalance, error) {
	query := `INSERT INTO user_balances (user_id, currency_id, amount, last_update_time)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (user_id, currency_id) DO NOTHING`
	if _, err := q.ExecContext(ctx, query, balance.UserID, balance.CurrencyID, balance.Amount, balance.LastUpdateTime); err != nil {
		return nil, fmt.Errorf("failed to create balance of user %d in currency %d: %w", balance.UserID, balance.CurrencyID, err)
	}
	return r.GetBalance(ctx, q, balance.UserID, balance.CurrencyID)
}

// AdjustBalance applies delta with a conditional update, so the row lock taken by UPDATE
// re-checks the non-negative invariant against the latest committed amount.
func (r *BalanceRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, userID, currencyID int64, delta decimal.Decimal) error {
	query := `UPDATE user_balances SET amount = amount + $1, last_update_time = $2
              WHERE user_id = $3 AND currency_id = $4 AND amount + $1 >= 0`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), userID, currencyID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance of user %d in currency %d: %w", userID, currencyID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after adjusting balance of user %d: %w", userID, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := q.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM user_balances WHERE user_id = $1 AND currency_id = $2)`,
		userID, currencyID); err != nil {
		return fmt.Errorf("failed to check balance of user %d in currency %d: %w", userID, currencyID, err)
	}
	if !exists {
		return util.ErrBalanceNotFound
	}
	return util.ErrInsufficientFunds
}

// GetBalancesByUserID lists all balance rows of a user.
func (r *BalanceRepository) GetBalancesByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.UserBalance, error) {
	balances := []domain.UserBalance{}
	query := `SELECT ` + balanceColumns + ` FROM user_balances WHERE user_id = $1 ORDER BY currency_id`
	if err := q.SelectContext(ctx, &balances, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list balances of user %d: %w", userID, err)
	}
	return balances, nil
}
