// internal/service/balance_engine.go
package service

import (
	"context"
	"errors"
	"fmt"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"

	"github.com/shopspring/decimal"
)

// BalanceEngine moves amounts between (user, currency) balance rows.
// It takes no in-process locks; concurrent debits of one row rely on the store's
// row locking and on the repository's non-negative conditional update.
type BalanceEngine struct {
	balances repository.BalanceRepository
}

// NewBalanceEngine creates a BalanceEngine.
func NewBalanceEngine(balances repository.BalanceRepository) *BalanceEngine {
	return &BalanceEngine{balances: balances}
}

// GetBalance returns the balance row of a pair or util.ErrBalanceNotFound.
func (e *BalanceEngine) GetBalance(ctx context.Context, q repository.DBExecutor, userID, currencyID int64) (*domain.UserBalance, error) {
	return e.balances.GetBalance(ctx, q, userID, currencyID)
}

// GetOrCreateBalance returns the pair's balance row, creating it with initialAmount if absent.
// Calling it again, sequentially or concurrently, returns the same row.
func (e *BalanceEngine) GetOrCreateBalance(ctx context.Context, q repository.DBExecutor, userID, currencyID int64, initialAmount decimal.Decimal) (*domain.UserBalance, error) {
	if initialAmount.IsNegative() {
		return nil, util.ErrNegativeInitialBalance
	}

	balance, err := e.balances.GetBalance(ctx, q, userID, currencyID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	return e.balances.CreateBalanceIfNotExists(ctx, q, domain.NewUserBalance(userID, currencyID, initialAmount))
}

// EnsureSufficientBalance fails with util.ErrInsufficientFunds unless the user holds at least amount.
// A missing balance row counts as insufficient funds.
func (e *BalanceEngine) EnsureSufficientBalance(ctx context.Context, q repository.DBExecutor, userID, currencyID int64, amount decimal.Decimal) (*domain.UserBalance, error) {
	balance, err := e.balances.GetBalance(ctx, q, userID, currencyID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, fmt.Errorf("user %d holds no balance in currency %d: %w", userID, currencyID, util.ErrInsufficientFunds)
		}
		return nil, err
	}
	if balance.Amount.LessThan(amount) {
		return nil, fmt.Errorf("user %d has %s, needs %s: %w", userID, balance.Amount.String(), amount.String(), util.ErrInsufficientFunds)
	}
	return balance, nil
}

// TransferBalance moves amount of one currency from one user to another.
func (e *BalanceEngine) TransferBalance(ctx context.Context, q repository.DBExecutor, fromUserID, toUserID, currencyID int64, amount decimal.Decimal) error {
	return e.TransferAmountBetweenBalances(ctx, q, fromUserID, currencyID, amount, toUserID, currencyID, amount)
}

// TransferAmountBetweenBalances debits one balance row and credits another; the two
// rows may be in different currencies and the amounts may differ.
func (e *BalanceEngine) TransferAmountBetweenBalances(
	ctx context.Context,
	q repository.DBExecutor,
	fromUserID, fromCurrencyID int64, debit decimal.Decimal,
	toUserID, toCurrencyID int64, credit decimal.Decimal,
) error {
	if !debit.IsPositive() || !credit.IsPositive() {
		return util.ErrInvalidAmount
	}

	if _, err := e.EnsureSufficientBalance(ctx, q, fromUserID, fromCurrencyID, debit); err != nil {
		return err
	}
	if _, err := e.GetOrCreateBalance(ctx, q, toUserID, toCurrencyID, decimal.Zero); err != nil {
		return fmt.Errorf("failed to ensure balance of user %d: %w", toUserID, err)
	}

	if err := e.balances.AdjustBalance(ctx, q, fromUserID, fromCurrencyID, debit.Neg()); err != nil {
		return fmt.Errorf("failed to debit user %d: %w", fromUserID, err)
	}
	if err := e.balances.AdjustBalance(ctx, q, toUserID, toCurrencyID, credit); err != nil {
		return fmt.Errorf("failed to credit user %d: %w", toUserID, err)
	}
	return nil
}

// CreditBalance adds amount to the pair's balance, creating the row if needed, and
// returns the updated row.
func (e *BalanceEngine) CreditBalance(ctx context.Context, q repository.DBExecutor, userID, currencyID int64, amount decimal.Decimal) (*domain.UserBalance, error) {
	if !amount.IsPositive() {
		return nil, util.ErrInvalidAmount
	}
	if _, err := e.GetOrCreateBalance(ctx, q, userID, currencyID, decimal.Zero); err != nil {
		return nil, fmt.Errorf("failed to ensure balance of user %d: %w", userID, err)
	}
	if err := e.balances.AdjustBalance(ctx, q, userID, currencyID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit user %d: %w", userID, err)
	}
	return e.balances.GetBalance(ctx, q, userID, currencyID)
}
