// internal/service/transaction_log.go
package service

import (
	"context"
	"fmt"
	"time"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

// TransactionLog validates and appends ledger events. It never updates or deletes a record.
type TransactionLog struct {
	users        repository.UserRepository
	currencies   repository.CurrencyRepository
	transactions repository.TransactionRepository
}

// NewTransactionLog creates a TransactionLog.
func NewTransactionLog(
	users repository.UserRepository,
	currencies repository.CurrencyRepository,
	transactions repository.TransactionRepository,
) *TransactionLog {
	return &TransactionLog{
		users:        users,
		currencies:   currencies,
		transactions: transactions,
	}
}

// ValidateTransaction checks referential integrity and the type-specific rules.
//
// Deposits skip the sender lookup; they are self-credits. Transfers may not be
// self-directed, conversions may.
func (l *TransactionLog) ValidateTransaction(ctx context.Context, q repository.DBExecutor, tx *domain.Transaction) error {
	if !tx.Type.Valid() {
		return fmt.Errorf("%q: %w", tx.Type, util.ErrUnknownTransactionType)
	}
	if !domain.ValidAmount(tx.Amount) {
		return util.ErrInvalidAmount
	}

	if _, err := l.users.GetUserByID(ctx, q, tx.ToUserID); err != nil {
		return fmt.Errorf("recipient %d: %w", tx.ToUserID, err)
	}
	if tx.Type != domain.TransactionTypeDeposit {
		if _, err := l.users.GetUserByID(ctx, q, tx.FromUserID); err != nil {
			return fmt.Errorf("sender %d: %w", tx.FromUserID, err)
		}
	}
	if _, err := l.currencies.GetCurrencyByID(ctx, q, tx.CurrencyID); err != nil {
		return fmt.Errorf("currency %d: %w", tx.CurrencyID, err)
	}

	if tx.Type == domain.TransactionTypeTransfer && tx.FromUserID == tx.ToUserID {
		return util.ErrSameUserTransfer
	}
	return nil
}

// AddTransaction validates tx, stamps CreatedAt when unset, and appends it.
func (l *TransactionLog) AddTransaction(ctx context.Context, q repository.DBExecutor, tx *domain.Transaction) error {
	if err := l.ValidateTransaction(ctx, q, tx); err != nil {
		return err
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if err := l.transactions.CreateTransaction(ctx, q, tx); err != nil {
		return fmt.Errorf("failed to append %s transaction: %w", tx.Type, err)
	}
	return nil
}
