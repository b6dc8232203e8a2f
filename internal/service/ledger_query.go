// internal/service/ledger_query.go
package service

import (
	"context"
	"fmt"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"

	"github.com/shopspring/decimal"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// Quote is the outcome of an exchange-rate lookup.
type Quote struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Rate            decimal.Decimal `json:"rate"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
}

// TransactionDetail is a transaction together with the transactions that name it as parent.
type TransactionDetail struct {
	domain.Transaction
	Children []domain.Transaction `json:"children"`
}

// LedgerReader is the read side of the ledger.
type LedgerReader interface {
	GetBalances(ctx context.Context, userID int64) ([]domain.UserBalance, error)
	GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
	GetTransaction(ctx context.Context, transactionID int64) (*TransactionDetail, error)
	Quote(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (*Quote, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// LedgerQueryService implements LedgerReader outside any store transaction.
type LedgerQueryService struct {
	dbExecutor   repository.DBExecutor
	users        repository.UserRepository
	balances     repository.BalanceRepository
	transactions repository.TransactionRepository
	converter    *CurrencyConverter
}

var _ LedgerReader = (*LedgerQueryService)(nil)

// NewLedgerQueryService creates a LedgerQueryService.
func NewLedgerQueryService(
	dbExecutor repository.DBExecutor,
	users repository.UserRepository,
	balances repository.BalanceRepository,
	transactions repository.TransactionRepository,
	converter *CurrencyConverter,
) *LedgerQueryService {
	return &LedgerQueryService{
		dbExecutor:   dbExecutor,
		users:        users,
		balances:     balances,
		transactions: transactions,
		converter:    converter,
	}
}

// GetBalances lists every balance a user holds.
func (s *LedgerQueryService) GetBalances(ctx context.Context, userID int64) ([]domain.UserBalance, error) {
	if _, err := s.users.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		return nil, err
	}
	balances, err := s.balances.GetBalancesByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances of user %d: %w", userID, err)
	}
	return balances, nil
}

// GetTransactionHistory returns a page of a user's transactions, newest first, and the total count.
// A non-positive limit falls back to DefaultHistoryLimit and limits are capped at MaxHistoryLimit.
func (s *LedgerQueryService) GetTransactionHistory(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("offset must not be negative: %w", util.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if _, err := s.users.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		return nil, 0, err
	}
	return s.transactions.GetTransactionsByUserID(ctx, s.dbExecutor, userID, limit, offset)
}

// GetTransaction returns a transaction and its children, such as the deposit and fee legs of a conversion.
func (s *LedgerQueryService) GetTransaction(ctx context.Context, transactionID int64) (*TransactionDetail, error) {
	tx, err := s.transactions.GetTransactionByID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, err
	}
	children, err := s.transactions.GetChildTransactions(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children of transaction %d: %w", transactionID, err)
	}
	if children == nil {
		children = []domain.Transaction{}
	}
	return &TransactionDetail{Transaction: *tx, Children: children}, nil
}

// Quote converts amount between two currency codes without moving any funds.
func (s *LedgerQueryService) Quote(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (*Quote, error) {
	if amount.IsNegative() {
		return nil, util.ErrInvalidAmount
	}
	rate, err := s.converter.GetExchangeRate(ctx, fromCode, toCode)
	if err != nil {
		return nil, err
	}
	converted, err := s.converter.Convert(ctx, amount, fromCode, toCode)
	if err != nil {
		return nil, err
	}
	return &Quote{From: fromCode, To: toCode, Rate: rate, Amount: amount, ConvertedAmount: converted}, nil
}

// ListCurrencies returns the active currency directory.
func (s *LedgerQueryService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	return s.converter.ActiveCurrencies(ctx)
}
