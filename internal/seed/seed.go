// Package seed creates the reference data the ledger needs before it can run:
// the bank account, the currency directory and the bank's reserves.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

// BankUsername is the username of the system bank account.
const BankUsername = "bank"

// CurrencySeed is a directory entry plus the reserve the bank starts with.
type CurrencySeed struct {
	Currency domain.Currency
	Reserve  decimal.Decimal
}

// DefaultCatalog is the built-in currency table.
func DefaultCatalog() []CurrencySeed {
	return []CurrencySeed{
		{
			Currency: domain.Currency{
				Code: "NKC", Name: "Nikcoin",
				ExchangeRate:            decimal.NewFromInt(1),
				ConversionFeePercentage: decimal.RequireFromString("0.01"),
				IsActive:                true,
				IsDefaultForNewUsers:    true,
				DefaultAmount:           decimal.NewFromInt(100),
			},
			Reserve: decimal.NewFromInt(500000),
		},
		{
			Currency: domain.Currency{
				Code: "USD", Name: "US Dollar",
				ExchangeRate:            decimal.RequireFromString("1.1"),
				ConversionFeePercentage: decimal.RequireFromString("0.02"),
				IsActive:                true,
			},
			Reserve: decimal.NewFromInt(100000),
		},
		{
			Currency: domain.Currency{
				Code: "EUR", Name: "Euro",
				ExchangeRate:            decimal.RequireFromString("1.0"),
				ConversionFeePercentage: decimal.RequireFromString("0.02"),
				IsActive:                true,
			},
			Reserve: decimal.NewFromInt(100000),
		},
	}
}

// Seeder writes reference data through the repositories.
type Seeder struct {
	users      repository.UserRepository
	currencies repository.CurrencyRepository
	balances   repository.BalanceRepository
	logger     *slog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(users repository.UserRepository, currencies repository.CurrencyRepository, balances repository.BalanceRepository, logger *slog.Logger) *Seeder {
	return &Seeder{users: users, currencies: currencies, balances: balances, logger: logger}
}

// Run is idempotent: existing rows are left as they are and reserves are never topped up.
func (s *Seeder) Run(ctx context.Context, q repository.DBExecutor, catalog []CurrencySeed) error {
	bank, err := s.ensureBank(ctx, q)
	if err != nil {
		return err
	}

	for _, entry := range catalog {
		currency, err := s.ensureCurrency(ctx, q, entry.Currency)
		if err != nil {
			return err
		}
		if !entry.Reserve.IsPositive() {
			continue
		}
		balance, err := s.balances.CreateBalanceIfNotExists(ctx, q, domain.NewUserBalance(bank.ID, currency.ID, entry.Reserve))
		if err != nil {
			return fmt.Errorf("failed to seed %s reserve: %w", currency.Code, err)
		}
		s.logger.Info("Bank reserve ready", "currency", currency.Code, "amount", balance.Amount.String())
	}
	return nil
}

func (s *Seeder) ensureBank(ctx context.Context, q repository.DBExecutor) (*domain.User, error) {
	bank, err := s.users.GetBankAccount(ctx, q)
	if err == nil {
		return bank, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up bank account: %w", err)
	}

	bank = domain.NewUser(BankUsername, true)
	if err := s.users.CreateUser(ctx, q, bank); err != nil {
		return nil, fmt.Errorf("failed to create bank account: %w", err)
	}
	s.logger.Info("Bank account created", "user_id", bank.ID)
	return bank, nil
}

func (s *Seeder) ensureCurrency(ctx context.Context, q repository.DBExecutor, c domain.Currency) (*domain.Currency, error) {
	existing, err := s.currencies.GetCurrencyByCode(ctx, q, c.Code)
	if err == nil {
		return existing, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up currency %s: %w", c.Code, err)
	}

	if err := s.currencies.CreateCurrency(ctx, q, &c); err != nil {
		return nil, fmt.Errorf("failed to create currency %s: %w", c.Code, err)
	}
	s.logger.Info("Currency created", "code", c.Code, "currency_id", c.ID)
	return &c, nil
}
