// internal/repository/currency_repo.go
package repository

import (
	"context"

	"coinledger/internal/domain"
)

// CurrencyRepository is the currency directory.
type CurrencyRepository interface {
	// CreateCurrency adds a currency to the directory (seeding only).
	CreateCurrency(ctx context.Context, q DBExecutor, currency *domain.Currency) error
	// GetCurrencyByID retrieves a currency regardless of its active flag.
	GetCurrencyByID(ctx context.Context, q DBExecutor, id int64) (*domain.Currency, error)
	// GetCurrencyByCode retrieves a currency by its unique code regardless of its active flag.
	GetCurrencyByCode(ctx context.Context, q DBExecutor, code string) (*domain.Currency, error)
	// GetActiveCurrencies lists all active currencies ordered by code.
	GetActiveCurrencies(ctx context.Context, q DBExecutor) ([]domain.Currency, error)
	// GetDefaultCurrencies lists active currencies flagged as default for new users, ordered by ID.
	GetDefaultCurrencies(ctx context.Context, q DBExecutor) ([]domain.Currency, error)
	// DeactivateCurrency soft-deletes a currency. Currencies are never physically deleted.
	DeactivateCurrency(ctx context.Context, q DBExecutor, id int64) error
}
