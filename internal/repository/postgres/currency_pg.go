// internal/repository/postgres/currency_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

// CurrencyRepository implements repository.CurrencyRepository for PostgreSQL.
type CurrencyRepository struct{}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository() repository.CurrencyRepository {
	return &CurrencyRepository{}
}

const currencyColumns = `id, code, name, exchange_rate, conversion_fee_percentage, is_active, is_default_for_new_users, default_amount`

// CreateCurrency inserts a currency into the directory.
func (r *CurrencyRepository) CreateCurrency(ctx context.Context, q repository.DBExecutor, c *domain.Currency) error {
	query := `INSERT INTO currencies (code, name, exchange_rate, conversion_fee_percentage, is_active, is_default_for_new_users, default_amount)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		c.Code,
		c.Name,
		c.ExchangeRate,
		c.ConversionFeePercentage,
		c.IsActive,
		c.IsDefaultForNewUsers,
		c.DefaultAmount,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create currency %s: %w", c.Code, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create currency: %w", err)
	}
	return nil
}

// GetCurrencyByID retrieves a currency by its ID.
func (r *CurrencyRepository) GetCurrencyByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Currency, error) {
	var c domain.Currency
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE id = $1`
	if err := q.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCurrencyNotFound
		}
		return nil, fmt.Errorf("failed to get currency by ID %d: %w", id, err)
	}
	return &c, nil
}

// GetCurrencyByCode retrieves a currency by its code.
func (r *CurrencyRepository) GetCurrencyByCode(ctx context.Context, q repository.DBExecutor, code string) (*domain.Currency, error) {
	var c domain.Currency
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE code = $1`
	if err := q.GetContext(ctx, &c, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCurrencyNotFound
		}
		return nil, fmt.Errorf("failed to get currency by code %s: %w", code, err)
	}
	return &c, nil
}

// GetActiveCurrencies lists active currencies.
func (r *CurrencyRepository) GetActiveCurrencies(ctx context.Context, q repository.DBExecutor) ([]domain.Currency, error) {
	currencies := []domain.Currency{}
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE is_active ORDER BY code`
	if err := q.SelectContext(ctx, &currencies, query); err != nil {
		return nil, fmt.Errorf("failed to list active currencies: %w", err)
	}
	return currencies, nil
}

// GetDefaultCurrencies lists active currencies granted to new users.
func (r *CurrencyRepository) GetDefaultCurrencies(ctx context.Context, q repository.DBExecutor) ([]domain.Currency, error) {
	currencies := []domain.Currency{}
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE is_active AND is_default_for_new_users ORDER BY id`
	if err := q.SelectContext(ctx, &currencies, query); err != nil {
		return nil, fmt.Errorf("failed to list default currencies: %w", err)
	}
	return currencies, nil
}

// DeactivateCurrency clears the active flag.
func (r *CurrencyRepository) DeactivateCurrency(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `UPDATE currencies SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate currency %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deactivating currency %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrCurrencyNotFound
	}
	return nil
}
