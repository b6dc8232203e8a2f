// internal/service/currency_converter.go
package service

import (
	"context"
	"fmt"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"

	"github.com/shopspring/decimal"
)

// CurrencyConverter computes exchange rates and converted amounts from the currency directory.
// Every currency carries one rate against a common base; the pair rate is target over source.
type CurrencyConverter struct {
	dbExecutor repository.DBExecutor
	currencies repository.CurrencyRepository
}

// NewCurrencyConverter creates a CurrencyConverter reading through dbExecutor.
func NewCurrencyConverter(dbExecutor repository.DBExecutor, currencies repository.CurrencyRepository) *CurrencyConverter {
	return &CurrencyConverter{dbExecutor: dbExecutor, currencies: currencies}
}

// ActiveCurrencies lists the currencies that can take part in operations, ordered by code.
func (c *CurrencyConverter) ActiveCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := c.currencies.GetActiveCurrencies(ctx, c.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("failed to list active currencies: %w", err)
	}
	return currencies, nil
}

// GetExchangeRate returns how many units of toCode one unit of fromCode buys.
// Identical codes yield exactly 1 without touching the directory.
func (c *CurrencyConverter) GetExchangeRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}
	from, to, err := c.resolvePair(ctx, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return from.ExchangeRateTo(to), nil
}

// Convert returns amount expressed in toCode. Identical codes return amount unchanged.
func (c *CurrencyConverter) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if fromCode == toCode {
		return amount, nil
	}
	from, to, err := c.resolvePair(ctx, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	converted, _ := c.ConvertBetween(amount, from, to)
	return converted, nil
}

// ConvertBetween converts amount using already-resolved currencies and returns the
// converted amount, rounded to domain.AmountScale, together with the rate used.
func (c *CurrencyConverter) ConvertBetween(amount decimal.Decimal, from, to *domain.Currency) (decimal.Decimal, decimal.Decimal) {
	rate := from.ExchangeRateTo(to)
	if from.Code == to.Code {
		return amount, rate
	}
	return amount.Mul(rate).Round(domain.AmountScale), rate
}

func (c *CurrencyConverter) resolvePair(ctx context.Context, fromCode, toCode string) (*domain.Currency, *domain.Currency, error) {
	from, err := c.resolveActive(ctx, fromCode)
	if err != nil {
		return nil, nil, err
	}
	to, err := c.resolveActive(ctx, toCode)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// resolveActive maps an unknown or inactive code to an invalid-argument error.
func (c *CurrencyConverter) resolveActive(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := c.currencies.GetCurrencyByCode(ctx, c.dbExecutor, code)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("currency code %q does not resolve to an active currency: %w", code, util.ErrInvalidInput)
		}
		return nil, err
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("currency code %q does not resolve to an active currency: %w", code, util.ErrCurrencyInactive)
	}
	return currency, nil
}
