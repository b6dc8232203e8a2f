// internal/service/currency_converter_test.go
package service

import (
	"context"
	"testing"

	"coinledger/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyConverter_GetExchangeRate(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	rate, err := f.env.Converter.GetExchangeRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(dec("1.0").Div(dec("1.1"))))

	rate, err = f.env.Converter.GetExchangeRate(ctx, "EUR", "USD")
	require.NoError(t, err)
	assertAmount(t, "1.1", rate)
}

func TestCurrencyConverter_IdentityShortCircuit(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	// Unknown codes still short-circuit: no lookup happens.
	rate, err := f.env.Converter.GetExchangeRate(ctx, "ABC", "ABC")
	require.NoError(t, err)
	assertAmount(t, "1", rate)

	amount, err := f.env.Converter.Convert(ctx, dec("12.345"), "ABC", "ABC")
	require.NoError(t, err)
	assertAmount(t, "12.345", amount)
}

func TestCurrencyConverter_Convert(t *testing.T) {
	f := newLedgerFixture(t)

	converted, err := f.env.Converter.Convert(context.Background(), dec("20"), "USD", "EUR")

	require.NoError(t, err)
	assertAmount(t, "18.18181818", converted)
}

func TestCurrencyConverter_RejectsUnknownOrInactive(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.env.Converter.GetExchangeRate(ctx, "USD", "GBP")
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = f.env.Converter.Convert(ctx, dec("1"), "XYZ", "EUR")
	assert.ErrorIs(t, err, util.ErrCurrencyInactive)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestCurrencyConverter_ConvertBetween(t *testing.T) {
	f := newLedgerFixture(t)

	converted, rate := f.env.Converter.ConvertBetween(dec("3"), &f.eur, &f.usd)
	assertAmount(t, "3.3", converted)
	assertAmount(t, "1.1", rate)

	converted, rate = f.env.Converter.ConvertBetween(dec("3"), &f.eur, &f.eur)
	assertAmount(t, "3", converted)
	assertAmount(t, "1", rate)
}
