// internal/domain/currency.go
package domain

import "github.com/shopspring/decimal"

// Currency is an entry of the currency directory.
// ExchangeRate is expressed against a single implicit base unit, not against another currency.
type Currency struct {
	ID                      int64           `db:"id" json:"id"`
	Code                    string          `db:"code" json:"code"`
	Name                    string          `db:"name" json:"name"`
	ExchangeRate            decimal.Decimal `db:"exchange_rate" json:"exchange_rate"`
	ConversionFeePercentage decimal.Decimal `db:"conversion_fee_percentage" json:"conversion_fee_percentage"` // fraction, 0.02 = 2%
	IsActive                bool            `db:"is_active" json:"is_active"`
	IsDefaultForNewUsers    bool            `db:"is_default_for_new_users" json:"is_default_for_new_users"`
	DefaultAmount           decimal.Decimal `db:"default_amount" json:"default_amount"` // welcome bonus amount
}

// AmountScale is the number of decimal places kept for stored amounts.
const AmountScale int32 = 8

// ValidAmount reports whether amount is positive and fits in AmountScale decimal places.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(AmountScale))
}

// ExchangeRateTo returns how many units of to one unit of c buys.
func (c *Currency) ExchangeRateTo(to *Currency) decimal.Decimal {
	if c.Code == to.Code {
		return decimal.NewFromInt(1)
	}
	return to.ExchangeRate.Div(c.ExchangeRate)
}

// ConversionFee returns the fee charged on amount when converting out of c.
func (c *Currency) ConversionFee(amount decimal.Decimal) decimal.Decimal {
	if c.ConversionFeePercentage.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(c.ConversionFeePercentage).Round(AmountScale)
}
