// internal/domain/operation.go
package domain

import "github.com/shopspring/decimal"

// OperationKind names the four money operations.
type OperationKind string

const (
	OperationTransfer     OperationKind = "transfer"
	OperationDeposit      OperationKind = "deposit"
	OperationConversion   OperationKind = "conversion"
	OperationWelcomeBonus OperationKind = "welcome_bonus"
)

// MoneyOperation is implemented by exactly the four request types below.
type MoneyOperation interface {
	Kind() OperationKind
	Base() OperationBase
}

// OperationBase holds the fields every money operation request carries.
type OperationBase struct {
	UserID     int64           `json:"user_id"`
	CurrencyID int64           `json:"currency_id"`
	Amount     decimal.Decimal `json:"amount"`
	Comment    string          `json:"comment,omitempty"`
}

// TransferRequest moves Amount of CurrencyID from UserID to RecipientID.
type TransferRequest struct {
	OperationBase
	RecipientID int64 `json:"recipient_id"`
}

// DepositRequest credits Amount of CurrencyID to UserID.
type DepositRequest struct {
	OperationBase
}

// ConversionRequest exchanges Amount of CurrencyID into TargetCurrencyID through the bank account.
type ConversionRequest struct {
	OperationBase
	TargetCurrencyID int64 `json:"target_currency_id"`
}

// WelcomeBonusRequest grants every default-for-new-users currency's DefaultAmount to NewUserID.
// CurrencyID and Amount of the base are not used; UserID, when set, is the initiating user.
type WelcomeBonusRequest struct {
	OperationBase
	NewUserID int64 `json:"new_user_id"`
}

func (*TransferRequest) Kind() OperationKind     { return OperationTransfer }
func (*DepositRequest) Kind() OperationKind      { return OperationDeposit }
func (*ConversionRequest) Kind() OperationKind   { return OperationConversion }
func (*WelcomeBonusRequest) Kind() OperationKind { return OperationWelcomeBonus }

func (r *TransferRequest) Base() OperationBase     { return r.OperationBase }
func (r *DepositRequest) Base() OperationBase      { return r.OperationBase }
func (r *ConversionRequest) Base() OperationBase   { return r.OperationBase }
func (r *WelcomeBonusRequest) Base() OperationBase { return r.OperationBase }
