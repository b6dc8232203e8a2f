// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input provided")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrPersistence       = errors.New("persistence failure")
)

// Not-found family. errors.Is(err, ErrNotFound) holds for each of these.
var (
	ErrUserNotFound        = familyError("user not found", ErrNotFound)
	ErrCurrencyNotFound    = familyError("currency not found", ErrNotFound)
	ErrBankAccountNotFound = familyError("bank account not found", ErrNotFound)
	ErrBalanceNotFound     = familyError("balance not found", ErrNotFound)
	ErrTransactionNotFound = familyError("transaction not found", ErrNotFound)
)

// Validation family. errors.Is(err, ErrInvalidInput) holds for each of these.
var (
	ErrInvalidAmount          = familyError("amount must be greater than zero with at most 8 decimal places", ErrInvalidInput)
	ErrSameUserTransfer       = familyError("cannot transfer to the same user", ErrInvalidInput)
	ErrSameCurrencyConversion = familyError("source and target currency must differ", ErrInvalidInput)
	ErrCurrencyInactive       = familyError("currency is not active", ErrInvalidInput)
	ErrBankAccountRecipient   = familyError("bank account cannot receive a welcome bonus", ErrInvalidInput)
	ErrNegativeInitialBalance = familyError("initial balance cannot be negative", ErrInvalidInput)
	ErrUnknownTransactionType = familyError("unknown transaction type", ErrInvalidInput)
	ErrUnsupportedOperation   = familyError("unsupported money operation", ErrInvalidInput)
	ErrMissingRequest         = familyError("missing operation request", ErrInvalidInput)
)

// memberError keeps its own message while matching its family sentinel.
type memberError struct {
	msg    string
	family error
}

func familyError(msg string, family error) error {
	return &memberError{msg: msg, family: family}
}

func (e *memberError) Error() string { return e.msg }

func (e *memberError) Unwrap() error { return e.family }

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
