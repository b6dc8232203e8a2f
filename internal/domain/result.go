// internal/domain/result.go
package domain

import "github.com/shopspring/decimal"

// FailureKind classifies why a money operation did not succeed.
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureValidation        FailureKind = "VALIDATION_FAILED"
	FailureInsufficientFunds FailureKind = "INSUFFICIENT_FUNDS"
	FailureEntityNotFound    FailureKind = "ENTITY_NOT_FOUND"
	FailurePersistence       FailureKind = "PERSISTENCE_FAILED"
)

// MoneyOperationResult is the sole outcome contract of a money operation.
type MoneyOperationResult struct {
	Success        bool          `json:"success"`
	Failure        FailureKind   `json:"failure,omitempty"`
	Error          string        `json:"error,omitempty"`
	TransactionID  int64         `json:"transaction_id,omitempty"`
	TransactionIDs []int64       `json:"transaction_ids,omitempty"`
	Data           OperationData `json:"data,omitempty"`
}

// OperationData is the per-operation payload of a successful result.
type OperationData interface {
	operationData()
}

// TransferResult is the payload of a successful transfer.
type TransferResult struct {
	SenderBalance decimal.Decimal `json:"sender_balance"`
}

// DepositResult is the payload of a successful deposit.
type DepositResult struct {
	NewBalance decimal.Decimal `json:"new_balance"`
}

// ConversionResult is the payload of a successful conversion.
type ConversionResult struct {
	ConvertedAmount      decimal.Decimal `json:"converted_amount"`
	ExchangeRate         decimal.Decimal `json:"exchange_rate"`
	Fee                  decimal.Decimal `json:"fee"`
	DepositTransactionID int64           `json:"deposit_transaction_id"`
	FeeTransactionID     *int64          `json:"fee_transaction_id,omitempty"`
}

// BonusGrant is one currency credited by a welcome bonus.
type BonusGrant struct {
	CurrencyID    int64           `json:"currency_id"`
	CurrencyCode  string          `json:"currency_code"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID int64           `json:"transaction_id"`
}

// WelcomeBonusResult is the payload of a successful welcome bonus.
type WelcomeBonusResult struct {
	Grants []BonusGrant `json:"grants"`
}

func (TransferResult) operationData()     {}
func (DepositResult) operationData()      {}
func (ConversionResult) operationData()   {}
func (WelcomeBonusResult) operationData() {}

// Succeeded builds a successful result. The first id is the primary transaction.
func Succeeded(data OperationData, transactionIDs ...int64) *MoneyOperationResult {
	res := &MoneyOperationResult{Success: true, Data: data, TransactionIDs: transactionIDs}
	if len(transactionIDs) > 0 {
		res.TransactionID = transactionIDs[0]
	}
	return res
}

// Failed builds a failed result.
func Failed(kind FailureKind, message string) *MoneyOperationResult {
	return &MoneyOperationResult{Success: false, Failure: kind, Error: message}
}
