// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType defines the type of a ledger transaction.
type TransactionType string

const (
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeConversion TransactionType = "CONVERSION"
	TransactionTypeFee        TransactionType = "FEE"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeTransfer, TransactionTypeDeposit, TransactionTypeConversion, TransactionTypeFee:
		return true
	}
	return false
}

// Transaction is an immutable audit record. Rows are never updated or deleted.
type Transaction struct {
	ID                  int64           `db:"id" json:"id"`
	FromUserID          int64           `db:"from_user_id" json:"from_user_id"`
	ToUserID            int64           `db:"to_user_id" json:"to_user_id"`
	CurrencyID          int64           `db:"currency_id" json:"currency_id"`
	Amount              decimal.Decimal `db:"amount" json:"amount"`
	Type                TransactionType `db:"type" json:"type"`
	Comment             *string         `db:"comment" json:"comment,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	ParentTransactionID *int64          `db:"parent_transaction_id" json:"parent_transaction_id,omitempty"`
}

// NewTransaction creates a new Transaction instance. CreatedAt is left zero and
// stamped by the transaction log on insert.
func NewTransaction(
	fromUserID int64,
	toUserID int64,
	currencyID int64,
	amount decimal.Decimal,
	txType TransactionType,
	comment string,
	parentID *int64,
) *Transaction {
	var c *string
	if comment != "" {
		c = &comment
	}
	return &Transaction{
		FromUserID:          fromUserID,
		ToUserID:            toUserID,
		CurrencyID:          currencyID,
		Amount:              amount,
		Type:                txType,
		Comment:             c,
		ParentTransactionID: parentID,
	}
}
