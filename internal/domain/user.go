// internal/domain/user.go
package domain

import "time"

// User represents a ledger participant. Exactly one user is the bank account.
type User struct {
	ID            int64     `db:"id" json:"id"`                           // Primary key, BIGSERIAL in DB
	Username      string    `db:"username" json:"username"`               // Unique username
	IsBankAccount bool      `db:"is_bank_account" json:"is_bank_account"` // System counterparty for deposits, fees, conversions, bonuses
	CreatedAt     time.Time `db:"created_at" json:"created_at"`           // Timestamp of creation
}

// NewUser creates a new User instance.
func NewUser(username string, isBankAccount bool) *User {
	return &User{
		Username:      username,
		IsBankAccount: isBankAccount,
		CreatedAt:     time.Now().UTC(),
	}
}
