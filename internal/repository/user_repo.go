// internal/repository/user_repo.go
package repository

import (
	"context"

	"coinledger/internal/domain"
)

// UserRepository defines the interface for user data operations.
// The ledger core only reads users; CreateUser serves seeding and tests.
type UserRepository interface {
	// CreateUser adds a new user to the database using the provided DBExecutor.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByUsername retrieves a user by their username.
	GetUserByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	// GetBankAccount retrieves the single system bank account.
	GetBankAccount(ctx context.Context, q DBExecutor) (*domain.User, error)
}
