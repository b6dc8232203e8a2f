// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"coinledger/internal/domain"
)

// TransactionRepository defines the interface for the append-only transaction log.
type TransactionRepository interface {
	// CreateTransaction appends a transaction record and sets its ID.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionByID retrieves a single transaction.
	GetTransactionByID(ctx context.Context, q DBExecutor, id int64) (*domain.Transaction, error)
	// GetChildTransactions lists transactions whose parent is parentID, oldest first.
	GetChildTransactions(ctx context.Context, q DBExecutor, parentID int64) ([]domain.Transaction, error)
	// GetTransactionsByUserID retrieves a page of transactions where the user is sender or recipient,
	// newest first, together with the total count.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
}
