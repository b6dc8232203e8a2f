// internal/service/tx_runner.go
package service

import (
	"context"
	"errors"
	"fmt"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
	"coinledger/pkg/db"
)

// UnitOfWork is the body of an atomic money operation. Every write it makes goes through q.
type UnitOfWork func(ctx context.Context, q repository.DBExecutor) (*domain.MoneyOperationResult, error)

// TxRunner runs units of work inside a store transaction.
// It never retries: a conflicting concurrent transaction surfaces to the caller, who must resubmit.
type TxRunner struct {
	dbBeginner db.DBTxBeginner
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewTxRunner creates a TxRunner from injected transaction primitives.
func NewTxRunner(
	dbBeginner db.DBTxBeginner,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) *TxRunner {
	return &TxRunner{
		dbBeginner: dbBeginner,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// ExecuteInTransaction begins a transaction and runs work in it.
//
// A successful result is committed and returned. A failed result is rolled back and returned.
// An error, or a panic, rolls back and is passed on unchanged; the caller gets no result.
// Failures to begin or commit are reported wrapped in util.ErrPersistence.
func (r *TxRunner) ExecuteInTransaction(ctx context.Context, work UnitOfWork) (*domain.MoneyOperationResult, error) {
	txController, err := r.beginTx(ctx, r.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", util.ErrPersistence, err)
	}
	// Runs on error, failure and panic alike; a no-op once committed.
	defer r.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, errors.New("transaction controller does not implement DBExecutor")
	}

	result, err := work(ctx, txExecutor)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("unit of work returned no result")
	}
	if !result.Success {
		return result, nil
	}

	if err := r.commitTx(txController); err != nil {
		return nil, fmt.Errorf("%w: failed to commit transaction: %w", util.ErrPersistence, err)
	}
	return result, nil
}
