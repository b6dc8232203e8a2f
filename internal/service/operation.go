// internal/service/operation.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

// OperationService is the shape shared by the four money operation services.
// Validate fails fast outside any store transaction; Execute validates and then runs
// the operation body atomically. Execute reports every failure in the result.
type OperationService[R domain.MoneyOperation] interface {
	Validate(ctx context.Context, req R) error
	Execute(ctx context.Context, req R) *domain.MoneyOperationResult
}

// OperationEnv bundles the collaborators every operation service needs.
type OperationEnv struct {
	Runner     *TxRunner
	DBExecutor repository.DBExecutor // non-transactional reads, e.g. *sqlx.DB
	Users      repository.UserRepository
	Currencies repository.CurrencyRepository
	Balances   *BalanceEngine
	TxLog      *TransactionLog
	Converter  *CurrencyConverter
	Logger     *slog.Logger
}

func (env *OperationEnv) logger() *slog.Logger {
	if env.Logger == nil {
		return util.GetLogger()
	}
	return env.Logger
}

// validateBase applies the checks common to all operations: positive amount,
// existing currency and existing initiating user. Amounts finer than
// domain.AmountScale are rejected rather than rounded.
func (env *OperationEnv) validateBase(ctx context.Context, base domain.OperationBase) error {
	if !domain.ValidAmount(base.Amount) {
		return util.ErrInvalidAmount
	}
	if _, err := env.activeCurrency(ctx, env.DBExecutor, base.CurrencyID); err != nil {
		return err
	}
	if _, err := env.Users.GetUserByID(ctx, env.DBExecutor, base.UserID); err != nil {
		return fmt.Errorf("user %d: %w", base.UserID, err)
	}
	return nil
}

func (env *OperationEnv) activeCurrency(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Currency, error) {
	currency, err := env.Currencies.GetCurrencyByID(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("currency %d: %w", id, err)
	}
	if !currency.IsActive {
		return nil, fmt.Errorf("currency %s: %w", currency.Code, util.ErrCurrencyInactive)
	}
	return currency, nil
}

// execute runs validate outside the store transaction and body inside it, and turns
// every error into a failed result.
func execute[R domain.MoneyOperation](
	ctx context.Context,
	env *OperationEnv,
	req R,
	validate func(context.Context, R) error,
	body func(context.Context, repository.DBExecutor, R) (*domain.MoneyOperationResult, error),
) *domain.MoneyOperationResult {
	kind := req.Kind()
	if err := validate(ctx, req); err != nil {
		return env.fail(kind, err)
	}

	result, err := env.Runner.ExecuteInTransaction(ctx, func(ctx context.Context, q repository.DBExecutor) (*domain.MoneyOperationResult, error) {
		return body(ctx, q, req)
	})
	if err != nil {
		return env.fail(kind, err)
	}
	if !result.Success {
		env.logger().Warn("Money operation failed", "kind", kind, "failure", result.Failure, "error", result.Error)
		return result
	}
	env.logger().Info("Money operation committed", "kind", kind, "user_id", req.Base().UserID, "transaction_id", result.TransactionID)
	return result
}

// fail classifies err. Store-level errors are logged with detail and reported with a
// generic message so no internals reach the end user.
func (env *OperationEnv) fail(kind domain.OperationKind, err error) *domain.MoneyOperationResult {
	failure := classifyError(err)
	if failure == domain.FailurePersistence {
		env.logger().Error("Money operation aborted", "kind", kind, "error", err)
		return domain.Failed(failure, "operation could not be completed")
	}
	env.logger().Warn("Money operation rejected", "kind", kind, "failure", failure, "error", err)
	return domain.Failed(failure, err.Error())
}

func classifyError(err error) domain.FailureKind {
	switch {
	case errors.Is(err, util.ErrInsufficientFunds):
		return domain.FailureInsufficientFunds
	case errors.Is(err, util.ErrNotFound):
		return domain.FailureEntityNotFound
	case errors.Is(err, util.ErrInvalidInput):
		return domain.FailureValidation
	default:
		return domain.FailurePersistence
	}
}
