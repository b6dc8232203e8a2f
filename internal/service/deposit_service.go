// internal/service/deposit_service.go
package service

import (
	"context"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

// DepositService credits external funds to a user.
// The deposit is recorded as a self-referential transaction; no other balance is debited.
type DepositService struct {
	env *OperationEnv
}

var _ OperationService[*domain.DepositRequest] = (*DepositService)(nil)

// NewDepositService creates a DepositService.
func NewDepositService(env *OperationEnv) *DepositService {
	return &DepositService{env: env}
}

// Validate checks the common fields.
func (s *DepositService) Validate(ctx context.Context, req *domain.DepositRequest) error {
	if req == nil {
		return util.ErrMissingRequest
	}
	return s.env.validateBase(ctx, req.OperationBase)
}

// Execute performs the deposit atomically.
func (s *DepositService) Execute(ctx context.Context, req *domain.DepositRequest) *domain.MoneyOperationResult {
	if req == nil {
		return s.env.fail(domain.OperationDeposit, util.ErrMissingRequest)
	}
	return execute(ctx, s.env, req, s.Validate, s.deposit)
}

func (s *DepositService) deposit(ctx context.Context, q repository.DBExecutor, req *domain.DepositRequest) (*domain.MoneyOperationResult, error) {
	balance, err := s.env.Balances.CreditBalance(ctx, q, req.UserID, req.CurrencyID, req.Amount)
	if err != nil {
		return nil, err
	}

	tx := domain.NewTransaction(req.UserID, req.UserID, req.CurrencyID, req.Amount, domain.TransactionTypeDeposit, req.Comment, nil)
	if err := s.env.TxLog.AddTransaction(ctx, q, tx); err != nil {
		return nil, err
	}
	return domain.Succeeded(domain.DepositResult{NewBalance: balance.Amount}, tx.ID), nil
}
