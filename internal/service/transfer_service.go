// internal/service/transfer_service.go
package service

import (
	"context"
	"fmt"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

// TransferService moves value of one currency between two users.
type TransferService struct {
	env *OperationEnv
}

var _ OperationService[*domain.TransferRequest] = (*TransferService)(nil)

// NewTransferService creates a TransferService.
func NewTransferService(env *OperationEnv) *TransferService {
	return &TransferService{env: env}
}

// Validate checks the common fields and that the recipient exists and is not the sender.
func (s *TransferService) Validate(ctx context.Context, req *domain.TransferRequest) error {
	if req == nil {
		return util.ErrMissingRequest
	}
	if req.UserID == req.RecipientID {
		return util.ErrSameUserTransfer
	}
	if err := s.env.validateBase(ctx, req.OperationBase); err != nil {
		return err
	}
	if _, err := s.env.Users.GetUserByID(ctx, s.env.DBExecutor, req.RecipientID); err != nil {
		return fmt.Errorf("recipient %d: %w", req.RecipientID, err)
	}
	return nil
}

// Execute performs the transfer atomically.
func (s *TransferService) Execute(ctx context.Context, req *domain.TransferRequest) *domain.MoneyOperationResult {
	if req == nil {
		return s.env.fail(domain.OperationTransfer, util.ErrMissingRequest)
	}
	return execute(ctx, s.env, req, s.Validate, s.transfer)
}

func (s *TransferService) transfer(ctx context.Context, q repository.DBExecutor, req *domain.TransferRequest) (*domain.MoneyOperationResult, error) {
	if _, err := s.env.Balances.EnsureSufficientBalance(ctx, q, req.UserID, req.CurrencyID, req.Amount); err != nil {
		return nil, err
	}

	tx := domain.NewTransaction(req.UserID, req.RecipientID, req.CurrencyID, req.Amount, domain.TransactionTypeTransfer, req.Comment, nil)
	if err := s.env.TxLog.AddTransaction(ctx, q, tx); err != nil {
		return nil, err
	}

	if err := s.env.Balances.TransferBalance(ctx, q, req.UserID, req.RecipientID, req.CurrencyID, req.Amount); err != nil {
		return nil, err
	}

	sender, err := s.env.Balances.GetBalance(ctx, q, req.UserID, req.CurrencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch sender balance: %w", err)
	}
	return domain.Succeeded(domain.TransferResult{SenderBalance: sender.Amount}, tx.ID), nil
}
