// internal/service/welcome_bonus_service.go
package service

import (
	"context"
	"fmt"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

// WelcomeBonusService grants a new user the default amount of every currency
// flagged as default for new users, paid by the bank account.
//
// It does not remember who was already granted; callers grant once per registration.
type WelcomeBonusService struct {
	env *OperationEnv
}

var _ OperationService[*domain.WelcomeBonusRequest] = (*WelcomeBonusService)(nil)

// NewWelcomeBonusService creates a WelcomeBonusService.
func NewWelcomeBonusService(env *OperationEnv) *WelcomeBonusService {
	return &WelcomeBonusService{env: env}
}

// Validate checks that the new user exists and is not the bank account. The base
// amount and currency are unused; an initiating user, when set, must exist.
func (s *WelcomeBonusService) Validate(ctx context.Context, req *domain.WelcomeBonusRequest) error {
	if req == nil {
		return util.ErrMissingRequest
	}
	if req.UserID != 0 {
		if _, err := s.env.Users.GetUserByID(ctx, s.env.DBExecutor, req.UserID); err != nil {
			return fmt.Errorf("initiating user %d: %w", req.UserID, err)
		}
	}
	user, err := s.env.Users.GetUserByID(ctx, s.env.DBExecutor, req.NewUserID)
	if err != nil {
		return fmt.Errorf("new user %d: %w", req.NewUserID, err)
	}
	if user.IsBankAccount {
		return util.ErrBankAccountRecipient
	}
	return nil
}

// Execute grants the bonus atomically: either every currency is granted or none.
func (s *WelcomeBonusService) Execute(ctx context.Context, req *domain.WelcomeBonusRequest) *domain.MoneyOperationResult {
	if req == nil {
		return s.env.fail(domain.OperationWelcomeBonus, util.ErrMissingRequest)
	}
	return execute(ctx, s.env, req, s.Validate, s.grant)
}

func (s *WelcomeBonusService) grant(ctx context.Context, q repository.DBExecutor, req *domain.WelcomeBonusRequest) (*domain.MoneyOperationResult, error) {
	bank, err := s.env.Users.GetBankAccount(ctx, q)
	if err != nil {
		return nil, err
	}
	currencies, err := s.env.Currencies.GetDefaultCurrencies(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list default currencies: %w", err)
	}

	grants := make([]domain.BonusGrant, 0, len(currencies))
	ids := make([]int64, 0, len(currencies))
	for _, currency := range currencies {
		if !currency.DefaultAmount.IsPositive() {
			continue
		}
		if err := s.env.Balances.TransferBalance(ctx, q, bank.ID, req.NewUserID, currency.ID, currency.DefaultAmount); err != nil {
			return nil, fmt.Errorf("bonus in %s: %w", currency.Code, err)
		}
		tx := domain.NewTransaction(bank.ID, req.NewUserID, currency.ID, currency.DefaultAmount, domain.TransactionTypeTransfer, req.Comment, nil)
		if err := s.env.TxLog.AddTransaction(ctx, q, tx); err != nil {
			return nil, err
		}
		grants = append(grants, domain.BonusGrant{
			CurrencyID:    currency.ID,
			CurrencyCode:  currency.Code,
			Amount:        currency.DefaultAmount,
			TransactionID: tx.ID,
		})
		ids = append(ids, tx.ID)
	}
	return domain.Succeeded(domain.WelcomeBonusResult{Grants: grants}, ids...), nil
}
