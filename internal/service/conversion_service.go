// internal/service/conversion_service.go
package service

import (
	"context"
	"fmt"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

// ConversionService exchanges one currency for another through the bank account.
//
// The user pays Amount plus a fee of Amount * source fee percentage, both in the
// source currency. The bank pays the converted amount in the target currency.
type ConversionService struct {
	env *OperationEnv
}

var _ OperationService[*domain.ConversionRequest] = (*ConversionService)(nil)

// NewConversionService creates a ConversionService.
func NewConversionService(env *OperationEnv) *ConversionService {
	return &ConversionService{env: env}
}

// Validate checks the common fields and that the target currency exists, is active
// and differs from the source.
func (s *ConversionService) Validate(ctx context.Context, req *domain.ConversionRequest) error {
	if req == nil {
		return util.ErrMissingRequest
	}
	if req.CurrencyID == req.TargetCurrencyID {
		return util.ErrSameCurrencyConversion
	}
	if err := s.env.validateBase(ctx, req.OperationBase); err != nil {
		return err
	}
	if _, err := s.env.activeCurrency(ctx, s.env.DBExecutor, req.TargetCurrencyID); err != nil {
		return fmt.Errorf("target %w", err)
	}
	return nil
}

// Execute performs the conversion atomically.
func (s *ConversionService) Execute(ctx context.Context, req *domain.ConversionRequest) *domain.MoneyOperationResult {
	if req == nil {
		return s.env.fail(domain.OperationConversion, util.ErrMissingRequest)
	}
	return execute(ctx, s.env, req, s.Validate, s.convert)
}

func (s *ConversionService) convert(ctx context.Context, q repository.DBExecutor, req *domain.ConversionRequest) (*domain.MoneyOperationResult, error) {
	from, err := s.env.activeCurrency(ctx, q, req.CurrencyID)
	if err != nil {
		return nil, err
	}
	to, err := s.env.activeCurrency(ctx, q, req.TargetCurrencyID)
	if err != nil {
		return nil, fmt.Errorf("target %w", err)
	}
	// Looked up per call; its balances change with every conversion.
	bank, err := s.env.Users.GetBankAccount(ctx, q)
	if err != nil {
		return nil, err
	}

	converted, rate := s.env.Converter.ConvertBetween(req.Amount, from, to)
	if !converted.IsPositive() {
		return nil, fmt.Errorf("converted amount rounds to zero: %w", util.ErrInvalidAmount)
	}
	fee := from.ConversionFee(req.Amount)

	if _, err := s.env.Balances.EnsureSufficientBalance(ctx, q, req.UserID, from.ID, req.Amount.Add(fee)); err != nil {
		return nil, err
	}

	withdrawal := domain.NewTransaction(req.UserID, bank.ID, from.ID, req.Amount, domain.TransactionTypeConversion, req.Comment, nil)
	if err := s.env.TxLog.AddTransaction(ctx, q, withdrawal); err != nil {
		return nil, err
	}
	parentID := withdrawal.ID

	deposit := domain.NewTransaction(bank.ID, req.UserID, to.ID, converted, domain.TransactionTypeConversion, req.Comment, &parentID)
	if err := s.env.TxLog.AddTransaction(ctx, q, deposit); err != nil {
		return nil, err
	}

	var feeTx *domain.Transaction
	if fee.IsPositive() {
		feeTx = domain.NewTransaction(req.UserID, bank.ID, from.ID, fee, domain.TransactionTypeFee, req.Comment, &parentID)
		if err := s.env.TxLog.AddTransaction(ctx, q, feeTx); err != nil {
			return nil, err
		}
	}

	if err := s.env.Balances.TransferBalance(ctx, q, req.UserID, bank.ID, from.ID, req.Amount); err != nil {
		return nil, fmt.Errorf("source leg: %w", err)
	}
	if err := s.env.Balances.TransferBalance(ctx, q, bank.ID, req.UserID, to.ID, converted); err != nil {
		return nil, fmt.Errorf("bank reserve in %s: %w", to.Code, err)
	}
	if feeTx != nil {
		if err := s.env.Balances.TransferBalance(ctx, q, req.UserID, bank.ID, from.ID, fee); err != nil {
			return nil, fmt.Errorf("fee leg: %w", err)
		}
	}

	data := domain.ConversionResult{
		ConvertedAmount:      converted,
		ExchangeRate:         rate,
		Fee:                  fee,
		DepositTransactionID: deposit.ID,
	}
	ids := []int64{withdrawal.ID, deposit.ID}
	if feeTx != nil {
		feeID := feeTx.ID
		data.FeeTransactionID = &feeID
		ids = append(ids, feeID)
	}
	return domain.Succeeded(data, ids...), nil
}
