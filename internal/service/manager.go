// internal/service/manager.go
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"coinledger/internal/domain"
	"coinledger/internal/metrics"
	"coinledger/internal/notify"
	"coinledger/internal/util"
)

// MoneyOperations is the single dependency callers need to run money operations.
type MoneyOperations interface {
	Transfer(ctx context.Context, req *domain.TransferRequest) *domain.MoneyOperationResult
	Deposit(ctx context.Context, req *domain.DepositRequest) *domain.MoneyOperationResult
	Convert(ctx context.Context, req *domain.ConversionRequest) *domain.MoneyOperationResult
	GrantWelcomeBonus(ctx context.Context, req *domain.WelcomeBonusRequest) *domain.MoneyOperationResult
	// Execute dispatches any of the four request types.
	Execute(ctx context.Context, op domain.MoneyOperation) *domain.MoneyOperationResult
}

// Manager delegates each operation to its service, records metrics and, once an
// operation has committed, notifies subscribers synchronously.
type Manager struct {
	transfer     OperationService[*domain.TransferRequest]
	deposit      OperationService[*domain.DepositRequest]
	conversion   OperationService[*domain.ConversionRequest]
	welcomeBonus OperationService[*domain.WelcomeBonusRequest]
	notifier     notify.Notifier
	recorder     *metrics.Recorder
	logger       *slog.Logger
}

var _ MoneyOperations = (*Manager)(nil)

// NewManager creates a Manager. notifier and recorder may be nil.
func NewManager(
	transfer OperationService[*domain.TransferRequest],
	deposit OperationService[*domain.DepositRequest],
	conversion OperationService[*domain.ConversionRequest],
	welcomeBonus OperationService[*domain.WelcomeBonusRequest],
	notifier notify.Notifier,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) *Manager {
	if logger == nil {
		logger = util.GetLogger()
	}
	return &Manager{
		transfer:     transfer,
		deposit:      deposit,
		conversion:   conversion,
		welcomeBonus: welcomeBonus,
		notifier:     notifier,
		recorder:     recorder,
		logger:       logger,
	}
}

// NewManagerFromEnv builds the four services over env and wraps them in a Manager.
func NewManagerFromEnv(env *OperationEnv, notifier notify.Notifier, recorder *metrics.Recorder) *Manager {
	return NewManager(
		NewTransferService(env),
		NewDepositService(env),
		NewConversionService(env),
		NewWelcomeBonusService(env),
		notifier,
		recorder,
		env.logger(),
	)
}

// Transfer runs a transfer.
func (m *Manager) Transfer(ctx context.Context, req *domain.TransferRequest) *domain.MoneyOperationResult {
	return run(ctx, m, m.transfer, req, func(r *domain.TransferRequest) []int64 {
		return []int64{r.UserID, r.RecipientID}
	})
}

// Deposit runs a deposit.
func (m *Manager) Deposit(ctx context.Context, req *domain.DepositRequest) *domain.MoneyOperationResult {
	return run(ctx, m, m.deposit, req, func(r *domain.DepositRequest) []int64 {
		return []int64{r.UserID}
	})
}

// Convert runs a currency conversion.
func (m *Manager) Convert(ctx context.Context, req *domain.ConversionRequest) *domain.MoneyOperationResult {
	return run(ctx, m, m.conversion, req, func(r *domain.ConversionRequest) []int64 {
		return []int64{r.UserID}
	})
}

// GrantWelcomeBonus runs a welcome bonus grant.
func (m *Manager) GrantWelcomeBonus(ctx context.Context, req *domain.WelcomeBonusRequest) *domain.MoneyOperationResult {
	return run(ctx, m, m.welcomeBonus, req, func(r *domain.WelcomeBonusRequest) []int64 {
		return []int64{r.NewUserID}
	})
}

// Execute dispatches op to the matching operation.
func (m *Manager) Execute(ctx context.Context, op domain.MoneyOperation) *domain.MoneyOperationResult {
	switch req := op.(type) {
	case *domain.TransferRequest:
		return m.Transfer(ctx, req)
	case *domain.DepositRequest:
		return m.Deposit(ctx, req)
	case *domain.ConversionRequest:
		return m.Convert(ctx, req)
	case *domain.WelcomeBonusRequest:
		return m.GrantWelcomeBonus(ctx, req)
	case nil:
		return domain.Failed(domain.FailureValidation, util.ErrMissingRequest.Error())
	default:
		return domain.Failed(domain.FailureValidation, util.ErrUnsupportedOperation.Error())
	}
}

func run[R domain.MoneyOperation](
	ctx context.Context,
	m *Manager,
	svc OperationService[R],
	req R,
	affected func(R) []int64,
) *domain.MoneyOperationResult {
	kind := req.Kind()
	start := time.Now()
	result := svc.Execute(ctx, req)
	m.recorder.ObserveOperation(string(kind), outcome(result), time.Since(start))

	if result.Success && m.notifier != nil {
		event := notify.NewEvent(string(kind), affected(req), result.TransactionIDs)
		// The operation has committed; a failed notification does not change its result.
		if err := m.notifier.Notify(ctx, event); err != nil {
			m.logger.Error("Failed to publish transactions-changed event", "kind", kind, "event_id", event.EventID, "error", err)
		}
	}
	return result
}

func outcome(result *domain.MoneyOperationResult) string {
	if result.Success {
		return "success"
	}
	return strings.ToLower(string(result.Failure))
}
