// internal/seed/seed_test.go
package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	return m.Called(ctx, q, user).Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetBankAccount(ctx context.Context, q repository.DBExecutor) (*domain.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCurrencyRepository struct{ mock.Mock }

func (m *MockCurrencyRepository) CreateCurrency(ctx context.Context, q repository.DBExecutor, c *domain.Currency) error {
	return m.Called(ctx, q, c).Error(0)
}

func (m *MockCurrencyRepository) GetCurrencyByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Currency, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) GetCurrencyByCode(ctx context.Context, q repository.DBExecutor, code string) (*domain.Currency, error) {
	args := m.Called(ctx, q, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) GetActiveCurrencies(ctx context.Context, q repository.DBExecutor) ([]domain.Currency, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) GetDefaultCurrencies(ctx context.Context, q repository.DBExecutor) ([]domain.Currency, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) DeactivateCurrency(ctx context.Context, q repository.DBExecutor, id int64) error {
	return m.Called(ctx, q, id).Error(0)
}

type MockBalanceRepository struct{ mock.Mock }

func (m *MockBalanceRepository) GetBalance(ctx context.Context, q repository.DBExecutor, userID, currencyID int64) (*domain.UserBalance, error) {
	args := m.Called(ctx, q, userID, currencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserBalance), args.Error(1)
}

func (m *MockBalanceRepository) CreateBalanceIfNotExists(ctx context.Context, q repository.DBExecutor, balance *domain.UserBalance) (*domain.UserBalance, error) {
	args := m.Called(ctx, q, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserBalance), args.Error(1)
}

func (m *MockBalanceRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, userID, currencyID int64, delta decimal.Decimal) error {
	return m.Called(ctx, q, userID, currencyID, delta).Error(0)
}

func (m *MockBalanceRepository) GetBalancesByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.UserBalance, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).([]domain.UserBalance), args.Error(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeeder_FreshDatabase(t *testing.T) {
	users := new(MockUserRepository)
	currencies := new(MockCurrencyRepository)
	balances := new(MockBalanceRepository)

	users.On("GetBankAccount", mock.Anything, nil).Return(nil, util.ErrBankAccountNotFound).Once()
	users.On("CreateUser", mock.Anything, nil, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == BankUsername && u.IsBankAccount
	})).Run(func(args mock.Arguments) {
		args.Get(2).(*domain.User).ID = 1
	}).Return(nil).Once()
	currencies.On("GetCurrencyByCode", mock.Anything, nil, "NKC").Return(nil, util.ErrCurrencyNotFound).Once()
	currencies.On("CreateCurrency", mock.Anything, nil, mock.MatchedBy(func(c *domain.Currency) bool {
		return c.Code == "NKC" && c.IsDefaultForNewUsers
	})).Run(func(args mock.Arguments) {
		args.Get(2).(*domain.Currency).ID = 10
	}).Return(nil).Once()
	balances.On("CreateBalanceIfNotExists", mock.Anything, nil, mock.MatchedBy(func(b *domain.UserBalance) bool {
		return b.UserID == 1 && b.CurrencyID == 10 && b.Amount.Equal(decimal.NewFromInt(500000))
	})).Return(&domain.UserBalance{ID: 5, UserID: 1, CurrencyID: 10, Amount: decimal.NewFromInt(500000)}, nil).Once()

	err := NewSeeder(users, currencies, balances, quietLogger()).Run(context.Background(), nil, DefaultCatalog()[:1])

	require.NoError(t, err)
	users.AssertExpectations(t)
	currencies.AssertExpectations(t)
	balances.AssertExpectations(t)
}

func TestSeeder_ExistingRowsAreKept(t *testing.T) {
	users := new(MockUserRepository)
	currencies := new(MockCurrencyRepository)
	balances := new(MockBalanceRepository)

	users.On("GetBankAccount", mock.Anything, nil).Return(&domain.User{ID: 1, Username: BankUsername, IsBankAccount: true}, nil).Once()
	currencies.On("GetCurrencyByCode", mock.Anything, nil, "USD").Return(&domain.Currency{ID: 11, Code: "USD"}, nil).Once()
	balances.On("CreateBalanceIfNotExists", mock.Anything, nil, mock.Anything).
		Return(&domain.UserBalance{ID: 6, UserID: 1, CurrencyID: 11, Amount: decimal.NewFromInt(42)}, nil).Once()

	err := NewSeeder(users, currencies, balances, quietLogger()).Run(context.Background(), nil, DefaultCatalog()[1:2])

	require.NoError(t, err)
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
	currencies.AssertNotCalled(t, "CreateCurrency", mock.Anything, mock.Anything, mock.Anything)
	balances.AssertExpectations(t)
}

func TestSeeder_PropagatesStoreErrors(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetBankAccount", mock.Anything, nil).Return(nil, errors.New("connection refused")).Once()

	err := NewSeeder(users, new(MockCurrencyRepository), new(MockBalanceRepository), quietLogger()).Run(context.Background(), nil, DefaultCatalog())

	assert.ErrorContains(t, err, "connection refused")
}

func TestDefaultCatalog(t *testing.T) {
	defaults := 0
	for _, entry := range DefaultCatalog() {
		assert.True(t, entry.Currency.ExchangeRate.IsPositive(), entry.Currency.Code)
		if entry.Currency.IsDefaultForNewUsers {
			defaults++
			assert.True(t, entry.Currency.DefaultAmount.Equal(decimal.NewFromInt(100)))
		}
	}
	assert.Equal(t, 1, defaults)
}
