// internal/service/fixture_test.go
package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"coinledger/internal/domain"
	"coinledger/internal/metrics"
	"coinledger/internal/notify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerFixture is a seeded in-memory ledger: a bank account, two users and four currencies.
type ledgerFixture struct {
	store    *memStore
	env      *OperationEnv
	manager  *Manager
	recorder *metrics.Recorder
	events   []notify.TransactionsChanged

	bank, alice, bob   domain.User
	nkc, usd, eur, xyz domain.Currency
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()
	users := memUsers{store}
	currencies := memCurrencies{store}
	balances := memBalances{store}
	transactions := memTransactions{store}
	q := stubExecutor{}

	f := &ledgerFixture{store: store}
	for _, u := range []*domain.User{
		domain.NewUser("bank", true),
		domain.NewUser("alice", false),
		domain.NewUser("bob", false),
	} {
		require.NoError(t, users.CreateUser(ctx, q, u))
		switch u.Username {
		case "bank":
			f.bank = *u
		case "alice":
			f.alice = *u
		case "bob":
			f.bob = *u
		}
	}

	seed := []*domain.Currency{
		{Code: "NKC", Name: "Nikcoin", ExchangeRate: dec("1"), IsActive: true, IsDefaultForNewUsers: true, DefaultAmount: dec("100")},
		{Code: "USD", Name: "US Dollar", ExchangeRate: dec("1.1"), ConversionFeePercentage: dec("0.02"), IsActive: true},
		{Code: "EUR", Name: "Euro", ExchangeRate: dec("1.0"), IsActive: true},
		{Code: "XYZ", Name: "Retired", ExchangeRate: dec("3"), IsActive: false},
	}
	for _, c := range seed {
		require.NoError(t, currencies.CreateCurrency(ctx, q, c))
	}
	f.nkc, f.usd, f.eur, f.xyz = *seed[0], *seed[1], *seed[2], *seed[3]

	f.setBalance(f.bank.ID, f.nkc.ID, "500000")
	f.setBalance(f.bank.ID, f.usd.ID, "1000")
	f.setBalance(f.bank.ID, f.eur.ID, "1000")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.env = &OperationEnv{
		Runner:     store.runner(),
		DBExecutor: q,
		Users:      users,
		Currencies: currencies,
		Balances:   NewBalanceEngine(balances),
		TxLog:      NewTransactionLog(users, currencies, transactions),
		Converter:  NewCurrencyConverter(q, currencies),
		Logger:     logger,
	}

	dispatcher := notify.NewDispatcher(logger)
	dispatcher.Subscribe(func(_ context.Context, e notify.TransactionsChanged) {
		f.events = append(f.events, e)
	})
	f.recorder = metrics.NewRecorder(prometheus.NewRegistry())
	f.manager = NewManagerFromEnv(f.env, dispatcher, f.recorder)
	return f
}

func (f *ledgerFixture) setBalance(userID, currencyID int64, amount string) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := balanceKey{userID, currencyID}
	row := domain.NewUserBalance(userID, currencyID, dec(amount))
	if existing, ok := f.store.balances[key]; ok {
		row.ID = existing.ID
	} else {
		row.ID = f.store.id()
	}
	f.store.balances[key] = *row
}

func (f *ledgerFixture) balance(t *testing.T, userID, currencyID int64) decimal.Decimal {
	t.Helper()
	amount, ok := f.store.balanceOf(userID, currencyID)
	require.True(t, ok, "no balance row for user %d currency %d", userID, currencyID)
	return amount
}

func base(userID, currencyID int64, amount string) domain.OperationBase {
	return domain.OperationBase{UserID: userID, CurrencyID: currencyID, Amount: dec(amount)}
}
