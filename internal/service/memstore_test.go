// internal/service/memstore_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"coinledger/internal/domain"
	"coinledger/internal/repository"
	"coinledger/internal/util"
	"coinledger/pkg/db"

	"github.com/shopspring/decimal"
)

// stubExecutor satisfies repository.DBExecutor for the in-memory repositories, which never query.
type stubExecutor struct{}

var errNoSQL = errors.New("in-memory store does not run SQL")

func (stubExecutor) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}

func (stubExecutor) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}

func (stubExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}

func (stubExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return &sql.Row{}
}

type balanceKey struct{ userID, currencyID int64 }

// memStore is an in-memory ledger store. A transaction snapshots the whole store on
// begin and restores it on rollback, which is enough for sequential tests.
type memStore struct {
	mu           sync.Mutex
	users        map[int64]domain.User
	currencies   map[int64]domain.Currency
	balances     map[balanceKey]domain.UserBalance
	transactions []domain.Transaction
	nextID       int64

	// adjustHook, when set, runs before every balance adjustment and may fail it.
	adjustHook func(userID, currencyID int64, delta decimal.Decimal) error
	commits    int
	rollbacks  int
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[int64]domain.User),
		currencies: make(map[int64]domain.Currency),
		balances:   make(map[balanceKey]domain.UserBalance),
	}
}

type memSnapshot struct {
	users        map[int64]domain.User
	currencies   map[int64]domain.Currency
	balances     map[balanceKey]domain.UserBalance
	transactions []domain.Transaction
	nextID       int64
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		users:        make(map[int64]domain.User, len(s.users)),
		currencies:   make(map[int64]domain.Currency, len(s.currencies)),
		balances:     make(map[balanceKey]domain.UserBalance, len(s.balances)),
		transactions: append([]domain.Transaction(nil), s.transactions...),
		nextID:       s.nextID,
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.currencies {
		snap.currencies[k] = v
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.currencies = snap.currencies
	s.balances = snap.balances
	s.transactions = snap.transactions
	s.nextID = snap.nextID
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// memTx is both the transaction controller and the executor handed to repositories.
type memTx struct {
	stubExecutor
	store *memStore
	snap  memSnapshot
	done  bool
}

func (tx *memTx) Commit() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	tx.store.commits++
	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	tx.store.restore(tx.snap)
	tx.store.rollbacks++
	return nil
}

func (s *memStore) beginTx(context.Context, db.DBTxBeginner) (db.TxController, error) {
	return &memTx{store: s, snap: s.snapshot()}, nil
}

func (s *memStore) runner() *TxRunner {
	return NewTxRunner(nil, s.beginTx, db.CommitTx, db.RollbackTx)
}

func (s *memStore) balanceOf(userID, currencyID int64) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[balanceKey{userID, currencyID}]
	return b.Amount, ok
}

func (s *memStore) allTransactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.transactions...)
}

func (s *memStore) balanceRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.balances)
}

// memUsers implements repository.UserRepository.
type memUsers struct{ s *memStore }

func (r memUsers) CreateUser(_ context.Context, _ repository.DBExecutor, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || (u.IsBankAccount && user.IsBankAccount) {
			return util.ErrDuplicateEntry
		}
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) GetUserByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, util.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) GetUserByUsername(_ context.Context, _ repository.DBExecutor, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (r memUsers) GetBankAccount(_ context.Context, _ repository.DBExecutor) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.IsBankAccount {
			return &u, nil
		}
	}
	return nil, util.ErrBankAccountNotFound
}

// memCurrencies implements repository.CurrencyRepository.
type memCurrencies struct{ s *memStore }

func (r memCurrencies) CreateCurrency(_ context.Context, _ repository.DBExecutor, c *domain.Currency) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.currencies {
		if existing.Code == c.Code {
			return util.ErrDuplicateEntry
		}
	}
	c.ID = r.s.id()
	r.s.currencies[c.ID] = *c
	return nil
}

func (r memCurrencies) GetCurrencyByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.currencies[id]
	if !ok {
		return nil, util.ErrCurrencyNotFound
	}
	return &c, nil
}

func (r memCurrencies) GetCurrencyByCode(_ context.Context, _ repository.DBExecutor, code string) (*domain.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.currencies {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, util.ErrCurrencyNotFound
}

func (r memCurrencies) GetActiveCurrencies(_ context.Context, _ repository.DBExecutor) ([]domain.Currency, error) {
	list := r.filter(func(c domain.Currency) bool { return c.IsActive })
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (r memCurrencies) GetDefaultCurrencies(_ context.Context, _ repository.DBExecutor) ([]domain.Currency, error) {
	list := r.filter(func(c domain.Currency) bool { return c.IsActive && c.IsDefaultForNewUsers })
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r memCurrencies) DeactivateCurrency(_ context.Context, _ repository.DBExecutor, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.currencies[id]
	if !ok {
		return util.ErrCurrencyNotFound
	}
	c.IsActive = false
	r.s.currencies[id] = c
	return nil
}

func (r memCurrencies) filter(keep func(domain.Currency) bool) []domain.Currency {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []domain.Currency
	for _, c := range r.s.currencies {
		if keep(c) {
			list = append(list, c)
		}
	}
	return list
}

// memBalances implements repository.BalanceRepository.
type memBalances struct{ s *memStore }

func (r memBalances) GetBalance(_ context.Context, _ repository.DBExecutor, userID, currencyID int64) (*domain.UserBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[balanceKey{userID, currencyID}]
	if !ok {
		return nil, util.ErrBalanceNotFound
	}
	return &b, nil
}

func (r memBalances) CreateBalanceIfNotExists(_ context.Context, _ repository.DBExecutor, balance *domain.UserBalance) (*domain.UserBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := balanceKey{balance.UserID, balance.CurrencyID}
	if existing, ok := r.s.balances[key]; ok {
		return &existing, nil
	}
	row := *balance
	row.ID = r.s.id()
	r.s.balances[key] = row
	return &row, nil
}

func (r memBalances) AdjustBalance(_ context.Context, _ repository.DBExecutor, userID, currencyID int64, delta decimal.Decimal) error {
	if r.s.adjustHook != nil {
		if err := r.s.adjustHook(userID, currencyID, delta); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := balanceKey{userID, currencyID}
	b, ok := r.s.balances[key]
	if !ok {
		return util.ErrBalanceNotFound
	}
	next := b.Amount.Add(delta)
	if next.IsNegative() {
		return util.ErrInsufficientFunds
	}
	b.Amount = next
	b.LastUpdateTime = time.Now().UTC()
	r.s.balances[key] = b
	return nil
}

func (r memBalances) GetBalancesByUserID(_ context.Context, _ repository.DBExecutor, userID int64) ([]domain.UserBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []domain.UserBalance
	for k, b := range r.s.balances {
		if k.userID == userID {
			list = append(list, b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CurrencyID < list[j].CurrencyID })
	return list, nil
}

// memTransactions implements repository.TransactionRepository.
type memTransactions struct{ s *memStore }

func (r memTransactions) CreateTransaction(_ context.Context, _ repository.DBExecutor, tx *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx.ID = r.s.id()
	r.s.transactions = append(r.s.transactions, *tx)
	return nil
}

func (r memTransactions) GetTransactionByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, tx := range r.s.transactions {
		if tx.ID == id {
			return &tx, nil
		}
	}
	return nil, util.ErrTransactionNotFound
}

func (r memTransactions) GetChildTransactions(_ context.Context, _ repository.DBExecutor, parentID int64) ([]domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []domain.Transaction
	for _, tx := range r.s.transactions {
		if tx.ParentTransactionID != nil && *tx.ParentTransactionID == parentID {
			list = append(list, tx)
		}
	}
	return list, nil
}

func (r memTransactions) GetTransactionsByUserID(_ context.Context, _ repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Transaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		tx := r.s.transactions[i]
		if tx.FromUserID == userID || tx.ToUserID == userID {
			matched = append(matched, tx)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []domain.Transaction{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

var (
	_ repository.UserRepository        = memUsers{}
	_ repository.CurrencyRepository    = memCurrencies{}
	_ repository.BalanceRepository     = memBalances{}
	_ repository.TransactionRepository = memTransactions{}
)
