package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/9-8-7-6/vito/internal/models"
)

// Memory is an in-process LedgerStore with real all-or-nothing RunAtomic
// semantics: the unit runs against a snapshot that replaces the live state
// only when fn succeeds. Used by the test suite and local experiments.
type Memory struct {
	mu           sync.Mutex
	accounts     map[string]models.Account
	assets       map[uint]models.Asset
	transactions map[uint]models.Transaction
	users        map[uint]models.User
	assetSeq     uint
	txSeq        uint
	userSeq      uint
	inUnit       bool
}

func NewMemory() *Memory {
	return &Memory{
		accounts:     map[string]models.Account{},
		assets:       map[uint]models.Asset{},
		transactions: map[uint]models.Transaction{},
		users:        map[uint]models.User{},
	}
}

func (m *Memory) snapshot() *Memory {
	snap := &Memory{
		accounts:     make(map[string]models.Account, len(m.accounts)),
		assets:       make(map[uint]models.Asset, len(m.assets)),
		transactions: make(map[uint]models.Transaction, len(m.transactions)),
		users:        make(map[uint]models.User, len(m.users)),
		assetSeq:     m.assetSeq,
		txSeq:        m.txSeq,
		userSeq:      m.userSeq,
		inUnit:       true,
	}
	for k, v := range m.accounts {
		snap.accounts[k] = v
	}
	for k, v := range m.assets {
		snap.assets[k] = v
	}
	for k, v := range m.transactions {
		snap.transactions[k] = v
	}
	for k, v := range m.users {
		snap.users[k] = v
	}
	return snap
}

func (m *Memory) RunAtomic(ctx context.Context, fn func(LedgerStore) error) error {
	if m.inUnit {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(snap); err != nil {
		return err
	}
	m.accounts = snap.accounts
	m.assets = snap.assets
	m.transactions = snap.transactions
	m.users = snap.users
	m.assetSeq = snap.assetSeq
	m.txSeq = snap.txSeq
	m.userSeq = snap.userSeq
	return nil
}

func (m *Memory) lock() func() {
	if m.inUnit {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) GetOrCreateAccount(ctx context.Context, username string, defaultBalance decimal.Decimal) (*models.Account, bool, error) {
	defer m.lock()()
	if account, ok := m.accounts[username]; ok {
		return &account, false, nil
	}
	now := time.Now()
	account := models.Account{Username: username, Balance: defaultBalance, CreatedAt: now, UpdatedAt: now}
	m.accounts[username] = account
	return &account, true, nil
}

func (m *Memory) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	defer m.lock()()
	account, ok := m.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (m *Memory) SaveAccount(ctx context.Context, account *models.Account) error {
	defer m.lock()()
	account.UpdatedAt = time.Now()
	m.accounts[account.Username] = *account
	return nil
}

func (m *Memory) ListAccounts(ctx context.Context) ([]models.Account, error) {
	defer m.lock()()
	accounts := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Username < accounts[j].Username })
	return accounts, nil
}

func (m *Memory) GetAsset(ctx context.Context, id uint) (*models.Asset, error) {
	defer m.lock()()
	asset, ok := m.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &asset, nil
}

func (m *Memory) GetAssetByType(ctx context.Context, username, assetType string) (*models.Asset, error) {
	defer m.lock()()
	for _, asset := range m.assets {
		if asset.AccountUsername == username && asset.AssetType == assetType {
			return &asset, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateAsset(ctx context.Context, asset *models.Asset) error {
	defer m.lock()()
	for _, existing := range m.assets {
		if existing.AccountUsername == asset.AccountUsername && existing.AssetType == asset.AssetType {
			return ErrDuplicate
		}
	}
	m.assetSeq++
	asset.ID = m.assetSeq
	now := time.Now()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	m.assets[asset.ID] = *asset
	return nil
}

func (m *Memory) SaveAsset(ctx context.Context, asset *models.Asset) error {
	defer m.lock()()
	if _, ok := m.assets[asset.ID]; !ok {
		return ErrNotFound
	}
	asset.UpdatedAt = time.Now()
	m.assets[asset.ID] = *asset
	return nil
}

func (m *Memory) DeleteAsset(ctx context.Context, id uint) error {
	defer m.lock()()
	if _, ok := m.assets[id]; !ok {
		return ErrNotFound
	}
	delete(m.assets, id)
	return nil
}

func (m *Memory) ListAssets(ctx context.Context, username string) ([]models.Asset, error) {
	defer m.lock()()
	var assets []models.Asset
	for _, asset := range m.assets {
		if asset.AccountUsername == username {
			assets = append(assets, asset)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets, nil
}

func (m *Memory) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	defer m.lock()()
	record, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *Memory) CreateTransaction(ctx context.Context, record *models.Transaction) error {
	defer m.lock()()
	m.txSeq++
	record.ID = m.txSeq
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	m.transactions[record.ID] = *record
	return nil
}

func (m *Memory) SaveTransaction(ctx context.Context, record *models.Transaction) error {
	defer m.lock()()
	if _, ok := m.transactions[record.ID]; !ok {
		return ErrNotFound
	}
	record.UpdatedAt = time.Now()
	m.transactions[record.ID] = *record
	return nil
}

func (m *Memory) DeleteTransaction(ctx context.Context, id uint) error {
	defer m.lock()()
	if _, ok := m.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *Memory) ListTransactions(ctx context.Context, username string) ([]models.Transaction, error) {
	defer m.lock()()
	var records []models.Transaction
	for _, record := range m.transactions {
		from := record.FromAccount != nil && *record.FromAccount == username
		to := record.ToAccount != nil && *record.ToAccount == username
		if from || to {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (m *Memory) GetUser(ctx context.Context, id uint) (*models.User, error) {
	defer m.lock()()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer m.lock()()
	for _, user := range m.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	defer m.lock()()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	m.userSeq++
	user.ID = m.userSeq
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) CountUsers(ctx context.Context) (int64, error) {
	defer m.lock()()
	return int64(len(m.users)), nil
}
