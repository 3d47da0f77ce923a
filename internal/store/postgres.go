package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/9-8-7-6/vito/internal/models"
)

// NewDB opens a postgres connection through gorm. TranslateError maps
// driver-level unique violations onto gorm.ErrDuplicatedKey.
func NewDB(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: false,
	}), &gorm.Config{TranslateError: true})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Asset{},
		&models.Transaction{},
	)
}

// Ledger is the gorm-backed LedgerStore. RunAtomic wraps gorm's transaction
// support; the store handed to fn routes every call through the pending
// transaction, so the whole unit commits or rolls back together.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) RunAtomic(ctx context.Context, fn func(LedgerStore) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Ledger{db: tx})
	})
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

func (l *Ledger) GetOrCreateAccount(ctx context.Context, username string, defaultBalance decimal.Decimal) (*models.Account, bool, error) {
	var account models.Account
	err := l.db.WithContext(ctx).First(&account, "username = ?", username).Error
	if err == nil {
		return &account, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	account = models.Account{Username: username, Balance: defaultBalance}
	if err := l.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, false, mapErr(err)
	}
	return &account, true, nil
}

func (l *Ledger) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := l.db.WithContext(ctx).First(&account, "username = ?", username).Error; err != nil {
		return nil, mapErr(err)
	}
	return &account, nil
}

func (l *Ledger) SaveAccount(ctx context.Context, account *models.Account) error {
	return mapErr(l.db.WithContext(ctx).Save(account).Error)
}

func (l *Ledger) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := l.db.WithContext(ctx).Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (l *Ledger) GetAsset(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := l.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &asset, nil
}

func (l *Ledger) GetAssetByType(ctx context.Context, username, assetType string) (*models.Asset, error) {
	var asset models.Asset
	err := l.db.WithContext(ctx).
		First(&asset, "account_username = ? AND asset_type = ?", username, assetType).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &asset, nil
}

func (l *Ledger) CreateAsset(ctx context.Context, asset *models.Asset) error {
	return mapErr(l.db.WithContext(ctx).Create(asset).Error)
}

func (l *Ledger) SaveAsset(ctx context.Context, asset *models.Asset) error {
	return mapErr(l.db.WithContext(ctx).Save(asset).Error)
}

func (l *Ledger) DeleteAsset(ctx context.Context, id uint) error {
	res := l.db.WithContext(ctx).Delete(&models.Asset{}, "id = ?", id)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (l *Ledger) ListAssets(ctx context.Context, username string) ([]models.Asset, error) {
	var assets []models.Asset
	if err := l.db.WithContext(ctx).
		Where("account_username = ?", username).
		Order("created_at DESC").
		Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (l *Ledger) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var record models.Transaction
	if err := l.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &record, nil
}

func (l *Ledger) CreateTransaction(ctx context.Context, record *models.Transaction) error {
	return mapErr(l.db.WithContext(ctx).Create(record).Error)
}

func (l *Ledger) SaveTransaction(ctx context.Context, record *models.Transaction) error {
	return mapErr(l.db.WithContext(ctx).Save(record).Error)
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id uint) error {
	res := l.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (l *Ledger) ListTransactions(ctx context.Context, username string) ([]models.Transaction, error) {
	var records []models.Transaction
	if err := l.db.WithContext(ctx).
		Where("from_account = ? OR to_account = ?", username, username).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (l *Ledger) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := l.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (l *Ledger) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := l.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (l *Ledger) CreateUser(ctx context.Context, user *models.User) error {
	return mapErr(l.db.WithContext(ctx).Create(user).Error)
}

func (l *Ledger) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := l.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
