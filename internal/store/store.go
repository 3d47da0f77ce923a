package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/9-8-7-6/vito/internal/models"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate record")
)

// LedgerStore is the durable home of accounts, assets and transactions.
// All reads and writes of one ledger operation must happen inside a single
// RunAtomic unit so that a balance check-then-write is not split across
// commits.
type LedgerStore interface {
	// RunAtomic executes fn against a store whose reads and writes commit
	// or roll back as one unit. fn returning an error aborts the unit.
	RunAtomic(ctx context.Context, fn func(LedgerStore) error) error

	GetOrCreateAccount(ctx context.Context, username string, defaultBalance decimal.Decimal) (*models.Account, bool, error)
	GetAccount(ctx context.Context, username string) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error
	ListAccounts(ctx context.Context) ([]models.Account, error)

	GetAsset(ctx context.Context, id uint) (*models.Asset, error)
	GetAssetByType(ctx context.Context, username, assetType string) (*models.Asset, error)
	CreateAsset(ctx context.Context, asset *models.Asset) error
	SaveAsset(ctx context.Context, asset *models.Asset) error
	DeleteAsset(ctx context.Context, id uint) error
	ListAssets(ctx context.Context, username string) ([]models.Asset, error)

	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, record *models.Transaction) error
	SaveTransaction(ctx context.Context, record *models.Transaction) error
	DeleteTransaction(ctx context.Context, id uint) error
	ListTransactions(ctx context.Context, username string) ([]models.Transaction, error)

	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	CountUsers(ctx context.Context) (int64, error)
}
