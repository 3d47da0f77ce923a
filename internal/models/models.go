package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name     string `gorm:"size:50;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255" json:"-"`
}

// Account is keyed by username. Its balance equals the net effect of every
// transaction referencing it plus asset seed adjustments.
type Account struct {
	Username  string          `gorm:"primaryKey;size:255" json:"username"`
	Balance   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Asset is a per-account sub-balance typed by category. (account, asset_type)
// is unique; asset balances track only income and expense transactions.
type Asset struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AccountUsername string          `gorm:"size:255;not null;uniqueIndex:idx_account_asset_type" json:"account"`
	AssetType       string          `gorm:"size:255;not null;uniqueIndex:idx_account_asset_type" json:"asset_type"`
	Balance         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type TransactionType string

const (
	TransactionIncome   TransactionType = "INCOME"
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionTransfer TransactionType = "TRANSFER"
)

// Transaction records one balance-affecting event. Amount is always positive;
// the type decides the direction of each delta. FromAccount is the primary
// account for all three types, ToAccount only exists on transfers, and
// AssetID only on income/expense.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Reference   string          `gorm:"size:36;uniqueIndex" json:"reference"`
	Type        TransactionType `gorm:"size:16;not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	AssetID     *uint           `gorm:"index" json:"asset_id,omitempty"`
	FromAccount *string         `gorm:"size:255;index" json:"from_account,omitempty"`
	ToAccount   *string         `gorm:"size:255;index" json:"to_account,omitempty"`
	Note        string          `gorm:"size:1024" json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
