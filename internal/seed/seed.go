package seed

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/9-8-7-6/vito/internal/ledger"
	"github.com/9-8-7-6/vito/internal/models"
	"github.com/9-8-7-6/vito/internal/store"
)

const (
	seedPassword = "password123"
	seedEmail    = "demo@vito.local"
)

// Run provisions a demo user and opening ledger data. All balances are
// created through the ledger service so the seeded state satisfies the same
// invariants as API traffic.
func Run(ctx context.Context, st store.LedgerStore, svc *ledger.Service, log *zap.Logger) error {
	count, err := st.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info("seed already applied, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{Name: "Demo User", Email: seedEmail, Password: string(hash)}
	if err := st.CreateUser(ctx, &user); err != nil {
		return err
	}

	if _, err := svc.CreateAsset(ctx, "alice", "cash", decimal.RequireFromString("1000.00")); err != nil {
		return err
	}
	if _, err := svc.CreateAsset(ctx, "bob", "cash", decimal.RequireFromString("250.00")); err != nil {
		return err
	}
	if _, err := svc.CreateTransaction(ctx, ledger.CreateTransactionInput{
		Type:        models.TransactionExpense,
		Amount:      decimal.RequireFromString("42.50"),
		AssetType:   "groceries",
		FromAccount: "alice",
		Note:        "weekly shop",
	}); err != nil {
		return err
	}
	if _, err := svc.CreateTransaction(ctx, ledger.CreateTransactionInput{
		Type:        models.TransactionTransfer,
		Amount:      decimal.RequireFromString("100.00"),
		FromAccount: "alice",
		ToAccount:   "bob",
		Note:        "rent split",
	}); err != nil {
		return err
	}

	log.Info("seeded demo user and ledger data",
		zap.String("email", seedEmail),
		zap.String("password", seedPassword))
	return nil
}
