package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9-8-7-6/vito/internal/models"
)

func TestMemoryGetOrCreateAccount(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	account, created, err := mem.GetOrCreateAccount(ctx, "alice", decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("10.00")))

	again, created, err := mem.GetOrCreateAccount(ctx, "alice", decimal.RequireFromString("99.00"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, again.Balance.Equal(decimal.RequireFromString("10.00")),
		"existing account must keep its balance, got %s", again.Balance)
}

func TestMemoryRunAtomicCommit(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	err := mem.RunAtomic(ctx, func(st LedgerStore) error {
		_, _, err := st.GetOrCreateAccount(ctx, "alice", decimal.Zero)
		if err != nil {
			return err
		}
		account, err := st.GetAccount(ctx, "alice")
		if err != nil {
			return err
		}
		account.Balance = decimal.RequireFromString("42.00")
		return st.SaveAccount(ctx, account)
	})
	require.NoError(t, err)

	account, err := mem.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("42.00")))
}

func TestMemoryRunAtomicRollback(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")

	err := mem.RunAtomic(ctx, func(st LedgerStore) error {
		if _, _, err := st.GetOrCreateAccount(ctx, "alice", decimal.Zero); err != nil {
			return err
		}
		if err := st.CreateAsset(ctx, &models.Asset{AccountUsername: "alice", AssetType: "cash"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = mem.GetAccount(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mem.GetAssetByType(ctx, "alice", "cash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDuplicateAsset(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.CreateAsset(ctx, &models.Asset{AccountUsername: "alice", AssetType: "cash"}))
	err := mem.CreateAsset(ctx, &models.Asset{AccountUsername: "alice", AssetType: "cash"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, mem.CreateAsset(ctx, &models.Asset{AccountUsername: "bob", AssetType: "cash"}))
}

func TestMemoryListTransactionsMatchesEitherSide(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()
	alice, bob, carol := "alice", "bob", "carol"

	require.NoError(t, mem.CreateTransaction(ctx, &models.Transaction{
		Type: models.TransactionTransfer, FromAccount: &alice, ToAccount: &bob,
	}))
	require.NoError(t, mem.CreateTransaction(ctx, &models.Transaction{
		Type: models.TransactionTransfer, FromAccount: &carol, ToAccount: &alice,
	}))
	require.NoError(t, mem.CreateTransaction(ctx, &models.Transaction{
		Type: models.TransactionTransfer, FromAccount: &bob, ToAccount: &carol,
	}))

	records, err := mem.ListTransactions(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
