package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9-8-7-6/vito/internal/models"
)

func TestMergeTransaction(t *testing.T) {
	assetID := uint(4)
	orig := models.Transaction{
		ID:          1,
		Type:        models.TransactionExpense,
		Amount:      d("30.00"),
		AssetID:     &assetID,
		FromAccount: strPtr("alice"),
		Note:        "groceries",
	}

	t.Run("empty patch keeps original", func(t *testing.T) {
		merged := mergeTransaction(orig, TransactionPatch{})
		assert.Equal(t, orig.Type, merged.Type)
		assert.True(t, orig.Amount.Equal(merged.Amount))
		assert.Equal(t, orig.AssetID, merged.AssetID)
		assert.Equal(t, orig.FromAccount, merged.FromAccount)
		assert.Equal(t, orig.Note, merged.Note)
	})

	t.Run("amount and note overlay", func(t *testing.T) {
		amount := d("50.00")
		note := "monthly shop"
		merged := mergeTransaction(orig, TransactionPatch{Amount: &amount, Note: &note})
		assert.True(t, merged.Amount.Equal(d("50.00")))
		assert.Equal(t, "monthly shop", merged.Note)
		assert.Equal(t, orig.Type, merged.Type)
	})

	t.Run("empty string clears account fields", func(t *testing.T) {
		withTo := orig
		withTo.Type = models.TransactionTransfer
		withTo.AssetID = nil
		withTo.ToAccount = strPtr("bob")
		merged := mergeTransaction(withTo, TransactionPatch{ToAccount: strPtr("")})
		assert.Nil(t, merged.ToAccount)
	})

	t.Run("merging into transfer drops asset", func(t *testing.T) {
		transfer := models.TransactionTransfer
		merged := mergeTransaction(orig, TransactionPatch{Type: &transfer, ToAccount: strPtr("bob")})
		assert.Nil(t, merged.AssetID)
		require.NotNil(t, merged.ToAccount)
		assert.Equal(t, "bob", *merged.ToAccount)
	})

	t.Run("original is not mutated", func(t *testing.T) {
		amount := d("99.99")
		_ = mergeTransaction(orig, TransactionPatch{Amount: &amount})
		assert.True(t, orig.Amount.Equal(d("30.00")))
	})
}
