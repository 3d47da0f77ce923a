package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/9-8-7-6/vito/internal/models"
)

// TransactionPatch carries the fields of a partial update. Nil means "keep
// the original value"; an empty string in FromAccount, ToAccount or
// AssetType clears the field.
type TransactionPatch struct {
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	AssetType   *string
	FromAccount *string
	ToAccount   *string
	Note        *string
}

// mergeTransaction overlays patch onto orig and returns the merged record.
// The result is not validated here; asset type resolution needs the store
// and happens in the service. A record merged into a transfer drops its
// asset reference, since transfers never carry one.
func mergeTransaction(orig models.Transaction, patch TransactionPatch) models.Transaction {
	merged := orig
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Amount != nil {
		merged.Amount = *patch.Amount
	}
	if patch.FromAccount != nil {
		merged.FromAccount = optional(*patch.FromAccount)
	}
	if patch.ToAccount != nil {
		merged.ToAccount = optional(*patch.ToAccount)
	}
	if patch.Note != nil {
		merged.Note = *patch.Note
	}
	if merged.Type == models.TransactionTransfer {
		merged.AssetID = nil
	}
	return merged
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
