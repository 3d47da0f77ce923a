package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/9-8-7-6/vito/internal/models"
)

// Sign selects between applying a transaction's effect and reversing it.
type Sign int

const (
	Apply   Sign = 1
	Reverse Sign = -1
)

// AccountDelta is a signed balance change for one account.
type AccountDelta struct {
	Username string
	Amount   decimal.Decimal
}

// AssetDelta is a signed balance change for one asset.
type AssetDelta struct {
	AssetID uint
	Amount  decimal.Decimal
}

// Effect lists every balance change a transaction implies. Applying the
// negated effect of a previously applied transaction restores all touched
// balances exactly; decimal arithmetic keeps repeated apply/reverse cycles
// drift-free.
type Effect struct {
	Accounts []AccountDelta
	Assets   []AssetDelta
}

func (e Effect) negate() Effect {
	out := Effect{
		Accounts: make([]AccountDelta, len(e.Accounts)),
		Assets:   make([]AssetDelta, len(e.Assets)),
	}
	for i, d := range e.Accounts {
		out.Accounts[i] = AccountDelta{Username: d.Username, Amount: d.Amount.Neg()}
	}
	for i, d := range e.Assets {
		out.Assets[i] = AssetDelta{AssetID: d.AssetID, Amount: d.Amount.Neg()}
	}
	return out
}

// EffectOf computes the balance deltas for a transaction. The record must
// already satisfy validateShape; reversal of a stored record relies on the
// shape having been valid when it was written.
//
//	type       from_account  to_account  asset
//	INCOME     +amount       —           +amount
//	EXPENSE    -amount       —           -amount
//	TRANSFER   -amount       +amount     untouched
func EffectOf(record *models.Transaction, sign Sign) (Effect, error) {
	var eff Effect
	switch record.Type {
	case models.TransactionIncome:
		eff = incomeEffect(record)
	case models.TransactionExpense:
		eff = expenseEffect(record)
	case models.TransactionTransfer:
		eff = transferEffect(record)
	default:
		return Effect{}, &ValidationError{Field: "type", Reason: "unknown transaction type"}
	}
	if sign == Reverse {
		eff = eff.negate()
	}
	return eff, nil
}

func incomeEffect(record *models.Transaction) Effect {
	return Effect{
		Accounts: []AccountDelta{{Username: *record.FromAccount, Amount: record.Amount}},
		Assets:   []AssetDelta{{AssetID: *record.AssetID, Amount: record.Amount}},
	}
}

func expenseEffect(record *models.Transaction) Effect {
	return Effect{
		Accounts: []AccountDelta{{Username: *record.FromAccount, Amount: record.Amount.Neg()}},
		Assets:   []AssetDelta{{AssetID: *record.AssetID, Amount: record.Amount.Neg()}},
	}
}

func transferEffect(record *models.Transaction) Effect {
	return Effect{
		Accounts: []AccountDelta{
			{Username: *record.FromAccount, Amount: record.Amount.Neg()},
			{Username: *record.ToAccount, Amount: record.Amount},
		},
	}
}

// validateAmount enforces the boundary rule: positive, at most two
// fractional digits.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if amount.Exponent() < -2 {
		return &ValidationError{Field: "amount", Reason: "at most 2 fractional digits"}
	}
	return nil
}

// validateShape checks the structural rules for a fully resolved record.
// Balance sufficiency is checked separately against the persisted balance
// inside the same atomic unit.
func validateShape(record *models.Transaction) error {
	if err := validateAmount(record.Amount); err != nil {
		return err
	}
	switch record.Type {
	case models.TransactionIncome, models.TransactionExpense:
		if record.FromAccount == nil {
			return &ValidationError{Field: "from_account", Reason: "required"}
		}
		if record.ToAccount != nil {
			return &ValidationError{Field: "to_account", Reason: "only allowed on transfers"}
		}
		if record.AssetID == nil {
			return &ValidationError{Field: "asset", Reason: "required for income and expense"}
		}
	case models.TransactionTransfer:
		if record.FromAccount == nil || record.ToAccount == nil {
			return &ValidationError{Field: "from_account/to_account", Reason: "both required for transfers"}
		}
		if *record.FromAccount == *record.ToAccount {
			return &ValidationError{Field: "to_account", Reason: "must differ from from_account"}
		}
		if record.AssetID != nil {
			return &ValidationError{Field: "asset", Reason: "not allowed on transfers"}
		}
	default:
		return &ValidationError{Field: "type", Reason: "unknown transaction type"}
	}
	return nil
}

// debitsFromAccount reports whether the type requires from_account to cover
// the amount.
func debitsFromAccount(t models.TransactionType) bool {
	return t == models.TransactionExpense || t == models.TransactionTransfer
}
