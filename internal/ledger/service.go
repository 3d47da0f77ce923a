package ledger

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/9-8-7-6/vito/internal/models"
	"github.com/9-8-7-6/vito/internal/store"
)

// Service is the transaction lifecycle controller. Every operation runs its
// reads, checks and writes inside a single store atomic unit, so the
// sufficiency check and the balance write cannot be split across commits.
// Serialization of two concurrent units touching the same account is still
// delegated to the store's isolation level; the service holds no in-process
// locks and performs no retries.
type Service struct {
	store store.LedgerStore
	log   *zap.Logger
}

func NewService(st store.LedgerStore, log *zap.Logger) *Service {
	return &Service{store: st, log: log}
}

// CreateTransactionInput names the operands of a new transaction. AssetType
// is resolved against from_account, creating the asset with a zero balance
// if it does not exist yet.
type CreateTransactionInput struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	AssetType   string
	FromAccount string
	ToAccount   string
	Note        string
}

func (s *Service) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*models.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	record := models.Transaction{
		Reference:   uuid.NewString(),
		Type:        in.Type,
		Amount:      in.Amount,
		FromAccount: optional(in.FromAccount),
		ToAccount:   optional(in.ToAccount),
		Note:        in.Note,
	}
	err := s.atomic(ctx, func(st store.LedgerStore) error {
		if err := provisionAccounts(ctx, st, &record); err != nil {
			return err
		}
		if in.AssetType != "" {
			if record.Type == models.TransactionTransfer {
				return &ValidationError{Field: "asset", Reason: "not allowed on transfers"}
			}
			if record.FromAccount == nil {
				return &ValidationError{Field: "from_account", Reason: "required"}
			}
			asset, err := resolveAsset(ctx, st, *record.FromAccount, in.AssetType)
			if err != nil {
				return err
			}
			record.AssetID = &asset.ID
		}
		if err := validateShape(&record); err != nil {
			return err
		}
		if err := checkCover(ctx, st, &record); err != nil {
			return err
		}
		if err := applyEffect(ctx, st, &record, Apply); err != nil {
			return err
		}
		return st.CreateTransaction(ctx, &record)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("transaction created",
		zap.Uint("id", record.ID),
		zap.String("reference", record.Reference),
		zap.String("type", string(record.Type)))
	return &record, nil
}

// UpdateTransaction reverses the stored record's effect using its original
// operands, overlays the patch, re-validates the merged record and applies
// the new effect. A failure at any step discards the whole update.
func (s *Service) UpdateTransaction(ctx context.Context, id uint, patch TransactionPatch) (*models.Transaction, error) {
	if patch.Amount != nil {
		if err := validateAmount(*patch.Amount); err != nil {
			return nil, err
		}
	}
	var updated models.Transaction
	err := s.atomic(ctx, func(st store.LedgerStore) error {
		orig, err := st.GetTransaction(ctx, id)
		if err != nil {
			return mapNotFound(err, "transaction", formatID(id))
		}
		if err := applyEffect(ctx, st, orig, Reverse); err != nil {
			return err
		}
		merged := mergeTransaction(*orig, patch)
		if patch.AssetType != nil && *patch.AssetType != "" {
			if merged.Type == models.TransactionTransfer {
				return &ValidationError{Field: "asset", Reason: "not allowed on transfers"}
			}
			if merged.FromAccount == nil {
				return &ValidationError{Field: "from_account", Reason: "required"}
			}
			asset, err := resolveAsset(ctx, st, *merged.FromAccount, *patch.AssetType)
			if err != nil {
				return err
			}
			merged.AssetID = &asset.ID
		} else if patch.AssetType != nil {
			merged.AssetID = nil
		}
		if err := provisionAccounts(ctx, st, &merged); err != nil {
			return err
		}
		if err := validateShape(&merged); err != nil {
			return err
		}
		if err := checkAssetOwner(ctx, st, &merged); err != nil {
			return err
		}
		if err := checkCover(ctx, st, &merged); err != nil {
			return err
		}
		if err := applyEffect(ctx, st, &merged, Apply); err != nil {
			return err
		}
		if err := st.SaveTransaction(ctx, &merged); err != nil {
			return err
		}
		updated = merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("transaction updated", zap.Uint("id", updated.ID))
	return &updated, nil
}

// DeleteTransaction reverses the stored effect, then removes the record.
func (s *Service) DeleteTransaction(ctx context.Context, id uint) error {
	err := s.atomic(ctx, func(st store.LedgerStore) error {
		record, err := st.GetTransaction(ctx, id)
		if err != nil {
			return mapNotFound(err, "transaction", formatID(id))
		}
		if err := applyEffect(ctx, st, record, Reverse); err != nil {
			return err
		}
		return st.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("transaction deleted", zap.Uint("id", id))
	return nil
}

// CreateAsset registers a new (account, asset_type) sub-balance and adjusts
// the owning account by the initial balance, creating the account if needed.
func (s *Service) CreateAsset(ctx context.Context, username, assetType string, initial decimal.Decimal) (*models.Asset, error) {
	if username == "" {
		return nil, &ValidationError{Field: "account", Reason: "required"}
	}
	if assetType == "" {
		return nil, &ValidationError{Field: "asset_type", Reason: "required"}
	}
	if initial.Exponent() < -2 {
		return nil, &ValidationError{Field: "balance", Reason: "at most 2 fractional digits"}
	}
	asset := models.Asset{AccountUsername: username, AssetType: assetType, Balance: initial}
	err := s.atomic(ctx, func(st store.LedgerStore) error {
		account, _, err := st.GetOrCreateAccount(ctx, username, decimal.Zero)
		if err != nil {
			return err
		}
		if err := st.CreateAsset(ctx, &asset); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return &ConstraintError{Reason: "asset type " + assetType + " already exists for account " + username}
			}
			return err
		}
		account.Balance = account.Balance.Add(initial)
		return st.SaveAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("asset created", zap.Uint("id", asset.ID), zap.String("account", username), zap.String("type", assetType))
	return &asset, nil
}

// UpdateAsset rewrites an asset balance and shifts the owning account by the
// difference, keeping account = sum of its parts consistent.
func (s *Service) UpdateAsset(ctx context.Context, id uint, newBalance decimal.Decimal) (*models.Asset, error) {
	if newBalance.Exponent() < -2 {
		return nil, &ValidationError{Field: "balance", Reason: "at most 2 fractional digits"}
	}
	var updated models.Asset
	err := s.atomic(ctx, func(st store.LedgerStore) error {
		asset, err := st.GetAsset(ctx, id)
		if err != nil {
			return mapNotFound(err, "asset", formatID(id))
		}
		account, err := st.GetAccount(ctx, asset.AccountUsername)
		if err != nil {
			return mapNotFound(err, "account", asset.AccountUsername)
		}
		delta := newBalance.Sub(asset.Balance)
		asset.Balance = newBalance
		if err := st.SaveAsset(ctx, asset); err != nil {
			return err
		}
		account.Balance = account.Balance.Add(delta)
		if err := st.SaveAccount(ctx, account); err != nil {
			return err
		}
		updated = *asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAsset removes an asset and subtracts its balance from the owning
// account. It fails when the account cannot absorb the subtraction.
func (s *Service) DeleteAsset(ctx context.Context, id uint) error {
	return s.atomic(ctx, func(st store.LedgerStore) error {
		asset, err := st.GetAsset(ctx, id)
		if err != nil {
			return mapNotFound(err, "asset", formatID(id))
		}
		account, err := st.GetAccount(ctx, asset.AccountUsername)
		if err != nil {
			return mapNotFound(err, "account", asset.AccountUsername)
		}
		if account.Balance.LessThan(asset.Balance) {
			return &InsufficientBalanceError{
				Account:  account.Username,
				Balance:  account.Balance,
				Required: asset.Balance,
			}
		}
		account.Balance = account.Balance.Sub(asset.Balance)
		if err := st.SaveAccount(ctx, account); err != nil {
			return err
		}
		return st.DeleteAsset(ctx, id)
	})
}

func (s *Service) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	account, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return nil, mapNotFound(err, "account", username)
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *Service) ListAssets(ctx context.Context, username string) ([]models.Asset, error) {
	return s.store.ListAssets(ctx, username)
}

func (s *Service) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	record, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "transaction", formatID(id))
	}
	return record, nil
}

func (s *Service) ListTransactions(ctx context.Context, username string) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx, username)
}

// atomic runs fn in one store unit. Domain errors pass through unchanged;
// anything else means the store aborted the unit.
func (s *Service) atomic(ctx context.Context, fn func(store.LedgerStore) error) error {
	err := s.store.RunAtomic(ctx, fn)
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrValidation, ErrInsufficientBalance, ErrNotFound, ErrConstraint} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &AtomicityError{Err: err}
}

// provisionAccounts lazily creates the accounts a record references. The
// debit side is seeded with the transaction amount so its first debit is
// covered and lands at zero; the credit side starts at zero and receives
// the delta.
func provisionAccounts(ctx context.Context, st store.LedgerStore, record *models.Transaction) error {
	if record.FromAccount != nil {
		seed := decimal.Zero
		if debitsFromAccount(record.Type) {
			seed = record.Amount
		}
		if _, _, err := st.GetOrCreateAccount(ctx, *record.FromAccount, seed); err != nil {
			return err
		}
	}
	if record.ToAccount != nil {
		if _, _, err := st.GetOrCreateAccount(ctx, *record.ToAccount, decimal.Zero); err != nil {
			return err
		}
	}
	return nil
}

// resolveAsset finds the (account, type) asset, creating it with a zero
// balance on first reference.
func resolveAsset(ctx context.Context, st store.LedgerStore, username, assetType string) (*models.Asset, error) {
	asset, err := st.GetAssetByType(ctx, username, assetType)
	if err == nil {
		return asset, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	created := models.Asset{AccountUsername: username, AssetType: assetType, Balance: decimal.Zero}
	if err := st.CreateAsset(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// checkCover verifies the current persisted from_account balance covers the
// amount for debiting types. It reads inside the caller's atomic unit.
func checkCover(ctx context.Context, st store.LedgerStore, record *models.Transaction) error {
	if !debitsFromAccount(record.Type) {
		return nil
	}
	account, err := st.GetAccount(ctx, *record.FromAccount)
	if err != nil {
		return mapNotFound(err, "account", *record.FromAccount)
	}
	if account.Balance.LessThan(record.Amount) {
		return &InsufficientBalanceError{
			Account:  account.Username,
			Balance:  account.Balance,
			Required: record.Amount,
		}
	}
	return nil
}

// checkAssetOwner rejects a merged record whose asset belongs to a different
// account than from_account.
func checkAssetOwner(ctx context.Context, st store.LedgerStore, record *models.Transaction) error {
	if record.AssetID == nil {
		return nil
	}
	asset, err := st.GetAsset(ctx, *record.AssetID)
	if err != nil {
		return mapNotFound(err, "asset", formatID(*record.AssetID))
	}
	if record.FromAccount != nil && asset.AccountUsername != *record.FromAccount {
		return &ValidationError{Field: "asset", Reason: "owned by a different account"}
	}
	return nil
}

// applyEffect loads each touched entity, adds its delta and saves it back.
func applyEffect(ctx context.Context, st store.LedgerStore, record *models.Transaction, sign Sign) error {
	eff, err := EffectOf(record, sign)
	if err != nil {
		return err
	}
	for _, d := range eff.Accounts {
		account, err := st.GetAccount(ctx, d.Username)
		if err != nil {
			return mapNotFound(err, "account", d.Username)
		}
		account.Balance = account.Balance.Add(d.Amount)
		if err := st.SaveAccount(ctx, account); err != nil {
			return err
		}
	}
	for _, d := range eff.Assets {
		asset, err := st.GetAsset(ctx, d.AssetID)
		if err != nil {
			return mapNotFound(err, "asset", formatID(d.AssetID))
		}
		asset.Balance = asset.Balance.Add(d.Amount)
		if err := st.SaveAsset(ctx, asset); err != nil {
			return err
		}
	}
	return nil
}

func mapNotFound(err error, entity, key string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: entity, Key: key}
	}
	return err
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
