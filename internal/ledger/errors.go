package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinels for errors.Is checks across the taxonomy. The concrete types
// below carry the details and report themselves as the matching sentinel.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("not found")
	ErrConstraint          = errors.New("constraint violated")
	ErrAtomicity           = errors.New("atomic unit aborted")
)

// ValidationError reports a bad shape or missing required field. No mutation
// is attempted when one is raised.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InsufficientBalanceError reports that an account cannot cover a debit.
type InsufficientBalanceError struct {
	Account  string
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("account %q balance %s cannot cover %s",
		e.Account, e.Balance.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }

// NotFoundError reports a missing referenced account, asset or transaction.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConstraintError reports a uniqueness violation, e.g. a duplicate asset
// type on one account.
type ConstraintError struct {
	Reason string
}

func (e *ConstraintError) Error() string { return e.Reason }

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

// AtomicityError wraps a store failure that aborted the whole unit. The
// store rolls back every effect; nothing partial persists.
type AtomicityError struct {
	Err error
}

func (e *AtomicityError) Error() string {
	return fmt.Sprintf("atomic unit aborted: %v", e.Err)
}

func (e *AtomicityError) Unwrap() error { return e.Err }

func (e *AtomicityError) Is(target error) bool { return target == ErrAtomicity }
