package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("wallet not found")
	ErrAlreadyExists       = errors.New("wallet already exists for user")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrLimitExceeded       = errors.New("wallet limit exceeded")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidType         = errors.New("unknown transaction type")
	ErrMissingReference    = errors.New("transaction reference is required")
	ErrSameWalletTransfer  = errors.New("cannot transfer to the same wallet")
)

// LimitError names the counter that would overflow. It matches ErrLimitExceeded.
type LimitError struct {
	Kind      LimitKind
	Period    Period
	Limit     decimal.Decimal
	Attempted decimal.Decimal // usage after the rejected operation
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %s %s limit %s, would reach %s",
		ErrLimitExceeded, e.Period, e.Kind, e.Limit.StringFixed(2), e.Attempted.StringFixed(2))
}

func (e *LimitError) Is(target error) bool { return target == ErrLimitExceeded }
