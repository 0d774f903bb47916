package loan

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound              = errors.New("loan not found")
	ErrInvalidTransition     = errors.New("invalid loan state transition")
	ErrAlreadyApproved       = errors.New("loan already approved")
	ErrFundingOverflow       = errors.New("investment exceeds remaining funding")
	ErrDuplicateApplication  = errors.New("borrower already has an open application for this purpose")
	ErrInvalidTerms          = errors.New("invalid loan terms")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrSelfInvestment        = errors.New("borrower cannot invest in own loan")
	ErrNothingDue            = errors.New("loan has no outstanding balance")
	ErrRejectionReasonNeeded = errors.New("rejection reason is required")
)

// TransitionError describes a refused state change. It matches ErrInvalidTransition.
type TransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s -> %s: %s", ErrInvalidTransition, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// OverflowError carries how much the loan can still accept.
type OverflowError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: requested %s, remaining %s", ErrFundingOverflow, e.Requested.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *OverflowError) Is(target error) bool { return target == ErrFundingOverflow }
