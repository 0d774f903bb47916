package uow

import (
	"context"
	"errors"

	"p2p-lending-engine/internal/domain/approval"
	"p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/wallet"
)

var (
	// ErrVersionConflict means the row changed between load and save, or the
	// database aborted the tx to break a lock cycle. The unit may be retried.
	ErrVersionConflict = errors.New("concurrent update detected")
	// ErrConcurrentModification is surfaced once retries are exhausted.
	ErrConcurrentModification = errors.New("concurrent modification, retry later")
)

// Repos are bound to the open transaction; they must not escape fn.
type Repos struct {
	Loans     loan.Repository
	Wallets   wallet.Repository
	Approvals approval.Repository
}

// UnitOfWork runs fn in one database transaction, committing when fn returns
// nil. Wallet rows are locked after the loan row, never before.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first and hands the loaded aggregate to fn.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
