package uowmock

import (
	"context"
	"errors"

	"p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Unfilled function fields return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error

	// Calls counts units started through either method.
	Calls int
}

func New() *UoW { return &UoW{} }

// Passthrough runs every unit directly against repos, without a transaction.
// WithinLoanTx loads the loan with repos.Loans.GetByLoanIDForUpdate first.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinLoanTxFn: func(ctx context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
			l, err := repos.Loans.GetByLoanIDForUpdate(ctx, loanID)
			if err != nil {
				return err
			}
			return fn(repos, l)
		},
	}
}

// Failing rejects every unit with err before fn runs.
func Failing(err error) *UoW {
	return &UoW{
		WithinTxFn:     func(context.Context, func(uow.Repos) error) error { return err },
		WithinLoanTxFn: func(context.Context, string, func(uow.Repos, *loan.Loan) error) error { return err },
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	m.Calls++
	if m.WithinTxFn == nil {
		return errUnimplemented
	}
	return m.WithinTxFn(ctx, fn)
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	m.Calls++
	if m.WithinLoanTxFn == nil {
		return errUnimplemented
	}
	return m.WithinLoanTxFn(ctx, loanID, fn)
}
