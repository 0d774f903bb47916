package uowmock

import (
	"context"
	"errors"
	"testing"

	"p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	"p2p-lending-engine/internal/testutil/approvalmock"
	"p2p-lending-engine/internal/testutil/loanmock"
	"p2p-lending-engine/internal/testutil/walletmock"
)

func TestUoW_WithinTx_ForwardsRepos(t *testing.T) {
	ctx := context.Background()
	repos := uow.Repos{Loans: &loanmock.Repo{}, Wallets: &walletmock.Repo{}, Approvals: &approvalmock.Repo{}}

	innerCalled := false
	m := &UoW{WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
		if gotCtx != ctx {
			t.Fatalf("WithinTx: ctx mismatch")
		}
		return fn(repos)
	}}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Loans != repos.Loans || r.Wallets != repos.Wallets || r.Approvals != repos.Approvals {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil || !innerCalled {
		t.Fatalf("WithinTx: err=%v called=%v", err, innerCalled)
	}
	if m.Calls != 1 {
		t.Fatalf("Calls = %d, want 1", m.Calls)
	}
}

func TestUoW_Defaults_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinLoanTx(ctx, "LN-X", func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx default: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_WithinLoanTx_LoadsLoan(t *testing.T) {
	ctx := context.Background()
	lock := &loan.Loan{ID: 7, LoanID: "LN-7"}
	repos := uow.Repos{Loans: &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, id string) (*loan.Loan, error) {
			if id != "LN-7" {
				return nil, loan.ErrNotFound
			}
			return lock, nil
		},
	}}
	m := Passthrough(repos)

	err := m.WithinLoanTx(ctx, "LN-7", func(r uow.Repos, l *loan.Loan) error {
		if l != lock {
			t.Fatalf("loan not forwarded: %+v", l)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}

	called := false
	err = m.WithinLoanTx(ctx, "LN-404", func(uow.Repos, *loan.Loan) error {
		called = true
		return nil
	})
	if !errors.Is(err, loan.ErrNotFound) || called {
		t.Fatalf("missing loan: err=%v called=%v", err, called)
	}
}

func TestPassthrough_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	m := Passthrough(uow.Repos{})
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestFailing_SkipsFn(t *testing.T) {
	sentinel := errors.New("db down")
	m := Failing(sentinel)
	ran := false
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { ran = true; return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: %v", err)
	}
	if err := m.WithinLoanTx(context.Background(), "LN-1", func(uow.Repos, *loan.Loan) error { ran = true; return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinLoanTx: %v", err)
	}
	if ran || m.Calls != 2 {
		t.Fatalf("ran=%v calls=%d", ran, m.Calls)
	}
}
