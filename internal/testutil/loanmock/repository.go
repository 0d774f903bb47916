package loanmock

import (
	"context"
	"time"

	domain "p2p-lending-engine/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	FindOpenApplicationFn  func(ctx context.Context, borrowerID, purpose string, since time.Time) (*domain.Loan, error)
	ListIDsByStatusFn      func(ctx context.Context, status domain.Status, afterID string, limit int) ([]string, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) FindOpenApplication(ctx context.Context, borrowerID, purpose string, since time.Time) (*domain.Loan, error) {
	if m.FindOpenApplicationFn != nil {
		return m.FindOpenApplicationFn(ctx, borrowerID, purpose, since)
	}
	return nil, context.Canceled
}

func (m *Repo) ListIDsByStatus(ctx context.Context, status domain.Status, afterID string, limit int) ([]string, error) {
	if m.ListIDsByStatusFn != nil {
		return m.ListIDsByStatusFn(ctx, status, afterID, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
