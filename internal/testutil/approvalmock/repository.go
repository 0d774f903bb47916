// Package approvalmock provides a stub approval store for usecase and handler tests.
package approvalmock

import (
	"context"

	domain "p2p-lending-engine/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo answers through the optional Fn hooks. Created records every approval
// passed to Create so tests can inspect the decision that was stored.
type Repo struct {
	CreateFn          func(ctx context.Context, a *domain.Approval) error
	GetByLoanIDFn     func(ctx context.Context, loanPK uint64) (*domain.Approval, error)
	GetByApprovalIDFn func(ctx context.Context, approvalID string) (*domain.Approval, error)

	Created []*domain.Approval
}

func (m *Repo) Create(ctx context.Context, a *domain.Approval) error {
	m.Created = append(m.Created, a)
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, a)
}

// Unset lookups fail with context.Canceled so a test that forgets to stub one
// does not silently take the "no decision yet" path.
func (m *Repo) GetByLoanID(ctx context.Context, loanPK uint64) (*domain.Approval, error) {
	if m.GetByLoanIDFn == nil {
		return nil, context.Canceled
	}
	return m.GetByLoanIDFn(ctx, loanPK)
}

func (m *Repo) GetByApprovalID(ctx context.Context, approvalID string) (*domain.Approval, error) {
	if m.GetByApprovalIDFn == nil {
		return nil, context.Canceled
	}
	return m.GetByApprovalIDFn(ctx, approvalID)
}
