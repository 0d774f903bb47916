package approval

import "context"

// Repository stores decision records. Create fails with a unique-index error
// if the loan already has one.
type Repository interface {
	Create(ctx context.Context, a *Approval) error
	// GetByLoanID looks up by the loan's surrogate key, not its public id.
	GetByLoanID(ctx context.Context, loanPK uint64) (*Approval, error)
	GetByApprovalID(ctx context.Context, approvalID string) (*Approval, error)
}
