package mysql

import (
	"context"

	approvalDomain "p2p-lending-engine/internal/domain/approval"

	"gorm.io/gorm"
)

// ApprovalRepository persists desk decisions. The unique index on loan_id is
// what turns a racing second decision into ErrAlreadyDecided.
type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	return translate(r.db.WithContext(ctx).Create(a).Error, nil, approvalDomain.ErrAlreadyDecided)
}

func (r *ApprovalRepository) GetByLoanID(ctx context.Context, loanPK uint64) (*approvalDomain.Approval, error) {
	return r.first(ctx, "loan_id = ?", loanPK)
}

func (r *ApprovalRepository) GetByApprovalID(ctx context.Context, approvalID string) (*approvalDomain.Approval, error) {
	return r.first(ctx, "approval_id = ?", approvalID)
}

func (r *ApprovalRepository) first(ctx context.Context, cond string, arg any) (*approvalDomain.Approval, error) {
	var a approvalDomain.Approval
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&a).Error; err != nil {
		return nil, translate(err, approvalDomain.ErrNotFound, nil)
	}
	return &a, nil
}
