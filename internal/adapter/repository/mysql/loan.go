package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

var terminalStatuses = []loanDomain.Status{
	loanDomain.StatusCompleted,
	loanDomain.StatusDefaulted,
	loanDomain.StatusRejected,
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	if l.Version == 0 {
		l.Version = 1
	}
	return translate(r.db.WithContext(ctx).Create(l).Error, nil, nil)
}

// Save writes every column guarded by the version read at load time.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	prev := l.Version
	l.Version = prev + 1
	res := r.db.WithContext(ctx).
		Model(l).
		Where("version = ?", prev).
		Select("*").
		Omit("id", "created_at").
		Updates(l)
	if res.Error != nil {
		l.Version = prev
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		l.Version = prev
		return uow.ErrVersionConflict
	}
	return nil
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, loanDomain.ErrNotFound, nil)
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, loanDomain.ErrNotFound, nil)
	}
	return &out, nil
}

func (r *LoanRepository) FindOpenApplication(ctx context.Context, borrowerID, purpose string, since time.Time) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("borrower_id = ? AND purpose = ? AND status NOT IN ? AND created_at >= ?",
			borrowerID, purpose, terminalStatuses, since).
		Order("created_at DESC, id DESC").
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, loanDomain.ErrNotFound, nil)
	}
	return &out, nil
}

func (r *LoanRepository) ListIDsByStatus(ctx context.Context, status loanDomain.Status, afterID string, limit int) ([]string, error) {
	var ids []string
	q := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("status = ?", status)
	if afterID != "" {
		q = q.Where("loan_id > ?", afterID)
	}
	q = q.Order("loan_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("loan_id", &ids).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	return ids, nil
}
