package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate loads the loan holding a row lock until the tx ends.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// FindOpenApplication returns the newest non-terminal loan of borrower for
	// purpose created at or after since.
	FindOpenApplication(ctx context.Context, borrowerID, purpose string, since time.Time) (*Loan, error)
	// ListIDsByStatus pages through loan ids in ascending order, starting after
	// afterID ("" for the first page). limit <= 0 returns every match.
	ListIDsByStatus(ctx context.Context, status Status, afterID string, limit int) ([]string, error)
	// Save persists l if its version is unchanged since load and bumps the version.
	Save(ctx context.Context, l *Loan) error
}
