package approval

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("approval not found")
	ErrAlreadyDecided = errors.New("loan already has a recorded decision")
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Approval is the audit record of the desk decision on a pending loan.
// At most one exists per loan.
type Approval struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ApprovalID string `gorm:"column:approval_id;size:32;not null;uniqueIndex:ux_approvals_approval_id"`
	// FK to loans.id (numeric)
	LoanID              uint64    `gorm:"column:loan_id;not null;uniqueIndex:ux_approvals_loan"`
	Decision            Decision  `gorm:"column:decision;size:16;not null"`
	Reason              string    `gorm:"column:reason;type:text"`
	PhotoURL            string    `gorm:"column:photo_url;type:text"`
	ValidatorEmployeeID string    `gorm:"column:validator_employee_id;size:32;not null"`
	DecisionDate        time.Time `gorm:"column:decision_date;not null"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Approval) TableName() string { return "approvals" }
