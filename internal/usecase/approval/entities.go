package approval

import (
	"time"
)

type ApproveInput struct {
	LoanID              string
	PhotoURL            string
	ValidatorEmployeeID string    // 32-char hex
	ApprovalDate        time.Time // date-only is fine; stored as UTC
}

type RejectInput struct {
	LoanID              string
	ValidatorEmployeeID string
	Reason              string
}

type DecisionDTO struct {
	ApprovalID   string    `json:"approval_id"`
	LoanID       string    `json:"loan_id"`
	Decision     string    `json:"decision"`
	LoanStatus   string    `json:"loan_status"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	DecisionDate time.Time `json:"decision_date"`
}
