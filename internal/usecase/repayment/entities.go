package repayment

import (
	"github.com/shopspring/decimal"

	loanuc "p2p-lending-engine/internal/usecase/loan"
)

type PayInput struct {
	LoanID string
	Amount decimal.Decimal
	// Reference makes the payment idempotent; one is generated when empty.
	Reference string
}

type PayoutDTO struct {
	InvestorID string          `json:"investor_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type PaymentDTO struct {
	Reference          string          `json:"reference"`
	Applied            decimal.Decimal `json:"applied"`
	Unapplied          decimal.Decimal `json:"unapplied"`
	SettledInstallment []int           `json:"settled_installments"`
	Payouts            []PayoutDTO     `json:"payouts"`
	Replayed           bool            `json:"replayed"`
	Loan               *loanuc.LoanDTO `json:"loan"`
}

// SweepResult reports what one overdue sweep changed on a loan.
type SweepResult struct {
	LoanID       string `json:"loan_id"`
	NewlyOverdue []int  `json:"newly_overdue"`
	Accrued      bool   `json:"accrued"`
	Defaulted    bool   `json:"defaulted"`
}
