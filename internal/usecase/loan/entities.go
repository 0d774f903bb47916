package loan

import (
	"time"

	"github.com/shopspring/decimal"

	domain "p2p-lending-engine/internal/domain/loan"
)

type CreateLoanInput struct {
	BorrowerID     string
	Principal      decimal.Decimal
	Purpose        string
	DurationMonths int
	InterestRate   decimal.Decimal // percent
	InterestModel  domain.InterestModel
	// Draft keeps the application editable; otherwise it is submitted at once.
	Draft bool
}

type InvestmentDTO struct {
	InvestorID string          `json:"investor_id"`
	Amount     decimal.Decimal `json:"amount"`
	InvestedAt time.Time       `json:"invested_at"`
	Reference  string          `json:"reference"`
}

type InstallmentDTO struct {
	Number      int             `json:"installment_number"`
	DueDate     time.Time       `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	LateFees    decimal.Decimal `json:"late_fees"`
	PenaltyDays int             `json:"penalty_days"`
}

type LoanDTO struct {
	LoanID          string           `json:"loan_id"`
	BorrowerID      string           `json:"borrower_id"`
	Purpose         string           `json:"purpose"`
	Principal       decimal.Decimal  `json:"principal"`
	DurationMonths  int              `json:"duration_months"`
	InterestRate    decimal.Decimal  `json:"interest_rate"`
	InterestModel   string           `json:"interest_model"`
	MonthlyPayment  decimal.Decimal  `json:"monthly_payment"`
	TotalInterest   decimal.Decimal  `json:"total_interest"`
	TotalLateFees   decimal.Decimal  `json:"total_late_fees"`
	TotalRepayment  decimal.Decimal  `json:"total_repayment"`
	TargetAmount    decimal.Decimal  `json:"target_amount"`
	FundedAmount    decimal.Decimal  `json:"funded_amount"`
	Investments     []InvestmentDTO  `json:"investments"`
	Status          string           `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	IsDefaulted     bool             `json:"is_defaulted"`
	Schedule        []InstallmentDTO `json:"schedule"`
	AmountPaid      decimal.Decimal  `json:"amount_paid"`
	AmountRemaining decimal.Decimal  `json:"amount_remaining"`
	NextPaymentDate *time.Time       `json:"next_payment_date,omitempty"`
	SubmittedAt     *time.Time       `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	RejectedAt      *time.Time       `json:"rejected_at,omitempty"`
	FundedAt        *time.Time       `json:"funded_at,omitempty"`
	ActivatedAt     *time.Time       `json:"activated_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	DefaultedAt     *time.Time       `json:"defaulted_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ToDTO is shared by every usecase that returns a loan.
func ToDTO(l *domain.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:          l.LoanID,
		BorrowerID:      l.BorrowerID,
		Purpose:         l.Purpose,
		Principal:       l.Principal,
		DurationMonths:  l.DurationMonths,
		InterestRate:    l.InterestRate,
		InterestModel:   string(l.InterestModel),
		MonthlyPayment:  l.MonthlyPayment,
		TotalInterest:   l.TotalInterest,
		TotalLateFees:   l.TotalLateFees,
		TotalRepayment:  l.TotalRepayment,
		TargetAmount:    l.TargetAmount,
		FundedAmount:    l.FundedAmount,
		Investments:     make([]InvestmentDTO, 0, len(l.Investments)),
		Status:          string(l.Status),
		RejectionReason: l.RejectionReason,
		IsDefaulted:     l.IsDefaulted,
		Schedule:        make([]InstallmentDTO, 0, len(l.Installments)),
		AmountPaid:      l.AmountPaid,
		AmountRemaining: l.AmountRemaining,
		NextPaymentDate: l.NextPaymentDate,
		SubmittedAt:     l.SubmittedAt,
		ApprovedAt:      l.ApprovedAt,
		RejectedAt:      l.RejectedAt,
		FundedAt:        l.FundedAt,
		ActivatedAt:     l.ActivatedAt,
		CompletedAt:     l.CompletedAt,
		DefaultedAt:     l.DefaultedAt,
		CreatedAt:       l.CreatedAt,
	}
	for _, inv := range l.Investments {
		dto.Investments = append(dto.Investments, InvestmentDTO(inv))
	}
	for _, inst := range l.Installments {
		dto.Schedule = append(dto.Schedule, InstallmentDTO{
			Number:      inst.Number,
			DueDate:     inst.DueDate,
			Amount:      inst.Amount,
			Status:      string(inst.Status),
			PaidAmount:  inst.PaidAmount,
			PaidAt:      inst.PaidAt,
			LateFees:    inst.LateFees,
			PenaltyDays: inst.PenaltyDays,
		})
	}
	return dto
}
