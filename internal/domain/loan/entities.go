package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusFunded    Status = "funded"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
	StatusRejected  Status = "rejected"
)

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDefaulted, StatusRejected:
		return true
	}
	return false
}

type InstallmentStatus string

const (
	InstallmentPending   InstallmentStatus = "pending"
	InstallmentPaid      InstallmentStatus = "paid"
	InstallmentOverdue   InstallmentStatus = "overdue"
	InstallmentDefaulted InstallmentStatus = "defaulted"
)

// InterestModel selects how the rate is turned into a repayment schedule.
//   - flat: rate is a percentage of principal over the whole term, split evenly.
//   - amortized: rate is annual, compounded monthly (annuity formula).
type InterestModel string

const (
	InterestFlat      InterestModel = "flat"
	InterestAmortized InterestModel = "amortized"
)

type Investment struct {
	InvestorID string          `json:"investor_id"`
	Amount     decimal.Decimal `json:"amount"`
	InvestedAt time.Time       `json:"invested_at"`
	Reference  string          `json:"reference"`
}

type Installment struct {
	Number      int               `json:"installment_number"`
	DueDate     time.Time         `json:"due_date"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      InstallmentStatus `json:"status"`
	PaidAmount  decimal.Decimal   `json:"paid_amount"`
	PaidAt      *time.Time        `json:"paid_at,omitempty"`
	LateFees    decimal.Decimal   `json:"late_fees"`
	PenaltyDays int               `json:"penalty_days"`
}

// Due is what is still owed on the installment, persisted late fees included.
func (i Installment) Due() decimal.Decimal {
	d := i.Amount.Add(i.LateFees).Sub(i.PaidAmount)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func (i Installment) Settled() bool { return i.Status == InstallmentPaid }

// Accruing reports whether late fees may still grow on the installment.
func (i Installment) Accruing() bool {
	return i.Status == InstallmentPending || i.Status == InstallmentOverdue
}

type Loan struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID     string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	BorrowerID string `gorm:"size:32;index:idx_loans_borrower_purpose" json:"borrower_id"`
	Purpose    string `gorm:"size:120;index:idx_loans_borrower_purpose" json:"purpose"`

	Principal      decimal.Decimal `gorm:"type:decimal(18,2)" json:"principal"`
	DurationMonths int             `json:"duration_months"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(8,4)" json:"interest_rate"`
	InterestModel  InterestModel   `gorm:"size:16" json:"interest_model"`
	MonthlyPayment decimal.Decimal `gorm:"type:decimal(18,2)" json:"monthly_payment"`
	TotalInterest  decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_interest"`
	TotalLateFees  decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_late_fees"`
	TotalRepayment decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_repayment"`

	TargetAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"target_amount"`
	FundedAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"funded_amount"`
	Investments  []Investment    `gorm:"type:json;serializer:json" json:"investments"`

	Status          Status `gorm:"size:16;index" json:"status"`
	RejectionReason string `gorm:"type:text" json:"rejection_reason,omitempty"`
	IsDefaulted     bool   `json:"is_defaulted"`

	Installments    []Installment   `gorm:"type:json;serializer:json" json:"installments"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount_paid"`
	AmountRemaining decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount_remaining"`
	NextPaymentDate *time.Time      `json:"next_payment_date,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	FundedAt    *time.Time `json:"funded_at,omitempty"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DefaultedAt *time.Time `json:"defaulted_at,omitempty"`

	Version   int64     `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Investors returns each investor's total stake, in order of first investment.
func (l *Loan) Investors() []Investment {
	idx := make(map[string]int, len(l.Investments))
	out := make([]Investment, 0, len(l.Investments))
	for _, inv := range l.Investments {
		if i, ok := idx[inv.InvestorID]; ok {
			out[i].Amount = out[i].Amount.Add(inv.Amount)
			continue
		}
		idx[inv.InvestorID] = len(out)
		out = append(out, Investment{InvestorID: inv.InvestorID, Amount: inv.Amount, InvestedAt: inv.InvestedAt})
	}
	return out
}

func (l *Loan) HasInvestment(reference string) bool {
	for _, inv := range l.Investments {
		if inv.Reference == reference {
			return true
		}
	}
	return false
}
