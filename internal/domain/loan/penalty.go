package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

type PenaltyPolicy struct {
	GracePeriod time.Duration
	DailyRate   decimal.Decimal // fraction of the installment amount per penalized day
}

func DefaultPenaltyPolicy() PenaltyPolicy {
	return PenaltyPolicy{GracePeriod: day, DailyRate: decimal.RequireFromString("0.005")}
}

type InstallmentPenalty struct {
	Number      int             `json:"installment_number"`
	DueDate     time.Time       `json:"due_date"`
	DaysLate    int             `json:"days_late"`
	PenaltyDays int             `json:"penalty_days"`
	Penalty     decimal.Decimal `json:"penalty"`
	Persisted   decimal.Decimal `json:"persisted"`
}

type PenaltyStatus struct {
	LoanID         string               `json:"loan_id"`
	TotalPenalty   decimal.Decimal      `json:"total_penalty"`
	PerInstallment []InstallmentPenalty `json:"per_installment"`
	AsOf           time.Time            `json:"as_of"`
}

// DaysLate counts whole days elapsed since due.
func DaysLate(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due) / day)
}

// PenaltyDays is DaysLate minus the whole days covered by the grace period.
func (p PenaltyPolicy) PenaltyDays(due, now time.Time) int {
	if now.Sub(due) <= p.GracePeriod {
		return 0
	}
	n := DaysLate(due, now) - int(p.GracePeriod/day)
	if n < 0 {
		return 0
	}
	return n
}

func (p PenaltyPolicy) Assess(inst Installment, now time.Time) InstallmentPenalty {
	days := p.PenaltyDays(inst.DueDate, now)
	out := InstallmentPenalty{
		Number:      inst.Number,
		DueDate:     inst.DueDate,
		DaysLate:    DaysLate(inst.DueDate, now),
		PenaltyDays: days,
		Penalty:     inst.LateFees,
		Persisted:   inst.LateFees,
	}
	if !inst.Accruing() || days <= inst.PenaltyDays {
		return out
	}
	out.Penalty = inst.Amount.Mul(p.DailyRate).Mul(decimal.NewFromInt(int64(days))).Round(2)
	return out
}

// PenaltyStatus is the live view: penalties computed against now, nothing persisted.
func (l *Loan) PenaltyStatus(p PenaltyPolicy, now time.Time) PenaltyStatus {
	st := PenaltyStatus{LoanID: l.LoanID, TotalPenalty: decimal.Zero, AsOf: now}
	for _, inst := range l.Installments {
		a := p.Assess(inst, now)
		if a.Penalty.IsZero() && a.DaysLate == 0 {
			continue
		}
		st.PerInstallment = append(st.PerInstallment, a)
		st.TotalPenalty = st.TotalPenalty.Add(a.Penalty)
	}
	return st
}

// AccruePenalties folds newly crossed penalty days into LateFees and flags past-due
// installments overdue. It returns the numbers of installments that became overdue.
// Defaulted installments keep the fees they had at default.
func (l *Loan) AccruePenalties(p PenaltyPolicy, now time.Time) []int {
	var newlyOverdue []int
	for i := range l.Installments {
		inst := &l.Installments[i]
		if !inst.Accruing() || !now.After(inst.DueDate) {
			continue
		}
		if inst.Status == InstallmentPending {
			inst.Status = InstallmentOverdue
			newlyOverdue = append(newlyOverdue, inst.Number)
		}
		a := p.Assess(*inst, now)
		if a.PenaltyDays > inst.PenaltyDays {
			inst.LateFees = a.Penalty
			inst.PenaltyDays = a.PenaltyDays
		}
	}
	DeriveFields(l)
	return newlyOverdue
}
