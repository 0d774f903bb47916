package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentResult struct {
	Applied   decimal.Decimal
	Unapplied decimal.Decimal
	Settled   []Installment
	// NewlyOverdue holds installments this call flagged overdue, as they stood
	// before the payment was applied.
	NewlyOverdue []Installment
	Completed    bool
}

// ApplyPayment accrues penalties, then settles installments oldest first; any
// remainder cascades to the next unpaid installment. Payments on defaulted loans
// are recorded but never move the loan out of defaulted.
func (l *Loan) ApplyPayment(amount decimal.Decimal, p PenaltyPolicy, now time.Time) (PaymentResult, error) {
	if !amount.IsPositive() {
		return PaymentResult{}, ErrInvalidAmount
	}
	if l.Status != StatusActive && l.Status != StatusDefaulted {
		return PaymentResult{}, &TransitionError{From: l.Status, To: l.Status, Reason: "loan is not in repayment"}
	}
	res := PaymentResult{Applied: decimal.Zero}
	for _, n := range l.AccruePenalties(p, now) {
		res.NewlyOverdue = append(res.NewlyOverdue, l.Installments[n-1])
	}
	if !l.AmountRemaining.IsPositive() {
		return PaymentResult{}, ErrNothingDue
	}

	left := amount
	for i := range l.Installments {
		if !left.IsPositive() {
			break
		}
		inst := &l.Installments[i]
		if inst.Settled() {
			continue
		}
		take := decimal.Min(left, inst.Due())
		inst.PaidAmount = inst.PaidAmount.Add(take)
		left = left.Sub(take)
		res.Applied = res.Applied.Add(take)
		if !inst.Due().IsPositive() {
			paidAt := now
			inst.Status = InstallmentPaid
			inst.PaidAt = &paidAt
			res.Settled = append(res.Settled, *inst)
		}
	}
	res.Unapplied = left
	DeriveFields(l)

	if l.Status == StatusActive && l.AllInstallmentsPaid() {
		if err := l.MarkCompleted(now); err != nil {
			return res, err
		}
		res.Completed = true
	}
	return res, nil
}
