package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeriveFields recomputes every denormalized aggregate from the investment and
// installment lists. Call it after any mutation of those lists.
func DeriveFields(l *Loan) {
	funded := decimal.Zero
	for _, inv := range l.Investments {
		funded = funded.Add(inv.Amount)
	}
	l.FundedAmount = funded

	paid, fees := decimal.Zero, decimal.Zero
	var next *time.Time
	for _, inst := range l.Installments {
		paid = paid.Add(inst.PaidAmount)
		fees = fees.Add(inst.LateFees)
		if next == nil && !inst.Settled() {
			d := inst.DueDate
			next = &d
		}
	}
	l.AmountPaid = paid
	l.TotalLateFees = fees
	l.TotalRepayment = l.Principal.Add(l.TotalInterest).Add(fees)
	l.AmountRemaining = l.TotalRepayment.Sub(paid)
	l.NextPaymentDate = next
}

func (l *Loan) RemainingCapacity() decimal.Decimal {
	r := l.TargetAmount.Sub(l.FundedAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

func (l *Loan) FullyFunded() bool { return l.FundedAmount.GreaterThanOrEqual(l.TargetAmount) }
