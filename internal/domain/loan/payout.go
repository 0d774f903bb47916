package loan

import "github.com/shopspring/decimal"

type Payout struct {
	InvestorID string
	Amount     decimal.Decimal
}

// SplitPayout shares amount across investors in proportion to their stake,
// truncating to cents. The last investor receives whatever truncation left,
// so the payouts always sum to amount. Zero payouts are omitted.
func (l *Loan) SplitPayout(amount decimal.Decimal) []Payout {
	stakes := l.Investors()
	if len(stakes) == 0 || !amount.IsPositive() || !l.FundedAmount.IsPositive() {
		return nil
	}
	out := make([]Payout, 0, len(stakes))
	allocated := decimal.Zero
	for i, s := range stakes {
		share := amount.Sub(allocated)
		if i < len(stakes)-1 {
			share = amount.Mul(s.Amount).Div(l.FundedAmount).Truncate(2)
		}
		allocated = allocated.Add(share)
		if share.IsPositive() {
			out = append(out, Payout{InvestorID: s.InvestorID, Amount: share})
		}
	}
	return out
}
