package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaxDurationMonths = 60

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

type Terms struct {
	Principal      decimal.Decimal
	Purpose        string
	DurationMonths int
	InterestRate   decimal.Decimal // percent
	InterestModel  InterestModel
}

type Quote struct {
	MonthlyPayment decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalRepayment decimal.Decimal
}

func (t Terms) Validate() error {
	if !t.Principal.IsPositive() {
		return ErrInvalidTerms
	}
	if t.DurationMonths < 1 || t.DurationMonths > MaxDurationMonths {
		return ErrInvalidTerms
	}
	if t.InterestRate.IsNegative() || t.InterestRate.GreaterThan(hundred) {
		return ErrInvalidTerms
	}
	switch t.InterestModel {
	case "", InterestFlat, InterestAmortized:
	default:
		return ErrInvalidTerms
	}
	return nil
}

// QuoteTerms prices a loan. Amounts are rounded to cents; the schedule built from
// the quote puts any rounding residue on the final installment.
func QuoteTerms(t Terms) (Quote, error) {
	if err := t.Validate(); err != nil {
		return Quote{}, err
	}
	n := decimal.NewFromInt(int64(t.DurationMonths))

	if t.InterestModel == InterestAmortized && t.InterestRate.IsPositive() {
		i := t.InterestRate.Div(hundred).Div(twelve)
		growth := i.Add(decimal.NewFromInt(1)).Pow(n)
		monthly := t.Principal.Mul(i).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1))).Round(2)
		total := monthly.Mul(n)
		return Quote{
			MonthlyPayment: monthly,
			TotalInterest:  total.Sub(t.Principal),
			TotalRepayment: total,
		}, nil
	}

	interest := t.Principal.Mul(t.InterestRate).Div(hundred).Round(2)
	total := t.Principal.Add(interest)
	return Quote{
		MonthlyPayment: total.Div(n).Round(2),
		TotalInterest:  interest,
		TotalRepayment: total,
	}, nil
}

// BuildSchedule lays out n monthly installments, the first one month after start.
func BuildSchedule(q Quote, months int, start time.Time) []Installment {
	out := make([]Installment, 0, months)
	allocated := decimal.Zero
	for k := 1; k <= months; k++ {
		amount := q.MonthlyPayment
		if k == months {
			amount = q.TotalRepayment.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		out = append(out, Installment{
			Number:     k,
			DueDate:    start.AddDate(0, k, 0),
			Amount:     amount,
			Status:     InstallmentPending,
			PaidAmount: decimal.Zero,
			LateFees:   decimal.Zero,
		})
	}
	return out
}
