package loan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sumInstallments(in []Installment) decimal.Decimal {
	s := decimal.Zero
	for _, i := range in {
		s = s.Add(i.Amount)
	}
	return s
}

func TestQuoteTerms_Flat(t *testing.T) {
	q, err := QuoteTerms(Terms{Principal: d("50000"), DurationMonths: 12, InterestRate: d("8")})
	require.NoError(t, err)

	assert.True(t, q.TotalInterest.Equal(d("4000")), "interest %s", q.TotalInterest)
	assert.True(t, q.TotalRepayment.Equal(d("54000")), "total %s", q.TotalRepayment)
	assert.True(t, q.MonthlyPayment.Equal(d("4500")), "monthly %s", q.MonthlyPayment)

	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	sched := BuildSchedule(q, 12, start)
	require.Len(t, sched, 12)
	assert.True(t, sumInstallments(sched).Equal(d("54000")))
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), sched[0].DueDate)
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), sched[11].DueDate)
	for i, inst := range sched {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, InstallmentPending, inst.Status)
	}
}

func TestQuoteTerms_FlatResidueOnLastInstallment(t *testing.T) {
	q, err := QuoteTerms(Terms{Principal: d("1000"), DurationMonths: 3, InterestRate: d("0")})
	require.NoError(t, err)
	assert.True(t, q.MonthlyPayment.Equal(d("333.33")))

	sched := BuildSchedule(q, 3, time.Now())
	assert.True(t, sched[2].Amount.Equal(d("333.34")), "last %s", sched[2].Amount)
	assert.True(t, sumInstallments(sched).Equal(d("1000")))
}

func TestQuoteTerms_Amortized(t *testing.T) {
	q, err := QuoteTerms(Terms{Principal: d("50000"), DurationMonths: 12, InterestRate: d("8"), InterestModel: InterestAmortized})
	require.NoError(t, err)

	// annuity: 50000 * i(1+i)^12 / ((1+i)^12 - 1), i = 0.08/12
	assert.True(t, q.MonthlyPayment.Equal(d("4349.44")), "monthly %s", q.MonthlyPayment)
	assert.True(t, q.TotalRepayment.Equal(q.MonthlyPayment.Mul(d("12"))))
	assert.True(t, q.TotalInterest.Equal(q.TotalRepayment.Sub(d("50000"))))

	sched := BuildSchedule(q, 12, time.Now())
	assert.True(t, sumInstallments(sched).Equal(q.TotalRepayment))
}

func TestQuoteTerms_AmortizedZeroRateFallsBackToEvenSplit(t *testing.T) {
	q, err := QuoteTerms(Terms{Principal: d("1200"), DurationMonths: 12, InterestRate: d("0"), InterestModel: InterestAmortized})
	require.NoError(t, err)
	assert.True(t, q.MonthlyPayment.Equal(d("100")))
	assert.True(t, q.TotalInterest.IsZero())
}

func TestTerms_Validate(t *testing.T) {
	ok := Terms{Principal: d("100"), DurationMonths: 6, InterestRate: d("10")}
	tests := []struct {
		name   string
		mutate func(*Terms)
		ok     bool
	}{
		{"valid", func(*Terms) {}, true},
		{"zero principal", func(t *Terms) { t.Principal = decimal.Zero }, false},
		{"negative principal", func(t *Terms) { t.Principal = d("-1") }, false},
		{"zero months", func(t *Terms) { t.DurationMonths = 0 }, false},
		{"too long", func(t *Terms) { t.DurationMonths = MaxDurationMonths + 1 }, false},
		{"max months", func(t *Terms) { t.DurationMonths = MaxDurationMonths }, true},
		{"negative rate", func(t *Terms) { t.InterestRate = d("-0.5") }, false},
		{"rate over 100", func(t *Terms) { t.InterestRate = d("100.01") }, false},
		{"unknown model", func(t *Terms) { t.InterestModel = "balloon" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ok
			tt.mutate(&in)
			err := in.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTerms)
			}
		})
	}
}
