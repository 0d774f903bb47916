package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPenaltyDays(t *testing.T) {
	p := DefaultPenaltyPolicy()
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before due", due.Add(-time.Hour), 0},
		{"on due", due, 0},
		{"within grace", due.Add(23 * time.Hour), 0},
		{"exactly grace", due.Add(24 * time.Hour), 0},
		{"just past grace", due.Add(25 * time.Hour), 0},
		{"two days late", due.Add(48 * time.Hour), 1},
		{"three days late", due.Add(72 * time.Hour), 2},
		{"ten days late", due.Add(240*time.Hour + time.Minute), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.PenaltyDays(due, tt.now))
		})
	}
}

func activeLoan(t *testing.T, start time.Time) *Loan {
	t.Helper()
	l, err := New("L1", "B1", Terms{Principal: d("1200"), DurationMonths: 12, InterestRate: d("0")}, false, start)
	require.NoError(t, err)
	require.NoError(t, l.AddInvestment("I1", d("1200"), "r1", start))
	require.NoError(t, l.MarkFunded(true, start))
	require.NoError(t, l.Activate(start))
	return l
}

func TestPenaltyStatus_ThreeDaysLate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := activeLoan(t, start)
	due := l.Installments[0].DueDate
	now := due.Add(72 * time.Hour)

	st := l.PenaltyStatus(DefaultPenaltyPolicy(), now)
	require.Len(t, st.PerInstallment, 1)
	assert.Equal(t, 3, st.PerInstallment[0].DaysLate)
	assert.Equal(t, 2, st.PerInstallment[0].PenaltyDays)
	// 100 * 0.005 * 2
	assert.True(t, st.TotalPenalty.Equal(d("1")), "penalty %s", st.TotalPenalty)

	// live read persists nothing
	assert.True(t, l.Installments[0].LateFees.IsZero())
	assert.Equal(t, InstallmentPending, l.Installments[0].Status)
}

func TestAccruePenalties_Monotonic(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := activeLoan(t, start)
	p := DefaultPenaltyPolicy()
	due := l.Installments[0].DueDate
	total := l.TotalRepayment

	newly := l.AccruePenalties(p, due.Add(72*time.Hour))
	assert.Equal(t, []int{1}, newly)
	assert.Equal(t, InstallmentOverdue, l.Installments[0].Status)
	assert.True(t, l.Installments[0].LateFees.Equal(d("1")))
	assert.True(t, l.TotalRepayment.Equal(total.Add(d("1"))))
	assert.True(t, l.AmountRemaining.Equal(l.TotalRepayment.Sub(l.AmountPaid)))

	// same day again: nothing new
	assert.Empty(t, l.AccruePenalties(p, due.Add(80*time.Hour)))
	assert.True(t, l.Installments[0].LateFees.Equal(d("1")))

	// an earlier clock never lowers the fee
	l.AccruePenalties(p, due.Add(30*time.Hour))
	assert.True(t, l.Installments[0].LateFees.Equal(d("1")))

	l.AccruePenalties(p, due.Add(5*24*time.Hour))
	assert.True(t, l.Installments[0].LateFees.Equal(d("2")))
	assert.Equal(t, 4, l.Installments[0].PenaltyDays)
}

func TestAccruePenalties_DefaultedInstallmentsFreeze(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := activeLoan(t, start)
	p := DefaultPenaltyPolicy()
	at := l.Installments[2].DueDate.Add(48 * time.Hour)

	l.AccruePenalties(p, at)
	require.NoError(t, l.MarkDefaulted(DefaultPolicy{MissedInstallments: 3}, at))
	total := l.TotalRepayment
	fees := l.Installments[0].LateFees

	later := at.AddDate(0, 6, 0)
	assert.Empty(t, l.AccruePenalties(p, later))
	assert.True(t, l.TotalRepayment.Equal(total), "total %s want %s", l.TotalRepayment, total)
	assert.True(t, l.Installments[0].LateFees.Equal(fees))

	st := l.PenaltyStatus(p, later)
	for _, a := range st.PerInstallment {
		assert.True(t, a.Penalty.Equal(a.Persisted), "installment %d", a.Number)
	}
}
