package wallet

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var noon = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func limited() Limits {
	return Limits{
		DailyDeposit:      d("1000"),
		DailyWithdrawal:   d("300"),
		DailyTransfer:     d("500"),
		MonthlyDeposit:    d("5000"),
		MonthlyWithdrawal: d("400"),
	}
}

func TestApply_CreditsAndDebits(t *testing.T) {
	w := New("W", "U", Limits{}, noon)

	tx, err := w.Apply(Entry{Type: TxDeposit, Amount: d("100"), Reference: "r1"}, noon)
	require.NoError(t, err)
	assert.True(t, tx.BalanceAfter.Equal(d("100")))
	assert.Equal(t, TxCompleted, tx.Status)

	_, err = w.Apply(Entry{Type: TxLoanPayment, Amount: d("40"), Reference: "r2", LoanID: "L"}, noon)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(d("60")))

	for _, typ := range []TxType{TxTransferIn, TxLoanDisbursement, TxRefund} {
		_, err := w.Apply(Entry{Type: typ, Amount: d("10"), Reference: string(typ)}, noon)
		require.NoError(t, err)
	}
	assert.True(t, w.Balance.Equal(d("90")))
	assert.Equal(t, int64(5), w.Stats.TransactionCount)
}

func TestApply_InsufficientFundsLeavesStateUnchanged(t *testing.T) {
	w := New("W", "U", Limits{}, noon)
	_, err := w.Apply(Entry{Type: TxDeposit, Amount: d("50"), Reference: "r1"}, noon)
	require.NoError(t, err)
	before := *w

	for _, typ := range []TxType{TxWithdrawal, TxTransferOut, TxLoanPayment} {
		_, err := w.Apply(Entry{Type: typ, Amount: d("50.01"), Reference: "x-" + string(typ)}, noon)
		assert.ErrorIs(t, err, ErrInsufficientFunds, typ)
	}
	assert.True(t, w.Balance.Equal(before.Balance))
	assert.Equal(t, before.Stats, w.Stats)
	assert.Equal(t, before.DailyUsage, w.DailyUsage)
	assert.False(t, w.Balance.IsNegative())
}

func TestApply_Validation(t *testing.T) {
	w := New("W", "U", Limits{}, noon)
	_, err := w.Apply(Entry{Type: "bonus", Amount: d("1"), Reference: "r"}, noon)
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = w.Apply(Entry{Type: TxDeposit, Amount: d("0"), Reference: "r"}, noon)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = w.Apply(Entry{Type: TxDeposit, Amount: d("1"), Reference: " "}, noon)
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestApply_DailyLimit(t *testing.T) {
	w := New("W", "U", limited(), noon)
	_, err := w.Apply(Entry{Type: TxDeposit, Amount: d("1000"), Reference: "r1"}, noon)
	require.NoError(t, err)

	_, err = w.Apply(Entry{Type: TxDeposit, Amount: d("0.01"), Reference: "r2"}, noon)
	var le *LimitError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, KindDeposit, le.Kind)
	assert.Equal(t, PeriodDaily, le.Period)
	assert.True(t, le.Attempted.Equal(d("1000.01")))
	assert.True(t, w.Balance.Equal(d("1000")), "refused post must not move the balance")

	// next UTC day resets the daily window only
	tomorrow := noon.Add(13 * time.Hour)
	_, err = w.Apply(Entry{Type: TxDeposit, Amount: d("10"), Reference: "r3"}, tomorrow)
	require.NoError(t, err)
	assert.True(t, w.DailyUsage.Deposit.Equal(d("10")))
	assert.True(t, w.MonthlyUsage.Deposit.Equal(d("1010")))
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), w.DailyResetAt)
}

func TestApply_MonthlyLimitAndReset(t *testing.T) {
	w := New("W", "U", limited(), noon)
	_, err := w.Apply(Entry{Type: TxDeposit, Amount: d("1000"), Reference: "dep"}, noon)
	require.NoError(t, err)

	_, err = w.Apply(Entry{Type: TxWithdrawal, Amount: d("300"), Reference: "w1"}, noon)
	require.NoError(t, err)
	next := noon.Add(24 * time.Hour)
	_, err = w.Apply(Entry{Type: TxWithdrawal, Amount: d("200"), Reference: "w2"}, next)
	var le *LimitError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, PeriodMonthly, le.Period)
	assert.Equal(t, KindWithdrawal, le.Kind)

	april := time.Date(2026, 4, 1, 0, 0, 1, 0, time.UTC)
	_, err = w.Apply(Entry{Type: TxWithdrawal, Amount: d("200"), Reference: "w3"}, april)
	require.NoError(t, err)
	assert.True(t, w.MonthlyUsage.Withdrawal.Equal(d("200")))
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), w.MonthlyResetAt)
}

func TestApply_TransferLimitCountsOnlyOutgoing(t *testing.T) {
	w := New("W", "U", limited(), noon)
	_, err := w.Apply(Entry{Type: TxTransferIn, Amount: d("900"), Reference: "in"}, noon)
	require.NoError(t, err)
	assert.True(t, w.DailyUsage.Transfer.IsZero())

	_, err = w.Apply(Entry{Type: TxTransferOut, Amount: d("500"), Reference: "out1"}, noon)
	require.NoError(t, err)
	_, err = w.Apply(Entry{Type: TxTransferOut, Amount: d("1"), Reference: "out2"}, noon)
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestRebuildStatsMatchesRunningStats(t *testing.T) {
	w := New("W", "U", Limits{}, noon)
	var log []Transaction
	for i, e := range []Entry{
		{Type: TxDeposit, Amount: d("500"), Reference: "1"},
		{Type: TxWithdrawal, Amount: d("20"), Reference: "2"},
		{Type: TxTransferOut, Amount: d("30"), Reference: "3"},
		{Type: TxTransferIn, Amount: d("5"), Reference: "4"},
		{Type: TxLoanPayment, Amount: d("100"), Reference: "5"},
		{Type: TxRefund, Amount: d("1"), Reference: "6"},
	} {
		tx, err := w.Apply(e, noon.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		log = append(log, *tx)
	}

	rebuilt := RebuildStats(log)
	assert.Equal(t, w.Stats.TransactionCount, rebuilt.TransactionCount)
	assert.True(t, w.Stats.TotalDeposits.Equal(rebuilt.TotalDeposits))
	assert.True(t, w.Stats.TotalWithdrawals.Equal(rebuilt.TotalWithdrawals))
	assert.True(t, w.Stats.TotalTransfers.Equal(rebuilt.TotalTransfers))
	assert.True(t, rebuilt.TotalTransfers.Equal(d("35")))
	assert.True(t, w.Balance.Equal(log[len(log)-1].BalanceAfter))
}
