package wallet

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a request to post one transaction to a wallet.
type Entry struct {
	Type                 TxType
	Amount               decimal.Decimal
	Reference            string
	LoanID               string
	CounterpartyWalletID string
	Metadata             map[string]string
}

func (e Entry) Validate() error {
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Reference) == "" {
		return ErrMissingReference
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ResetWindows zeroes usage counters the first time a new UTC day or month is observed.
func (w *Wallet) ResetWindows(now time.Time) {
	if day := startOfDay(now); w.DailyResetAt.Before(day) {
		w.DailyUsage = zeroUsage()
		w.DailyResetAt = day
	}
	if month := startOfMonth(now); w.MonthlyResetAt.Before(month) {
		w.MonthlyUsage = zeroUsage()
		w.MonthlyResetAt = month
	}
}

// CheckLimits reports the first counter that amount would push past its limit.
func (w *Wallet) CheckLimits(k LimitKind, amount decimal.Decimal) error {
	for _, c := range []struct {
		period Period
		usage  Usage
	}{
		{PeriodDaily, w.DailyUsage},
		{PeriodMonthly, w.MonthlyUsage},
	} {
		limit := w.Limits.For(k, c.period)
		if limit.IsZero() {
			continue
		}
		if next := c.usage.For(k).Add(amount); next.GreaterThan(limit) {
			return &LimitError{Kind: k, Period: c.period, Limit: limit, Attempted: next}
		}
	}
	return nil
}

// Apply validates e against limits and balance, then mutates the wallet and
// returns the record to append. On error the wallet is left untouched apart from
// the lazy window reset.
func (w *Wallet) Apply(e Entry, now time.Time) (*Transaction, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	w.ResetWindows(now)

	kind, limited := limitKind(e.Type)
	if limited {
		if err := w.CheckLimits(kind, e.Amount); err != nil {
			return nil, err
		}
	}
	if e.Type.Debit() && e.Amount.GreaterThan(w.Balance) {
		return nil, ErrInsufficientFunds
	}

	if e.Type.Debit() {
		w.Balance = w.Balance.Sub(e.Amount)
	} else {
		w.Balance = w.Balance.Add(e.Amount)
	}
	if limited {
		w.DailyUsage.add(kind, e.Amount)
		w.MonthlyUsage.add(kind, e.Amount)
	}

	tx := &Transaction{
		Reference:            e.Reference,
		WalletID:             w.WalletID,
		Type:                 e.Type,
		Amount:               e.Amount,
		BalanceAfter:         w.Balance,
		Status:               TxCompleted,
		LoanID:               e.LoanID,
		CounterpartyWalletID: e.CounterpartyWalletID,
		Metadata:             e.Metadata,
		CreatedAt:            now,
	}
	w.Stats = w.Stats.With(*tx)
	return tx, nil
}

// With returns s advanced by one ledger record.
func (s Stats) With(tx Transaction) Stats {
	s.TransactionCount++
	switch tx.Type {
	case TxDeposit:
		s.TotalDeposits = s.TotalDeposits.Add(tx.Amount)
	case TxWithdrawal:
		s.TotalWithdrawals = s.TotalWithdrawals.Add(tx.Amount)
	case TxTransferIn, TxTransferOut:
		s.TotalTransfers = s.TotalTransfers.Add(tx.Amount)
	}
	return s
}

// RebuildStats replays a transaction log from scratch.
func RebuildStats(log []Transaction) Stats {
	s := Stats{TotalDeposits: decimal.Zero, TotalWithdrawals: decimal.Zero, TotalTransfers: decimal.Zero}
	for _, tx := range log {
		s = s.With(tx)
	}
	return s
}
