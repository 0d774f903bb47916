package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

type TxType string

const (
	TxDeposit          TxType = "deposit"
	TxWithdrawal       TxType = "withdrawal"
	TxTransferIn       TxType = "transfer_in"
	TxTransferOut      TxType = "transfer_out"
	TxLoanPayment      TxType = "loan_payment"
	TxLoanDisbursement TxType = "loan_disbursement"
	TxRefund           TxType = "refund"
)

func (t TxType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxTransferIn, TxTransferOut, TxLoanPayment, TxLoanDisbursement, TxRefund:
		return true
	}
	return false
}

// Debit reports whether t takes money out of the wallet.
func (t TxType) Debit() bool {
	return t == TxWithdrawal || t == TxTransferOut || t == TxLoanPayment
}

type TxStatus string

const TxCompleted TxStatus = "completed"

// LimitKind groups transaction types that share a usage counter.
type LimitKind string

const (
	KindDeposit    LimitKind = "deposit"
	KindWithdrawal LimitKind = "withdrawal"
	KindTransfer   LimitKind = "transfer"
)

// limitKind maps a transaction type to its counter; ok is false for unlimited types.
func limitKind(t TxType) (LimitKind, bool) {
	switch t {
	case TxDeposit:
		return KindDeposit, true
	case TxWithdrawal:
		return KindWithdrawal, true
	case TxTransferOut:
		return KindTransfer, true
	}
	return "", false
}

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

// Limits caps usage per kind and period. A zero value means unlimited.
type Limits struct {
	DailyDeposit      decimal.Decimal `json:"daily_deposit"`
	DailyWithdrawal   decimal.Decimal `json:"daily_withdrawal"`
	DailyTransfer     decimal.Decimal `json:"daily_transfer"`
	MonthlyDeposit    decimal.Decimal `json:"monthly_deposit"`
	MonthlyWithdrawal decimal.Decimal `json:"monthly_withdrawal"`
	MonthlyTransfer   decimal.Decimal `json:"monthly_transfer"`
}

func (l Limits) For(k LimitKind, p Period) decimal.Decimal {
	switch {
	case p == PeriodDaily && k == KindDeposit:
		return l.DailyDeposit
	case p == PeriodDaily && k == KindWithdrawal:
		return l.DailyWithdrawal
	case p == PeriodDaily && k == KindTransfer:
		return l.DailyTransfer
	case p == PeriodMonthly && k == KindDeposit:
		return l.MonthlyDeposit
	case p == PeriodMonthly && k == KindWithdrawal:
		return l.MonthlyWithdrawal
	case p == PeriodMonthly && k == KindTransfer:
		return l.MonthlyTransfer
	}
	return decimal.Zero
}

type Usage struct {
	Deposit    decimal.Decimal `json:"deposit"`
	Withdrawal decimal.Decimal `json:"withdrawal"`
	Transfer   decimal.Decimal `json:"transfer"`
}

func (u Usage) For(k LimitKind) decimal.Decimal {
	switch k {
	case KindDeposit:
		return u.Deposit
	case KindWithdrawal:
		return u.Withdrawal
	case KindTransfer:
		return u.Transfer
	}
	return decimal.Zero
}

func (u *Usage) add(k LimitKind, amount decimal.Decimal) {
	switch k {
	case KindDeposit:
		u.Deposit = u.Deposit.Add(amount)
	case KindWithdrawal:
		u.Withdrawal = u.Withdrawal.Add(amount)
	case KindTransfer:
		u.Transfer = u.Transfer.Add(amount)
	}
}

func zeroUsage() Usage {
	return Usage{Deposit: decimal.Zero, Withdrawal: decimal.Zero, Transfer: decimal.Zero}
}

type Stats struct {
	TransactionCount int64           `json:"transaction_count"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalTransfers   decimal.Decimal `json:"total_transfers"`
}

type Wallet struct {
	ID       uint64          `gorm:"primaryKey;column:id" json:"-"`
	WalletID string          `gorm:"size:32;uniqueIndex:ux_wallets_wallet_id" json:"wallet_id"`
	UserID   string          `gorm:"size:32;uniqueIndex:ux_wallets_user_id" json:"user_id"`
	Balance  decimal.Decimal `gorm:"type:decimal(18,2)" json:"balance"`

	Limits         Limits    `gorm:"type:json;serializer:json" json:"limits"`
	DailyUsage     Usage     `gorm:"type:json;serializer:json" json:"daily_usage"`
	MonthlyUsage   Usage     `gorm:"type:json;serializer:json" json:"monthly_usage"`
	DailyResetAt   time.Time `json:"daily_reset_at"`
	MonthlyResetAt time.Time `json:"monthly_reset_at"`
	Stats          Stats     `gorm:"type:json;serializer:json" json:"stats"`

	Version   int64     `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string { return "wallets" }

// Transaction is an immutable ledger record; Reference is globally unique.
type Transaction struct {
	ID                   uint64            `gorm:"primaryKey;column:id" json:"-"`
	Reference            string            `gorm:"size:128;uniqueIndex:ux_wallet_tx_reference" json:"reference"`
	WalletID             string            `gorm:"size:32;index:idx_wallet_tx_wallet" json:"wallet_id"`
	Type                 TxType            `gorm:"size:24" json:"type"`
	Amount               decimal.Decimal   `gorm:"type:decimal(18,2)" json:"amount"`
	BalanceAfter         decimal.Decimal   `gorm:"type:decimal(18,2)" json:"balance_after"`
	Status               TxStatus          `gorm:"size:16" json:"status"`
	LoanID               string            `gorm:"size:32;index" json:"loan_id,omitempty"`
	CounterpartyWalletID string            `gorm:"size:32" json:"counterparty_wallet_id,omitempty"`
	Metadata             map[string]string `gorm:"type:json;serializer:json" json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

func (Transaction) TableName() string { return "wallet_transactions" }

// New opens an empty wallet whose usage windows start at now.
func New(walletID, userID string, limits Limits, now time.Time) *Wallet {
	return &Wallet{
		WalletID:       walletID,
		UserID:         userID,
		Balance:        decimal.Zero,
		Limits:         limits,
		DailyUsage:     zeroUsage(),
		MonthlyUsage:   zeroUsage(),
		DailyResetAt:   startOfDay(now),
		MonthlyResetAt: startOfMonth(now),
		Stats: Stats{
			TotalDeposits:    decimal.Zero,
			TotalWithdrawals: decimal.Zero,
			TotalTransfers:   decimal.Zero,
		},
		Version: 1,
	}
}
