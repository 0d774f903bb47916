package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	domain "p2p-lending-engine/internal/domain/wallet"
)

type ApplyInput struct {
	WalletID  string
	Type      domain.TxType
	Amount    decimal.Decimal
	Reference string
	Metadata  map[string]string
}

type TransferInput struct {
	FromWalletID string
	ToWalletID   string
	Amount       decimal.Decimal
	Reference    string
	Note         string
}

type WalletDTO struct {
	WalletID     string          `json:"wallet_id"`
	UserID       string          `json:"user_id"`
	Balance      decimal.Decimal `json:"balance"`
	Limits       domain.Limits   `json:"limits"`
	DailyUsage   domain.Usage    `json:"daily_usage"`
	MonthlyUsage domain.Usage    `json:"monthly_usage"`
	Stats        domain.Stats    `json:"stats"`
	CreatedAt    time.Time       `json:"created_at"`
}

type TransactionDTO struct {
	Reference            string            `json:"reference"`
	WalletID             string            `json:"wallet_id"`
	Type                 domain.TxType     `json:"type"`
	Amount               decimal.Decimal   `json:"amount"`
	BalanceAfter         decimal.Decimal   `json:"balance_after"`
	Status               domain.TxStatus   `json:"status"`
	LoanID               string            `json:"loan_id,omitempty"`
	CounterpartyWalletID string            `json:"counterparty_wallet_id,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

type TransferDTO struct {
	Out TransactionDTO `json:"out"`
	In  TransactionDTO `json:"in"`
}

func toWalletDTO(w *domain.Wallet) *WalletDTO {
	return &WalletDTO{
		WalletID:     w.WalletID,
		UserID:       w.UserID,
		Balance:      w.Balance,
		Limits:       w.Limits,
		DailyUsage:   w.DailyUsage,
		MonthlyUsage: w.MonthlyUsage,
		Stats:        w.Stats,
		CreatedAt:    w.CreatedAt,
	}
}

func toTransactionDTO(tx *domain.Transaction) *TransactionDTO {
	return &TransactionDTO{
		Reference:            tx.Reference,
		WalletID:             tx.WalletID,
		Type:                 tx.Type,
		Amount:               tx.Amount,
		BalanceAfter:         tx.BalanceAfter,
		Status:               tx.Status,
		LoanID:               tx.LoanID,
		CounterpartyWalletID: tx.CounterpartyWalletID,
		Metadata:             tx.Metadata,
		CreatedAt:            tx.CreatedAt,
	}
}
