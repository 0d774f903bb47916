package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Name string

const (
	LoanFunded          Name = "loan.funded"
	LoanInstallmentPaid Name = "loan.installment_paid"
	LoanOverdue         Name = "loan.overdue"
	LoanDefaulted       Name = "loan.defaulted"
	LoanCompleted       Name = "loan.completed"
	WalletLimitExceeded Name = "wallet.limit_exceeded"
)

// Event is a notification-worthy fact. Payload carries only ids, amounts and
// dates; rendering and delivery belong to the notification subsystem.
type Event struct {
	ID          string    `json:"id"`
	Name        Name      `json:"name"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload"`
}

// Publisher hands events to the notification side. Implementations must not
// block the caller for long; failures are reported, never retried here.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

func newEvent(name Name, aggregateID string, at time.Time, payload any) Event {
	return Event{ID: uuid.NewString(), Name: name, AggregateID: aggregateID, OccurredAt: at, Payload: payload}
}

type FundedPayload struct {
	LoanID       string          `json:"loan_id"`
	BorrowerID   string          `json:"borrower_id"`
	FundedAmount decimal.Decimal `json:"funded_amount"`
	Investors    []string        `json:"investors"`
	FundedAt     time.Time       `json:"funded_at"`
}

func Funded(p FundedPayload) Event { return newEvent(LoanFunded, p.LoanID, p.FundedAt, p) }

type InstallmentPaidPayload struct {
	LoanID            string          `json:"loan_id"`
	BorrowerID        string          `json:"borrower_id"`
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	LateFees          decimal.Decimal `json:"late_fees"`
	PaidAt            time.Time       `json:"paid_at"`
}

func InstallmentPaid(p InstallmentPaidPayload) Event {
	return newEvent(LoanInstallmentPaid, p.LoanID, p.PaidAt, p)
}

type OverduePayload struct {
	LoanID            string          `json:"loan_id"`
	BorrowerID        string          `json:"borrower_id"`
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	DetectedAt        time.Time       `json:"detected_at"`
}

func Overdue(p OverduePayload) Event { return newEvent(LoanOverdue, p.LoanID, p.DetectedAt, p) }

type DefaultedPayload struct {
	LoanID          string          `json:"loan_id"`
	BorrowerID      string          `json:"borrower_id"`
	AmountRemaining decimal.Decimal `json:"amount_remaining"`
	DefaultedAt     time.Time       `json:"defaulted_at"`
}

func Defaulted(p DefaultedPayload) Event {
	return newEvent(LoanDefaulted, p.LoanID, p.DefaultedAt, p)
}

type CompletedPayload struct {
	LoanID      string          `json:"loan_id"`
	BorrowerID  string          `json:"borrower_id"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	CompletedAt time.Time       `json:"completed_at"`
}

func Completed(p CompletedPayload) Event {
	return newEvent(LoanCompleted, p.LoanID, p.CompletedAt, p)
}

type LimitExceededPayload struct {
	WalletID  string          `json:"wallet_id"`
	UserID    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	Period    string          `json:"period"`
	Limit     decimal.Decimal `json:"limit"`
	Attempted decimal.Decimal `json:"attempted"`
	At        time.Time       `json:"at"`
}

func LimitExceeded(p LimitExceededPayload) Event {
	return newEvent(WalletLimitExceeded, p.WalletID, p.At, p)
}
