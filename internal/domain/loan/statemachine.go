package loan

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var transitions = map[Status][]Status{
	StatusDraft:    {StatusPending},
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusFunded},
	StatusFunded:   {StatusActive},
	StatusActive:   {StatusCompleted, StatusDefaulted},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (l *Loan) move(to Status, reason string) error {
	if !CanTransition(l.Status, to) {
		return &TransitionError{From: l.Status, To: to, Reason: reason}
	}
	l.Status = to
	return nil
}

func stamp(field **time.Time, now time.Time) {
	if *field == nil {
		t := now
		*field = &t
	}
}

// New builds a priced application in draft or pending.
func New(loanID, borrowerID string, t Terms, draft bool, now time.Time) (*Loan, error) {
	q, err := QuoteTerms(t)
	if err != nil {
		return nil, err
	}
	model := t.InterestModel
	if model == "" {
		model = InterestFlat
	}
	l := &Loan{
		LoanID:         loanID,
		BorrowerID:     borrowerID,
		Purpose:        strings.TrimSpace(t.Purpose),
		Principal:      t.Principal,
		DurationMonths: t.DurationMonths,
		InterestRate:   t.InterestRate,
		InterestModel:  model,
		MonthlyPayment: q.MonthlyPayment,
		TotalInterest:  q.TotalInterest,
		TargetAmount:   t.Principal,
		Investments:    []Investment{},
		Installments:   []Installment{},
		Status:         StatusDraft,
		Version:        1,
		CreatedAt:      now,
	}
	if !draft {
		l.Status = StatusPending
		stamp(&l.SubmittedAt, now)
	}
	DeriveFields(l)
	return l, nil
}

func (l *Loan) Submit(now time.Time) error {
	if err := l.move(StatusPending, ""); err != nil {
		return err
	}
	stamp(&l.SubmittedAt, now)
	return nil
}

func (l *Loan) Approve(now time.Time) error {
	if l.Status == StatusApproved {
		return ErrAlreadyApproved
	}
	if err := l.move(StatusApproved, ""); err != nil {
		return err
	}
	stamp(&l.ApprovedAt, now)
	return nil
}

func (l *Loan) Reject(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrRejectionReasonNeeded
	}
	if err := l.move(StatusRejected, ""); err != nil {
		return err
	}
	l.RejectionReason = reason
	stamp(&l.RejectedAt, now)
	return nil
}

// CanAcceptInvestment checks status only; amounts are checked by AddInvestment.
// A pending loan takes partial investments; the one that completes the target
// is gated by CanFund.
func (l *Loan) CanAcceptInvestment() error {
	switch l.Status {
	case StatusApproved, StatusPending:
		return nil
	}
	return &TransitionError{From: l.Status, To: StatusFunded, Reason: "loan is not open for funding"}
}

// CanFund reports whether a fully subscribed loan may move to funded now. A
// pending loan needs the desk's approval first unless the platform auto-approves.
func (l *Loan) CanFund(autoApprove bool) error {
	if !l.FullyFunded() {
		return &TransitionError{From: l.Status, To: StatusFunded, Reason: "funding target not reached"}
	}
	if l.Status == StatusPending && !autoApprove {
		return &TransitionError{From: l.Status, To: StatusFunded, Reason: "loan awaiting approval"}
	}
	return nil
}

// AddInvestment appends a contribution. Overflow is rejected, never clamped.
func (l *Loan) AddInvestment(investorID string, amount decimal.Decimal, reference string, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if investorID == l.BorrowerID {
		return ErrSelfInvestment
	}
	if remaining := l.RemainingCapacity(); amount.GreaterThan(remaining) {
		return &OverflowError{Requested: amount, Remaining: remaining}
	}
	l.Investments = append(l.Investments, Investment{
		InvestorID: investorID,
		Amount:     amount,
		InvestedAt: now,
		Reference:  reference,
	})
	DeriveFields(l)
	return nil
}

// MarkFunded moves approved (or pending, under auto-approve) to funded.
func (l *Loan) MarkFunded(autoApprove bool, now time.Time) error {
	if err := l.CanFund(autoApprove); err != nil {
		return err
	}
	if l.Status == StatusPending {
		if err := l.Approve(now); err != nil {
			return err
		}
	}
	if err := l.move(StatusFunded, ""); err != nil {
		return err
	}
	stamp(&l.FundedAt, now)
	return nil
}

// Activate records disbursement and lays out the repayment schedule from now.
func (l *Loan) Activate(now time.Time) error {
	if err := l.move(StatusActive, ""); err != nil {
		return err
	}
	q := Quote{MonthlyPayment: l.MonthlyPayment, TotalInterest: l.TotalInterest, TotalRepayment: l.Principal.Add(l.TotalInterest)}
	l.Installments = BuildSchedule(q, l.DurationMonths, now)
	stamp(&l.ActivatedAt, now)
	DeriveFields(l)
	return nil
}

func (l *Loan) AllInstallmentsPaid() bool {
	if len(l.Installments) == 0 {
		return false
	}
	for _, inst := range l.Installments {
		if !inst.Settled() {
			return false
		}
	}
	return true
}

func (l *Loan) MarkCompleted(now time.Time) error {
	if l.Status == StatusActive && !l.AllInstallmentsPaid() {
		return &TransitionError{From: l.Status, To: StatusCompleted, Reason: "installments outstanding"}
	}
	if err := l.move(StatusCompleted, ""); err != nil {
		return err
	}
	l.NextPaymentDate = nil
	stamp(&l.CompletedAt, now)
	return nil
}

type DefaultPolicy struct {
	// MissedInstallments overdue installments that trigger default; zero disables.
	MissedInstallments int
	// Horizon is how long the oldest overdue installment may stay unpaid; zero disables.
	Horizon time.Duration
}

// ShouldDefault evaluates the policy against the current installment statuses.
func (p DefaultPolicy) ShouldDefault(l *Loan, now time.Time) bool {
	if l.Status != StatusActive {
		return false
	}
	missed := 0
	var oldest *time.Time
	for _, inst := range l.Installments {
		if inst.Status != InstallmentOverdue {
			continue
		}
		missed++
		if oldest == nil {
			d := inst.DueDate
			oldest = &d
		}
	}
	if missed == 0 {
		return false
	}
	if p.MissedInstallments > 0 && missed >= p.MissedInstallments {
		return true
	}
	return p.Horizon > 0 && now.Sub(*oldest) > p.Horizon
}

func (l *Loan) MarkDefaulted(p DefaultPolicy, now time.Time) error {
	if l.Status == StatusActive && !p.ShouldDefault(l, now) {
		return &TransitionError{From: l.Status, To: StatusDefaulted, Reason: "default horizon not reached"}
	}
	if err := l.move(StatusDefaulted, ""); err != nil {
		return err
	}
	for i := range l.Installments {
		if !l.Installments[i].Settled() {
			l.Installments[i].Status = InstallmentDefaulted
		}
	}
	l.IsDefaulted = true
	stamp(&l.DefaultedAt, now)
	DeriveFields(l)
	return nil
}
