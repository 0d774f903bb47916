package repayment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"p2p-lending-engine/internal/domain/event"
	domainLoan "p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	domainWallet "p2p-lending-engine/internal/domain/wallet"
	"p2p-lending-engine/internal/engine"
	loanuc "p2p-lending-engine/internal/usecase/loan"
	walletuc "p2p-lending-engine/internal/usecase/wallet"
	"p2p-lending-engine/pkg/id"
)

type Usecase struct {
	uow   uow.UnitOfWork
	pub   event.Publisher
	cfg   engine.Settings
	clock engine.Clock
}

func NewUsecase(tx uow.UnitOfWork, pub event.Publisher, cfg engine.Settings, clock engine.Clock) *Usecase {
	if clock == nil {
		clock = engine.SystemClock
	}
	return &Usecase{uow: tx, pub: pub, cfg: cfg, clock: clock}
}

func paymentRef(ref string) string { return "repay:" + ref }

func payoutRef(ref, investorID string) string { return "repay:" + ref + ":" + investorID }

// Pay debits the borrower, settles installments oldest first and credits every
// investor their share, as one unit of work. Only the amount actually applied
// is debited; a replayed reference returns the loan unchanged.
func (u *Usecase) Pay(ctx context.Context, in PayInput) (*PaymentDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, domainLoan.ErrInvalidAmount
	}
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		ref = id.NewID32()
	}
	now := u.clock()

	var (
		out      *PaymentDTO
		borrower *domainWallet.Wallet
		events   []event.Event
	)
	err := uow.Retry(ctx, u.cfg.Retry, func() error {
		events = nil
		return u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
			prev, err := r.Wallets.GetTransactionByReference(ctx, paymentRef(ref))
			switch {
			case err == nil:
				if prev.LoanID != l.LoanID {
					return fmt.Errorf("%w: %s was paid against loan %s", domainWallet.ErrDuplicateReference, ref, prev.LoanID)
				}
				out = &PaymentDTO{Reference: ref, Applied: prev.Amount, Unapplied: in.Amount.Sub(prev.Amount), Replayed: true, Loan: loanuc.ToDTO(l)}
				return nil
			case !errors.Is(err, domainWallet.ErrTransactionNotFound):
				return err
			}

			res, err := l.ApplyPayment(in.Amount, u.cfg.Penalty, now)
			if err != nil {
				return err
			}
			events = append(events, overdueEvents(l, res.NewlyOverdue, now)...)

			// lock order: loan, borrower wallet, investor wallets
			if borrower, err = r.Wallets.GetByUserIDForUpdate(ctx, l.BorrowerID); err != nil {
				return err
			}
			if _, _, err := walletuc.Post(ctx, r, borrower, domainWallet.Entry{
				Type:      domainWallet.TxLoanPayment,
				Amount:    res.Applied,
				Reference: paymentRef(ref),
				LoanID:    l.LoanID,
			}, now); err != nil {
				return err
			}

			payouts := l.SplitPayout(res.Applied)
			dto := &PaymentDTO{
				Reference: ref,
				Applied:   res.Applied,
				Unapplied: res.Unapplied,
				Payouts:   make([]PayoutDTO, 0, len(payouts)),
			}
			for _, p := range payouts {
				w, err := r.Wallets.GetByUserIDForUpdate(ctx, p.InvestorID)
				if err != nil {
					return err
				}
				if _, _, err := walletuc.Post(ctx, r, w, domainWallet.Entry{
					Type:                 domainWallet.TxTransferIn,
					Amount:               p.Amount,
					Reference:            payoutRef(ref, p.InvestorID),
					LoanID:               l.LoanID,
					CounterpartyWalletID: borrower.WalletID,
					Metadata:             map[string]string{"purpose": "repayment_payout"},
				}, now); err != nil {
					return err
				}
				dto.Payouts = append(dto.Payouts, PayoutDTO{InvestorID: p.InvestorID, Amount: p.Amount})
			}

			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}

			for _, inst := range res.Settled {
				dto.SettledInstallment = append(dto.SettledInstallment, inst.Number)
				events = append(events, event.InstallmentPaid(event.InstallmentPaidPayload{
					LoanID:            l.LoanID,
					BorrowerID:        l.BorrowerID,
					InstallmentNumber: inst.Number,
					Amount:            inst.Amount,
					LateFees:          inst.LateFees,
					PaidAt:            now,
				}))
			}
			if res.Completed {
				events = append(events, event.Completed(event.CompletedPayload{
					LoanID:      l.LoanID,
					BorrowerID:  l.BorrowerID,
					TotalPaid:   l.AmountPaid,
					CompletedAt: now,
				}))
			}
			dto.Loan = loanuc.ToDTO(l)
			out = dto
			return nil
		})
	})
	if err != nil {
		engine.Emit(ctx, u.pub, walletuc.LimitExceededEvents(borrower, err, now)...)
		return nil, err
	}

	engine.Emit(ctx, u.pub, events...)
	if !out.Replayed {
		zap.L().Info("repayment applied",
			zap.String("loan_id", in.LoanID),
			zap.String("reference", ref),
			zap.String("applied", out.Applied.StringFixed(2)),
			zap.Ints("settled", out.SettledInstallment))
	}
	return out, nil
}

func overdueEvents(l *domainLoan.Loan, flagged []domainLoan.Installment, now time.Time) []event.Event {
	out := make([]event.Event, 0, len(flagged))
	for _, inst := range flagged {
		out = append(out, event.Overdue(event.OverduePayload{
			LoanID:            l.LoanID,
			BorrowerID:        l.BorrowerID,
			InstallmentNumber: inst.Number,
			DueDate:           inst.DueDate,
			AmountDue:         inst.Due(),
			DetectedAt:        now,
		}))
	}
	return out
}

// GetPenaltyStatus is a live read: penalties are computed against the clock and
// nothing is written.
func (u *Usecase) GetPenaltyStatus(ctx context.Context, loanID string) (*domainLoan.PenaltyStatus, error) {
	now := u.clock()
	var out domainLoan.PenaltyStatus
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		out = l.PenaltyStatus(u.cfg.Penalty, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveLoanIDs returns one page of active loan ids after afterID, in id order.
func (u *Usecase) ActiveLoanIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	var ids []string
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		ids, err = r.Loans.ListIDsByStatus(ctx, domainLoan.StatusActive, afterID, limit)
		return err
	})
	return ids, err
}

// Sweep persists accrued penalties on one loan, flags newly overdue
// installments and applies the default policy.
func (u *Usecase) Sweep(ctx context.Context, loanID string) (*SweepResult, error) {
	now := u.clock()
	var (
		res    *SweepResult
		events []event.Event
	)
	err := uow.Retry(ctx, u.cfg.Retry, func() error {
		events = nil
		return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
			res = &SweepResult{LoanID: l.LoanID}
			if l.Status != domainLoan.StatusActive {
				return nil
			}
			feesBefore := l.TotalLateFees
			res.NewlyOverdue = l.AccruePenalties(u.cfg.Penalty, now)
			res.Accrued = !l.TotalLateFees.Equal(feesBefore)

			flagged := make([]domainLoan.Installment, 0, len(res.NewlyOverdue))
			for _, n := range res.NewlyOverdue {
				flagged = append(flagged, l.Installments[n-1])
			}
			events = append(events, overdueEvents(l, flagged, now)...)
			if u.cfg.Default.ShouldDefault(l, now) {
				if err := l.MarkDefaulted(u.cfg.Default, now); err != nil {
					return err
				}
				res.Defaulted = true
				events = append(events, event.Defaulted(event.DefaultedPayload{
					LoanID:          l.LoanID,
					BorrowerID:      l.BorrowerID,
					AmountRemaining: l.AmountRemaining,
					DefaultedAt:     now,
				}))
			}

			if len(res.NewlyOverdue) == 0 && !res.Accrued && !res.Defaulted {
				return nil
			}
			return r.Loans.Save(ctx, l)
		})
	})
	if err != nil {
		return nil, err
	}
	engine.Emit(ctx, u.pub, events...)
	if res.Defaulted {
		zap.L().Warn("loan defaulted", zap.String("loan_id", loanID), zap.Time("at", now.Truncate(time.Second)))
	}
	return res, nil
}
