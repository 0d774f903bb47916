package approval

import (
	"context"
	"errors"
	"time"

	domainApproval "p2p-lending-engine/internal/domain/approval"
	domainLoan "p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	domainWallet "p2p-lending-engine/internal/domain/wallet"
	"p2p-lending-engine/internal/engine"
	walletuc "p2p-lending-engine/internal/usecase/wallet"
	"p2p-lending-engine/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	uow   uow.UnitOfWork
	cfg   engine.Settings
	clock engine.Clock
}

func NewUsecase(tx uow.UnitOfWork, cfg engine.Settings, clock engine.Clock) *Usecase {
	if clock == nil {
		clock = engine.SystemClock
	}
	return &Usecase{uow: tx, cfg: cfg, clock: clock}
}

// Approve records the desk's approval and moves the loan pending → approved.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*DecisionDTO, error) {
	when := in.ApprovalDate
	if when.IsZero() {
		when = u.clock()
	}
	return u.decide(ctx, in.LoanID, func(_ uow.Repos, l *domainLoan.Loan) (*domainApproval.Approval, error) {
		if err := l.Approve(u.clock()); err != nil {
			return nil, err
		}
		return &domainApproval.Approval{
			Decision:            domainApproval.DecisionApproved,
			PhotoURL:            in.PhotoURL,
			ValidatorEmployeeID: in.ValidatorEmployeeID,
			DecisionDate:        when.UTC(),
		}, nil
	})
}

func refundRef(loanID, investorID string) string { return "refund:" + loanID + ":" + investorID }

// Reject moves the loan pending → rejected; a reason is mandatory. Money already
// invested in the pending loan goes back to each investor in the same unit of work.
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*DecisionDTO, error) {
	return u.decide(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) (*domainApproval.Approval, error) {
		now := u.clock()
		if err := l.Reject(in.Reason, now); err != nil {
			return nil, err
		}
		// lock order: loan, investor wallets
		for _, inv := range l.Investors() {
			w, err := r.Wallets.GetByUserIDForUpdate(ctx, inv.InvestorID)
			if err != nil {
				return nil, err
			}
			if _, _, err := walletuc.Post(ctx, r, w, domainWallet.Entry{
				Type:      domainWallet.TxRefund,
				Amount:    inv.Amount,
				Reference: refundRef(l.LoanID, inv.InvestorID),
				LoanID:    l.LoanID,
				Metadata:  map[string]string{"purpose": "refund"},
			}, now); err != nil {
				return nil, err
			}
		}
		return &domainApproval.Approval{
			Decision:            domainApproval.DecisionRejected,
			Reason:              l.RejectionReason,
			ValidatorEmployeeID: in.ValidatorEmployeeID,
			DecisionDate:        now,
		}, nil
	})
}

func (u *Usecase) decide(ctx context.Context, loanID string, apply func(r uow.Repos, l *domainLoan.Loan) (*domainApproval.Approval, error)) (*DecisionDTO, error) {
	var dto *DecisionDTO
	err := uow.Retry(ctx, u.cfg.Retry, func() error {
		return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
			if _, err := r.Approvals.GetByLoanID(ctx, l.ID); err == nil {
				if l.Status == domainLoan.StatusApproved {
					return domainLoan.ErrAlreadyApproved
				}
				return domainApproval.ErrAlreadyDecided
			} else if !errors.Is(err, domainApproval.ErrNotFound) {
				return err
			}

			a, err := apply(r, l)
			if err != nil {
				return err
			}
			a.ApprovalID = id.NewID32()
			a.LoanID = l.ID
			if err := r.Approvals.Create(ctx, a); err != nil {
				return err
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			dto = &DecisionDTO{
				ApprovalID:   a.ApprovalID,
				LoanID:       l.LoanID,
				Decision:     string(a.Decision),
				LoanStatus:   string(l.Status),
				PhotoURL:     a.PhotoURL,
				Reason:       a.Reason,
				DecisionDate: a.DecisionDate,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("loan decision recorded",
		zap.String("loan_id", dto.LoanID),
		zap.String("decision", dto.Decision),
		zap.Time("decision_date", dto.DecisionDate.Truncate(time.Second)))
	return dto, nil
}
