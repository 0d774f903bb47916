package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	domainWallet "p2p-lending-engine/internal/domain/wallet"
	"p2p-lending-engine/internal/engine"
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

// Create prices and stores a new application. A borrower may hold only one
// open application per purpose within the cooldown window; the check and the
// insert run under the borrower's wallet lock.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	if len(in.BorrowerID) != 32 {
		return nil, fmt.Errorf("%w: borrower id must be 32 chars", domain.ErrInvalidTerms)
	}
	now := u.clock()
	terms := domain.Terms{
		Principal:      in.Principal,
		Purpose:        strings.TrimSpace(in.Purpose),
		DurationMonths: in.DurationMonths,
		InterestRate:   in.InterestRate,
		InterestModel:  in.InterestModel,
	}
	l, err := domain.New(id.NewID32(), in.BorrowerID, terms, in.Draft, now)
	if err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if u.cfg.ApplicationCooldown > 0 {
			// the borrower's wallet row serialises concurrent applications;
			// a borrower without a wallet has nothing to lock yet
			if _, err := r.Wallets.GetByUserIDForUpdate(ctx, in.BorrowerID); err != nil && !errors.Is(err, domainWallet.ErrNotFound) {
				return err
			}
			open, err := r.Loans.FindOpenApplication(ctx, in.BorrowerID, terms.Purpose, now.Add(-u.cfg.ApplicationCooldown))
			switch {
			case err == nil:
				return fmt.Errorf("%w: %s", domain.ErrDuplicateApplication, open.LoanID)
			case !errors.Is(err, domain.ErrNotFound):
				return err
			}
		}
		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("loan application created",
		zap.String("loan_id", l.LoanID),
		zap.String("borrower_id", l.BorrowerID),
		zap.String("status", string(l.Status)),
		zap.String("principal", l.Principal.StringFixed(2)))
	return ToDTO(l), nil
}

// Submit moves a draft to pending.
func (u *Usecase) Submit(ctx context.Context, loanID string) (*LoanDTO, error) {
	now := u.clock()
	var out *domain.Loan
	err := uow.Retry(ctx, u.cfg.Retry, func() error {
		return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
			if err := l.Submit(now); err != nil {
				return err
			}
			out = l
			return r.Loans.Save(ctx, l)
		})
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(out), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	var out *domain.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		out = l
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(out), nil
}
