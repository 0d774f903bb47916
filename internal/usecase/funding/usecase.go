package funding

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
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

type InvestInput struct {
	LoanID     string
	InvestorID string
	Amount     decimal.Decimal
	// Reference makes the investment idempotent; one is generated when empty.
	Reference string
}

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

func investRef(ref string) string          { return "invest:" + ref }
func disbursementRef(loanID string) string { return "disburse:" + loanID }

// Invest debits the investor and records the contribution. The investment that
// completes the target also funds, disburses and activates the loan, all in the
// same unit of work.
func (u *Usecase) Invest(ctx context.Context, in InvestInput) (*loanuc.LoanDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, domainLoan.ErrInvalidAmount
	}
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		ref = id.NewID32()
	}
	now := u.clock()

	var (
		out      *domainLoan.Loan
		investor *domainWallet.Wallet
		events   []event.Event
	)
	err := uow.Retry(ctx, u.cfg.Retry, func() error {
		events = nil
		return u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
			out = l
			if l.HasInvestment(ref) {
				return nil
			}
			if err := l.CanAcceptInvestment(); err != nil {
				return err
			}
			if err := l.AddInvestment(in.InvestorID, in.Amount, ref, now); err != nil {
				return err
			}

			// lock order: loan, borrower wallet, investor wallet
			var borrower *domainWallet.Wallet
			if l.FullyFunded() {
				if err := l.CanFund(u.cfg.AutoApprove); err != nil {
					return err
				}
				var err error
				if borrower, err = r.Wallets.GetByUserIDForUpdate(ctx, l.BorrowerID); err != nil {
					return err
				}
			}
			var err error
			if investor, err = r.Wallets.GetByUserIDForUpdate(ctx, in.InvestorID); err != nil {
				return err
			}
			if _, _, err := walletuc.Post(ctx, r, investor, domainWallet.Entry{
				Type:      domainWallet.TxTransferOut,
				Amount:    in.Amount,
				Reference: investRef(ref),
				LoanID:    l.LoanID,
				Metadata:  map[string]string{"purpose": "investment"},
			}, now); err != nil {
				return err
			}

			if borrower != nil {
				ev, err := u.fund(ctx, r, l, borrower, now)
				if err != nil {
					return err
				}
				events = append(events, ev)
			}
			return r.Loans.Save(ctx, l)
		})
	})
	if err != nil {
		engine.Emit(ctx, u.pub, walletuc.LimitExceededEvents(investor, err, now)...)
		return nil, err
	}

	engine.Emit(ctx, u.pub, events...)
	return loanuc.ToDTO(out), nil
}

// fund runs MarkFunded, the single disbursement credit and Activate.
func (u *Usecase) fund(ctx context.Context, r uow.Repos, l *domainLoan.Loan, borrower *domainWallet.Wallet, now time.Time) (event.Event, error) {
	if err := l.MarkFunded(u.cfg.AutoApprove, now); err != nil {
		return event.Event{}, err
	}
	if _, _, err := walletuc.Post(ctx, r, borrower, domainWallet.Entry{
		Type:      domainWallet.TxLoanDisbursement,
		Amount:    l.FundedAmount,
		Reference: disbursementRef(l.LoanID),
		LoanID:    l.LoanID,
	}, now); err != nil {
		return event.Event{}, err
	}
	if err := l.Activate(now); err != nil {
		return event.Event{}, err
	}

	investors := make([]string, 0, len(l.Investments))
	for _, s := range l.Investors() {
		investors = append(investors, s.InvestorID)
	}
	zap.L().Info("loan funded and disbursed",
		zap.String("loan_id", l.LoanID),
		zap.String("funded_amount", l.FundedAmount.StringFixed(2)),
		zap.Int("investors", len(investors)))
	return event.Funded(event.FundedPayload{
		LoanID:       l.LoanID,
		BorrowerID:   l.BorrowerID,
		FundedAmount: l.FundedAmount,
		Investors:    investors,
		FundedAt:     now,
	}), nil
}
