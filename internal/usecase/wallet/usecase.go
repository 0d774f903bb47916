package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"p2p-lending-engine/internal/domain/event"
	"p2p-lending-engine/internal/domain/uow"
	domain "p2p-lending-engine/internal/domain/wallet"
	"p2p-lending-engine/internal/engine"
	"p2p-lending-engine/pkg/id"
)

const DefaultHistoryLimit = 50

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

// Open returns the user's wallet, creating it with the configured default
// limits the first time.
func (u *Usecase) Open(ctx context.Context, userID string) (*WalletDTO, bool, error) {
	now := u.clock()
	var out *domain.Wallet
	created := false
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := r.Wallets.GetByUserID(ctx, userID)
		if err == nil {
			out = w
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		w = domain.New(id.NewID32(), userID, u.cfg.WalletLimits, now)
		if err := r.Wallets.Create(ctx, w); err != nil {
			return err
		}
		out, created = w, true
		return nil
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// a concurrent Open won
		err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
			w, err := r.Wallets.GetByUserID(ctx, userID)
			out = w
			return err
		})
	}
	if err != nil {
		return nil, false, err
	}
	return toWalletDTO(out), created, nil
}

func (u *Usecase) Get(ctx context.Context, walletID string) (*WalletDTO, error) {
	var out *domain.Wallet
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := r.Wallets.GetByWalletID(ctx, walletID)
		out = w
		return err
	})
	if err != nil {
		return nil, err
	}
	return toWalletDTO(out), nil
}

func (u *Usecase) Transactions(ctx context.Context, walletID string, limit int) ([]TransactionDTO, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var log []domain.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Wallets.GetByWalletID(ctx, walletID); err != nil {
			return err
		}
		var err error
		log, err = r.Wallets.ListTransactions(ctx, walletID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]TransactionDTO, 0, len(log))
	for i := range log {
		out = append(out, *toTransactionDTO(&log[i]))
	}
	return out, nil
}

// Apply posts one transaction of any type. Replaying a reference returns the
// original record without touching the balance.
func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*TransactionDTO, error) {
	now := u.clock()
	entry := domain.Entry{
		Type:      in.Type,
		Amount:    in.Amount,
		Reference: strings.TrimSpace(in.Reference),
		Metadata:  in.Metadata,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	var (
		w  *domain.Wallet
		tx *domain.Transaction
	)
	err := uow.Retry(ctx, u.cfg.Retry, func() error {
		return u.uow.WithinTx(ctx, func(r uow.Repos) error {
			var err error
			w, err = r.Wallets.GetByWalletIDForUpdate(ctx, in.WalletID)
			if err != nil {
				return err
			}
			tx, _, err = Post(ctx, r, w, entry, now)
			return err
		})
	})
	if err != nil {
		engine.Emit(ctx, u.pub, LimitExceededEvents(w, err, now)...)
		return nil, err
	}
	return toTransactionDTO(tx), nil
}

// RecordExternalDeposit credits a gateway deposit. The gateway reference is
// the idempotency key.
func (u *Usecase) RecordExternalDeposit(ctx context.Context, walletID string, amount decimal.Decimal, externalRef string) (*TransactionDTO, error) {
	externalRef = strings.TrimSpace(externalRef)
	if externalRef == "" {
		return nil, domain.ErrMissingReference
	}
	return u.Apply(ctx, ApplyInput{
		WalletID:  walletID,
		Type:      domain.TxDeposit,
		Amount:    amount,
		Reference: "ext:" + externalRef,
		Metadata:  map[string]string{"source": "gateway", "external_reference": externalRef},
	})
}

func (u *Usecase) Withdraw(ctx context.Context, walletID string, amount decimal.Decimal, reference string) (*TransactionDTO, error) {
	return u.Apply(ctx, ApplyInput{
		WalletID:  walletID,
		Type:      domain.TxWithdrawal,
		Amount:    amount,
		Reference: reference,
	})
}

// Transfer moves money between two wallets in one unit: transfer_out on the
// sender, transfer_in on the receiver. Wallets are locked in id order.
func (u *Usecase) Transfer(ctx context.Context, in TransferInput) (*TransferDTO, error) {
	if in.FromWalletID == in.ToWalletID {
		return nil, domain.ErrSameWalletTransfer
	}
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		return nil, domain.ErrMissingReference
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	now := u.clock()
	meta := map[string]string{}
	if in.Note != "" {
		meta["note"] = in.Note
	}

	var (
		from     *domain.Wallet
		out, inc *domain.Transaction
	)
	err := uow.Retry(ctx, u.cfg.Retry, func() error {
		return u.uow.WithinTx(ctx, func(r uow.Repos) error {
			locked := map[string]*domain.Wallet{}
			for _, wid := range orderedIDs(in.FromWalletID, in.ToWalletID) {
				w, err := r.Wallets.GetByWalletIDForUpdate(ctx, wid)
				if err != nil {
					return err
				}
				locked[wid] = w
			}
			from = locked[in.FromWalletID]
			to := locked[in.ToWalletID]

			var err error
			out, _, err = Post(ctx, r, from, domain.Entry{
				Type:                 domain.TxTransferOut,
				Amount:               in.Amount,
				Reference:            ref + ":out",
				CounterpartyWalletID: to.WalletID,
				Metadata:             meta,
			}, now)
			if err != nil {
				return err
			}
			inc, _, err = Post(ctx, r, to, domain.Entry{
				Type:                 domain.TxTransferIn,
				Amount:               in.Amount,
				Reference:            ref + ":in",
				CounterpartyWalletID: from.WalletID,
				Metadata:             meta,
			}, now)
			return err
		})
	})
	if err != nil {
		engine.Emit(ctx, u.pub, LimitExceededEvents(from, err, now)...)
		return nil, err
	}
	return &TransferDTO{Out: *toTransactionDTO(out), In: *toTransactionDTO(inc)}, nil
}

func orderedIDs(a, b string) []string {
	if a < b {
		return []string{a, b}
	}
	return []string{b, a}
}
