package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"p2p-lending-engine/internal/domain/event"
	"p2p-lending-engine/internal/domain/uow"
	domain "p2p-lending-engine/internal/domain/wallet"
)

// Post applies e to w, which the caller must hold locked inside r's transaction,
// and persists both the record and the wallet. A reference that is already on
// the ledger for the same wallet returns the original record with posted=false.
func Post(ctx context.Context, r uow.Repos, w *domain.Wallet, e domain.Entry, now time.Time) (tx *domain.Transaction, posted bool, err error) {
	prev, err := r.Wallets.GetTransactionByReference(ctx, e.Reference)
	switch {
	case err == nil:
		if prev.WalletID != w.WalletID {
			return nil, false, fmt.Errorf("%w: %s belongs to another wallet", domain.ErrDuplicateReference, e.Reference)
		}
		return prev, false, nil
	case !errors.Is(err, domain.ErrTransactionNotFound):
		return nil, false, err
	}

	tx, err = w.Apply(e, now)
	if err != nil {
		return nil, false, err
	}
	if err := r.Wallets.AppendTransaction(ctx, tx); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			// lost an insert race; the retry will find the winner's record
			return nil, false, fmt.Errorf("%w: %v", uow.ErrVersionConflict, err)
		}
		return nil, false, err
	}
	if err := r.Wallets.Save(ctx, w); err != nil {
		return nil, false, err
	}
	return tx, true, nil
}

// LimitExceededEvents turns a refused post into the wallet.limit_exceeded
// notification. It returns nil for any other outcome.
func LimitExceededEvents(w *domain.Wallet, err error, now time.Time) []event.Event {
	var le *domain.LimitError
	if w == nil || !errors.As(err, &le) {
		return nil
	}
	return []event.Event{event.LimitExceeded(event.LimitExceededPayload{
		WalletID:  w.WalletID,
		UserID:    w.UserID,
		Kind:      string(le.Kind),
		Period:    string(le.Period),
		Limit:     le.Limit,
		Attempted: le.Attempted,
		At:        now,
	})}
}
