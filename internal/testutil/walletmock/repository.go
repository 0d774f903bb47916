package walletmock

import (
	"context"

	domain "p2p-lending-engine/internal/domain/wallet"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled; unset writes succeed.
type Repo struct {
	CreateFn                    func(ctx context.Context, w *domain.Wallet) error
	GetByWalletIDFn             func(ctx context.Context, walletID string) (*domain.Wallet, error)
	GetByUserIDFn               func(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByWalletIDForUpdateFn    func(ctx context.Context, walletID string) (*domain.Wallet, error)
	GetByUserIDForUpdateFn      func(ctx context.Context, userID string) (*domain.Wallet, error)
	SaveFn                      func(ctx context.Context, w *domain.Wallet) error
	AppendTransactionFn         func(ctx context.Context, tx *domain.Transaction) error
	GetTransactionByReferenceFn func(ctx context.Context, reference string) (*domain.Transaction, error)
	ListTransactionsFn          func(ctx context.Context, walletID string, limit int) ([]domain.Transaction, error)
}

func (m *Repo) Create(ctx context.Context, w *domain.Wallet) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, w)
	}
	return nil
}

func (m *Repo) GetByWalletID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	if m.GetByWalletIDFn != nil {
		return m.GetByWalletIDFn(ctx, walletID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByWalletIDForUpdate(ctx context.Context, walletID string) (*domain.Wallet, error) {
	if m.GetByWalletIDForUpdateFn != nil {
		return m.GetByWalletIDForUpdateFn(ctx, walletID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	if m.GetByUserIDForUpdateFn != nil {
		return m.GetByUserIDForUpdateFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, w *domain.Wallet) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, w)
	}
	return nil
}

func (m *Repo) AppendTransaction(ctx context.Context, tx *domain.Transaction) error {
	if m.AppendTransactionFn != nil {
		return m.AppendTransactionFn(ctx, tx)
	}
	return nil
}

// GetTransactionByReference defaults to "not found" so fresh posts go through.
func (m *Repo) GetTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	if m.GetTransactionByReferenceFn != nil {
		return m.GetTransactionByReferenceFn(ctx, reference)
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *Repo) ListTransactions(ctx context.Context, walletID string, limit int) ([]domain.Transaction, error) {
	if m.ListTransactionsFn != nil {
		return m.ListTransactionsFn(ctx, walletID, limit)
	}
	return nil, context.Canceled
}
