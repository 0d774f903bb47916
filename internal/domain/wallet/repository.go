package wallet

import "context"

type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByWalletID(ctx context.Context, walletID string) (*Wallet, error)
	GetByUserID(ctx context.Context, userID string) (*Wallet, error)
	// ForUpdate variants hold a row lock until the surrounding tx ends.
	GetByWalletIDForUpdate(ctx context.Context, walletID string) (*Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, userID string) (*Wallet, error)
	// Save persists w if its version is unchanged since load and bumps the version.
	Save(ctx context.Context, w *Wallet) error

	// AppendTransaction inserts an immutable record; a reused reference yields ErrDuplicateReference.
	AppendTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionByReference(ctx context.Context, reference string) (*Transaction, error)
	ListTransactions(ctx context.Context, walletID string, limit int) ([]Transaction, error)
}
