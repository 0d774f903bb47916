package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"p2p-lending-engine/internal/domain/uow"
	walletDomain "p2p-lending-engine/internal/domain/wallet"
)

type WalletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) *WalletRepository { return &WalletRepository{db: db} }

func (r *WalletRepository) Create(ctx context.Context, w *walletDomain.Wallet) error {
	if w.Version == 0 {
		w.Version = 1
	}
	return translate(r.db.WithContext(ctx).Create(w).Error, nil, walletDomain.ErrAlreadyExists)
}

func (r *WalletRepository) Save(ctx context.Context, w *walletDomain.Wallet) error {
	prev := w.Version
	w.Version = prev + 1
	res := r.db.WithContext(ctx).
		Model(w).
		Where("version = ?", prev).
		Select("*").
		Omit("id", "created_at").
		Updates(w)
	if res.Error != nil {
		w.Version = prev
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		w.Version = prev
		return uow.ErrVersionConflict
	}
	return nil
}

func (r *WalletRepository) get(ctx context.Context, lock bool, column, value string) (*walletDomain.Wallet, error) {
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out walletDomain.Wallet
	if err := q.Where(column+" = ?", value).First(&out).Error; err != nil {
		return nil, translate(err, walletDomain.ErrNotFound, nil)
	}
	return &out, nil
}

func (r *WalletRepository) GetByWalletID(ctx context.Context, walletID string) (*walletDomain.Wallet, error) {
	return r.get(ctx, false, "wallet_id", walletID)
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*walletDomain.Wallet, error) {
	return r.get(ctx, false, "user_id", userID)
}

func (r *WalletRepository) GetByWalletIDForUpdate(ctx context.Context, walletID string) (*walletDomain.Wallet, error) {
	return r.get(ctx, true, "wallet_id", walletID)
}

func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (*walletDomain.Wallet, error) {
	return r.get(ctx, true, "user_id", userID)
}

func (r *WalletRepository) AppendTransaction(ctx context.Context, tx *walletDomain.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error, nil, walletDomain.ErrDuplicateReference)
}

func (r *WalletRepository) GetTransactionByReference(ctx context.Context, reference string) (*walletDomain.Transaction, error) {
	var out walletDomain.Transaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&out).Error
	if err != nil {
		return nil, translate(err, walletDomain.ErrTransactionNotFound, nil)
	}
	return &out, nil
}

// ListTransactions returns the newest limit records of walletID, newest first.
func (r *WalletRepository) ListTransactions(ctx context.Context, walletID string, limit int) ([]walletDomain.Transaction, error) {
	var out []walletDomain.Transaction
	q := r.db.WithContext(ctx).Where("wallet_id = ?", walletID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	return out, nil
}
