package mysql

import (
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"p2p-lending-engine/internal/domain/approval"
	"p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	"p2p-lending-engine/internal/domain/wallet"
)

const (
	erDupEntry        = 1062
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
)

// translate maps driver and gorm errors onto domain errors. notFound and
// duplicate are the caller's sentinels; nil leaves that case untranslated.
func translate(err, notFound, duplicate error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", duplicate, err)
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erLockDeadlock, erLockWaitTimeout:
			return fmt.Errorf("%w: %v", uow.ErrVersionConflict, err)
		case erDupEntry:
			if duplicate != nil {
				return fmt.Errorf("%w: %v", duplicate, err)
			}
		}
	}
	return err
}

// Models lists every table owned by this package, for db.Migrate.
func Models() []any {
	return []any{&loan.Loan{}, &wallet.Wallet{}, &wallet.Transaction{}, &approval.Approval{}}
}
