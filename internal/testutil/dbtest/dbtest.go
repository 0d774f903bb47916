// Package dbtest opens throwaway sqlite databases carrying the production schema.
package dbtest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"p2p-lending-engine/internal/adapter/repository/mysql"
	"p2p-lending-engine/internal/infrastructure/db"
	"p2p-lending-engine/pkg/id"
)

// Open returns a private in-memory database migrated with models plus every
// table owned by the repository package. One connection serializes txs.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()
	dsn := "file:" + id.NewID32() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb, append(mysql.Models(), models...)...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
