package mysql

import (
	"testing"

	"p2p-lending-engine/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates a private in-memory sqlite DB with the full schema.
// A single connection keeps the memory database alive and serializes txs.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + id.NewID32() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
