// Package dbtest provides a migrated in-memory database for tests.
package dbtest

import (
	"os"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/database"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresEnv names the connection string used by tests that need real row
// locks. They are skipped when it is unset.
const PostgresEnv = "MORRA_TEST_DATABASE_URL"

// Open returns a fresh in-memory SQLite database. The pool is capped at one
// connection because every connection to ":memory:" sees its own database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(sqlite.Open(":memory:"), database.Options{MaxOpenConns: 1, AutoMigrate: true})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDb, err := db.DB(); err == nil {
			_ = sqlDb.Close()
		}
	})
	return db
}

// OpenPostgres connects to the database named by PostgresEnv and migrates it.
func OpenPostgres(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(PostgresEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresEnv)
	}

	db, err := database.Connect(postgres.Open(dsn), database.Options{MaxOpenConns: 8, AutoMigrate: true})
	if err != nil {
		t.Fatalf("opening postgres test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDb, err := db.DB(); err == nil {
			_ = sqlDb.Close()
		}
	})
	return db
}
