package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the test database. It expects a MySQL instance on
// localhost:3306 with a database named 'repricer_test' and skips otherwise.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/repricer_test?parseTime=true&clientFoundRows=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"BotSettings"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

func SetupTestTables(t *testing.T, db *sql.DB) {
	createBotSettingsTable := `
	CREATE TABLE IF NOT EXISTS BotSettings (
		productId VARCHAR(64) NOT NULL PRIMARY KEY,
		costPrice BIGINT NOT NULL,
		botActive TINYINT(1) NOT NULL DEFAULT 0,
		strategy VARCHAR(32) NOT NULL DEFAULT 'become-first',
		minProfit BIGINT NOT NULL DEFAULT 0,
		maxProfit BIGINT NOT NULL DEFAULT 0,
		step BIGINT NOT NULL DEFAULT 1,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_active (botActive)
	)`

	if _, err := db.Exec(createBotSettingsTable); err != nil {
		t.Logf("failed to create table BotSettings: %v", err)
	}
}
