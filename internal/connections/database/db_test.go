package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"restaurant-queue/internal/common/config"
)

func TestDSN(t *testing.T) {
	driver, dsn, err := DSN(config.DB{Driver: "pgx", Host: "db", Port: 5432, User: "u", Pass: "p", Name: "kitchen"})
	if err != nil {
		t.Fatal(err)
	}
	if driver != "pgx" || !strings.Contains(dsn, "host=db port=5432") || !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("pgx dsn = %q (%s)", dsn, driver)
	}

	if _, _, err := DSN(config.DB{Driver: "oracle"}); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}

func TestConnectSQLite(t *testing.T) {
	db, err := ConnectDB(context.Background(), config.DB{Driver: "sqlite3", Path: filepath.Join(t.TempDir(), "k.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
}
