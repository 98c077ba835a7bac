package db_test

import (
	"path/filepath"
	"testing"

	"github.com/joestump/cleo/internal/db"
)

func TestGooseDialect(t *testing.T) {
	tests := []struct {
		driver, want string
		wantErr      bool
	}{
		{"sqlite3", "sqlite3", false},
		{"mysql", "mysql", false},
		{"postgres", "postgres", false},
		{"pgx", "postgres", false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := db.GooseDialect(tt.driver)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GooseDialect(%q) err = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("GooseDialect(%q) = %q, want %q", tt.driver, got, tt.want)
			}
		})
	}
}

func TestNew_Unsupported(t *testing.T) {
	if _, err := db.New("oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestMigrate_SQLiteFile(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "cleo.db")
	conn, err := db.New("sqlite3", dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn, "sqlite3"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Re-running is a no-op.
	if err := db.Migrate(conn, "sqlite3"); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	for _, table := range []string{"instance_info", "users", "api_tokens", "user_keys", "posts", "content_fields", "files", "email_tokens"} {
		var n int
		if err := conn.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestNew_SQLiteBusyTimeout(t *testing.T) {
	tests := []struct {
		name, query string
		want        int
	}{
		{"default", "", db.SQLiteBusyTimeout},
		{"query string kept", "?_pragma=foreign_keys(1)", db.SQLiteBusyTimeout},
		{"explicit", "?_pragma=busy_timeout(100)", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := "file:" + filepath.Join(t.TempDir(), "cleo.db") + tt.query
			conn, err := db.New("sqlite3", dsn)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer conn.Close()

			// Every pooled connection carries the pragma, not only the first.
			conn.SetMaxOpenConns(2)
			tx, err := conn.Beginx()
			if err != nil {
				t.Fatalf("Beginx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			var inTx, outside int
			if err := tx.Get(&inTx, "PRAGMA busy_timeout"); err != nil {
				t.Fatalf("busy_timeout in tx: %v", err)
			}
			if err := conn.Get(&outside, "PRAGMA busy_timeout"); err != nil {
				t.Fatalf("busy_timeout: %v", err)
			}
			if inTx != tt.want || outside != tt.want {
				t.Errorf("busy_timeout = %d/%d, want %d", inTx, outside, tt.want)
			}
		})
	}
}
