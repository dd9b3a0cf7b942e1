package repository

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/betmasterx/betmasterx-go/internal/repository/migrations"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"sqlite", SQLite, false},
		{" MySQL ", MySQL, false},
		{"postgres", Postgres, false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDialect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRebind(t *testing.T) {
	query := "UPDATE wallets SET balance = ? WHERE user_id = ? AND version = ?"

	if got := SQLite.Rebind(query); got != query {
		t.Errorf("SQLite.Rebind() = %q, want unchanged", got)
	}
	want := "UPDATE wallets SET balance = $1 WHERE user_id = $2 AND version = $3"
	if got := Postgres.Rebind(query); got != want {
		t.Errorf("Postgres.Rebind() = %q, want %q", got, want)
	}
}

func TestDriverName(t *testing.T) {
	if Postgres.driverName() != "pgx" {
		t.Errorf("Postgres.driverName() = %q, want pgx", Postgres.driverName())
	}
	if MySQL.driverName() != "mysql" {
		t.Errorf("MySQL.driverName() = %q, want mysql", MySQL.driverName())
	}
}

func TestForUpdate(t *testing.T) {
	if SQLite.forUpdate() != "" {
		t.Error("SQLite should not use FOR UPDATE")
	}
	if MySQL.forUpdate() != " FOR UPDATE" {
		t.Errorf("MySQL.forUpdate() = %q", MySQL.forUpdate())
	}
}

func TestMapUserConstraint(t *testing.T) {
	tests := []struct {
		detail string
		want   error
	}{
		{"UNIQUE constraint failed: users.email", ErrDuplicateEmail},
		{"UNIQUE constraint failed: users.username", ErrDuplicateUsername},
	}
	for _, tt := range tests {
		err := mapUserConstraint(errString(tt.detail))
		if err != tt.want {
			t.Errorf("mapUserConstraint(%q) = %v, want %v", tt.detail, err, tt.want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	got := ExtractUpMigration(content)
	if got != "\nCREATE TABLE a (id INT);\n" {
		t.Errorf("ExtractUpMigration() = %q", got)
	}

	if ExtractUpMigration("SELECT 1;") != "SELECT 1;" {
		t.Error("content without markers should be returned as is")
	}
}

func TestSplitStatements(t *testing.T) {
	body := `
-- users
CREATE TABLE a (id INT);

CREATE INDEX idx_a ON a (id);
-- trailing comment
`
	stmts := SplitStatements(body)
	if len(stmts) != 2 {
		t.Fatalf("SplitStatements() returned %d statements, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id INT)" {
		t.Errorf("stmts[0] = %q", stmts[0])
	}
	if stmts[1] != "CREATE INDEX idx_a ON a (id)" {
		t.Errorf("stmts[1] = %q", stmts[1])
	}
}

func TestMySQLUsernameIsCaseSensitive(t *testing.T) {
	content, err := fs.ReadFile(migrations.FS, "mysql/001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "username ") {
			if !strings.Contains(line, "COLLATE utf8mb4_bin") {
				t.Errorf("username column %q must use a binary collation", line)
			}
			return
		}
	}
	t.Fatal("username column not found in mysql migration")
}

func TestSQLiteDSN(t *testing.T) {
	all := "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	tests := []struct {
		in   string
		want string
	}{
		{"bets.db", "bets.db?" + all},
		{"file:bets.db?cache=shared", "file:bets.db?cache=shared&" + all},
		{
			"bets.db?_pragma=busy_timeout(100)&_txlock=deferred",
			"bets.db?_pragma=busy_timeout(100)&_txlock=deferred&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
