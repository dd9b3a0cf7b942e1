package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// sqliteParams serialise writers (BEGIN IMMEDIATE) and wait on busy locks
// instead of failing. Each entry is keyed by the prefix that marks it as
// already set in a DSN.
var sqliteParams = []struct{ prefix, param string }{
	{"_pragma=busy_timeout", "_pragma=busy_timeout(5000)"},
	{"_pragma=journal_mode", "_pragma=journal_mode(WAL)"},
	{"_pragma=foreign_keys", "_pragma=foreign_keys(1)"},
	{"_txlock=", "_txlock=immediate"},
}

// DB is a connection pool together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// NewDB opens a connection pool for the given driver and applies the embedded
// schema migrations.
func NewDB(driver, dsn string) (*DB, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}

	sqlDB, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dialect, err)
	}

	if dialect == SQLite {
		// One writer at a time; SQLite serialises anyway.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s db: %w", dialect, err)
	}

	db := &DB{DB: sqlDB, Dialect: dialect}
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("database ready", "driver", string(dialect))
	return db, nil
}

// sqliteDSN appends the connection parameters the DSN does not set itself.
func sqliteDSN(dsn string) string {
	_, query, _ := strings.Cut(dsn, "?")
	for _, p := range sqliteParams {
		if strings.Contains(query, p.prefix) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p.param
		} else {
			dsn += "?" + p.param
		}
	}
	return dsn
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
