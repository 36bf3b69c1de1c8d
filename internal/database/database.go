package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/database/migrations"
)

// driverName is sqlite3 with a Unicode-aware fold_lower(text) function.
// SQLite's built-in lower() and LIKE only fold ASCII.
const driverName = "sqlite3_planit"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold_lower", strings.ToLower, true)
		},
	})
}

type DB struct {
	*sql.DB
}

func New(dbPath string, logger *zap.Logger) (*DB, error) {
	// WAL for concurrent readers, busy timeout to wait instead of failing,
	// foreign keys so records follow their user
	db, err := sql.Open(driverName, dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.RunMigrations(db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{db}, nil
}

func (d *DB) Close() error {
	return d.DB.Close()
}
