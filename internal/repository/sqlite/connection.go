package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ameyamatmk/voice-diary/internal/logger"
)

// MemoryPath opens a private in-memory vault.
const MemoryPath = ":memory:"

type Connection struct {
	*sql.DB
}

// NewConnection opens the vault database at path and applies migrations.
func NewConnection(ctx context.Context, path string, log *logger.Logger) (*Connection, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("vault path is required")
	}

	dsn := MemoryPath
	if path != MemoryPath {
		dsn = "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault database: %w", err)
	}
	if path == MemoryPath {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping vault database: %w", err)
	}

	if err := Migrate(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize vault database: %w", err)
	}

	return &Connection{DB: db}, nil
}

func (c *Connection) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
