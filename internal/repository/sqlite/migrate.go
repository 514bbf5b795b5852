package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/ameyamatmk/voice-diary/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect, base FS and logger in package globals.
var migrateMu sync.Mutex

// Migrate applies the embedded schema migrations to db.
func Migrate(db *sql.DB, log *logger.Logger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{log: log})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// gooseLogger routes goose output through the application logger at debug level.
type gooseLogger struct {
	log *logger.Logger
}

func (l *gooseLogger) Fatal(v ...interface{}) {
	l.log.Fatal(fmt.Sprint(v...))
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal(fmt.Sprintf(format, v...))
}

func (l *gooseLogger) Print(v ...interface{}) {
	l.log.Debug(fmt.Sprint(v...))
}

func (l *gooseLogger) Println(v ...interface{}) {
	l.log.Debug(fmt.Sprint(v...))
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
