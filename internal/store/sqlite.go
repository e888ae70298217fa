package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkondratev/daynotes/internal/logger"
	"github.com/mkondratev/daynotes/migrations"
)

// DB wraps the sql connection together with the store logger.
type DB struct {
	*sql.DB
	log *logger.Logger
}

// NewConnectSQLite opens (creating if necessary) the local sqlite database at
// dsn, pings it, and applies the embedded schema migrations.
func NewConnectSQLite(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	if err := createLocalDBFileIfNotExists(dsn); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file: %w", err)
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error opening database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error pinging database")
		return nil, err
	}

	if err = migrations.Migrate(conn); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error migrating database schema")
		return nil, err
	}

	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to local database")
	return &DB{DB: conn, log: log}, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if dbFile == ":memory:" {
		return nil
	}

	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		if dir := filepath.Dir(dbFile); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("error creating DB dir: %w", err)
			}
		}
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}
