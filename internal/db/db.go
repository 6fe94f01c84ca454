package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/abdusco/shortlink/internal/config"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB pairs the connection pool with a goqu database bound to the right dialect.
type DB struct {
	*goqu.Database
	sqlDB  *sql.DB
	driver string
}

func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) Close() error {
	return d.sqlDB.Close()
}

func (d *DB) PingContext(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// Open connects to the datastore and runs migrations.
// For sqlite the dsn is used verbatim; see SQLiteDSN.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		sqlDriver string
		dialect   string
	)
	switch driver {
	case config.DriverSQLite:
		sqlDriver, dialect = "sqlite", "sqlite3"
	case config.DriverPostgres:
		sqlDriver, dialect = "pgx", "postgres"
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	sqlDB, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == config.DriverSQLite {
		// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY/LOCKED churn
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug().Str("driver", driver).Msg("database connection successful")

	if err := migrate(ctx, sqlDB, driver); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info().Str("driver", driver).Msg("migrations completed successfully")

	return &DB{
		Database: goqu.New(dialect, sqlDB),
		sqlDB:    sqlDB,
		driver:   driver,
	}, nil
}

// SQLiteDSN turns a file path into a modernc sqlite DSN with pragmas applied.
func SQLiteDSN(path string) string {
	if path == "" {
		path = "shortlink.db"
	}
	path = strings.TrimPrefix(path, "file:")

	// See: https://pkg.go.dev/modernc.org/sqlite#pkg-overview
	params := url.Values{}
	params.Set("mode", "rwc")
	params.Set("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")
	params.Add("_pragma", "busy_timeout(5000)")

	return "file:" + path + "?" + params.Encode()
}

func migrate(ctx context.Context, db *sql.DB, driver string) error {
	clicksType := "INTEGER"
	if driver == config.DriverPostgres {
		clicksType = "BIGINT"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			custom_domain TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS links (
			id TEXT PRIMARY KEY,
			original_url TEXT NOT NULL,
			short_code TEXT UNIQUE NOT NULL,
			custom_domain TEXT,
			user_id TEXT NOT NULL REFERENCES users(id),
			clicks ` + clicksType + ` NOT NULL DEFAULT 0 CHECK (clicks >= 0),
			expires_at TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_links_user_created ON links(user_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
