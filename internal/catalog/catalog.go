// Package catalog exports manifests into a SQL table for ad-hoc querying.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"fixview/internal/config"
	"fixview/internal/domain"
	"fixview/internal/manifest"
)

const schema = `CREATE TABLE IF NOT EXISTS test_cases (
	version     VARCHAR(64)   NOT NULL,
	preset      VARCHAR(64)   NOT NULL,
	fork        VARCHAR(64)   NOT NULL,
	test_type   VARCHAR(128)  NOT NULL,
	test_suite  VARCHAR(128)  NOT NULL,
	config_name VARCHAR(128)  NOT NULL,
	test_case   VARCHAR(255)  NOT NULL,
	path        VARCHAR(1024) NOT NULL,
	ssz_type    VARCHAR(128)  NOT NULL,
	file_count  INTEGER       NOT NULL,
	files       TEXT          NOT NULL
)`

const insertCase = `INSERT INTO test_cases
	(version, preset, fork, test_type, test_suite, config_name, test_case, path, ssz_type, file_count, files)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Catalog is an open connection to the export database
type Catalog struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// DSN resolves the connection string for the configured driver.
// MySQL falls back to DB_HOST, DB_PORT, DB_USERNAME, DB_PASSWORD and DB_DATABASE; SQLite to data/catalog.db.
func DSN(cfg *config.Config) (string, error) {
	if cfg.DBDSN != "" {
		return cfg.DBDSN, nil
	}

	switch cfg.DBDriver {
	case "sqlite":
		return filepath.Join(cfg.GetDataDir(), "catalog.db"), nil
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = getenv("DB_USERNAME", "root")
		mc.Passwd = os.Getenv("DB_PASSWORD")
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(getenv("DB_HOST", "127.0.0.1"), getenv("DB_PORT", "3306"))
		mc.DBName = getenv("DB_DATABASE", "fixview")
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Open connects to the configured database and makes sure the test_cases table exists
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, domain.Setupf(err, "cannot open catalog")
	}

	db, err := sql.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create test_cases table: %w", err)
	}

	return &Catalog{db: db, driver: cfg.DBDriver, logger: logger}, nil
}

// Close releases the connection
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Export replaces every row of the manifest's version with one row per test case, in one transaction.
func (c *Catalog) Export(ctx context.Context, m *manifest.Manifest) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM test_cases WHERE version = ?", m.Version); err != nil {
		return 0, fmt.Errorf("clear version %s: %w", m.Version, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertCase)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var rows int
	var walkErr error
	m.Walk(func(key domain.HierarchyKey, entry manifest.TestCaseEntry) {
		if walkErr != nil {
			return
		}
		files, err := json.Marshal(entry.Files)
		if err != nil {
			walkErr = err
			return
		}
		if _, err := stmt.ExecContext(ctx,
			m.Version, key.Preset, key.Fork, key.TestType, key.TestSuite, key.Config, key.TestCase,
			entry.Path, key.SSZType(), len(entry.Files), string(files),
		); err != nil {
			walkErr = fmt.Errorf("insert %s: %w", entry.Path, err)
			return
		}
		rows++
	})
	if walkErr != nil {
		return 0, walkErr
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit export: %w", err)
	}
	c.logger.Info("exported manifest", zap.String("driver", c.driver), zap.String("version", m.Version), zap.Int("rows", rows))
	return rows, nil
}

// Count returns the number of rows stored for a version
func (c *Catalog) Count(ctx context.Context, v string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM test_cases WHERE version = ?", v).Scan(&n)
	return n, err
}
