package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rocketship-ai/scriptstep/internal/stepconfig"

	// Database drivers
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no step configuration has the requested name
var ErrNotFound = errors.New("step configuration not found")

var schemas = map[string]string{
	"sqlite": `CREATE TABLE IF NOT EXISTS step_configs (
		name VARCHAR(255) PRIMARY KEY,
		document TEXT NOT NULL,
		version INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	"postgres": `CREATE TABLE IF NOT EXISTS step_configs (
		name VARCHAR(255) PRIMARY KEY,
		document TEXT NOT NULL,
		version INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	"mysql": `CREATE TABLE IF NOT EXISTS step_configs (
		name VARCHAR(255) PRIMARY KEY,
		document LONGTEXT NOT NULL,
		version INT NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`,
	"sqlserver": `IF OBJECT_ID(N'step_configs', N'U') IS NULL
	CREATE TABLE step_configs (
		name NVARCHAR(255) PRIMARY KEY,
		document NVARCHAR(MAX) NOT NULL,
		version INT NOT NULL,
		updated_at DATETIME2 NOT NULL
	)`,
}

// dialect maps a driver name onto its schema
func dialect(driver string) (string, error) {
	switch driver {
	case "sqlite":
		return "sqlite", nil
	case "pgx", "postgres":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlserver", "mssql":
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// Store persists step configurations as versioned documents. Documents in a
// legacy layout are upgraded and written back the first time they are loaded.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database and creates the schema if needed
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := dialect(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if d == "sqlite" {
		// one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemas[d]); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create step_configs table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores a configuration in the current layout
func (s *Store) Save(ctx context.Context, name string, cfg *stepconfig.Config) error {
	payload, err := stepconfig.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.put(ctx, name, payload, stepconfig.CurrentVersion)
}

// SaveRaw stores a persisted document as-is after validating it. It is used
// when importing documents written by older versions.
func (s *Store) SaveRaw(ctx context.Context, name string, payload []byte) error {
	p, err := stepconfig.Decode(payload)
	if err != nil {
		return err
	}
	return s.put(ctx, name, payload, p.Version)
}

func (s *Store) put(ctx context.Context, name string, payload []byte, version int) error {
	if name == "" {
		return fmt.Errorf("step name is required")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM step_configs WHERE name = ?`), name); err != nil {
		return fmt.Errorf("failed to replace step configuration: %w", err)
	}

	const insert = `INSERT INTO step_configs (name, document, version, updated_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, tx.Rebind(insert), name, string(payload), version, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save step configuration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit step configuration: %w", err)
	}
	return nil
}

// Raw returns the stored document without upgrading it
func (s *Store) Raw(ctx context.Context, name string) ([]byte, error) {
	var document string
	err := s.db.GetContext(ctx, &document, s.db.Rebind(`SELECT document FROM step_configs WHERE name = ?`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get step configuration: %w", err)
	}
	return []byte(document), nil
}

// Load returns the configuration, upgrading and rewriting legacy documents
func (s *Store) Load(ctx context.Context, name string) (*stepconfig.Config, error) {
	payload, err := s.Raw(ctx, name)
	if err != nil {
		return nil, err
	}

	p, err := stepconfig.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("step %s: %w", name, err)
	}

	migrated := stepconfig.Upgrade(p)
	cfg, err := stepconfig.FromPersisted(p)
	if err != nil {
		return nil, fmt.Errorf("step %s: %w", name, err)
	}

	if migrated {
		slog.Info("migrated legacy step configuration", "step", name)
		if err := s.Save(ctx, name, cfg); err != nil {
			return nil, fmt.Errorf("failed to persist migrated step %s: %w", name, err)
		}
	}

	return cfg, nil
}

// Delete removes a step configuration
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM step_configs WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("failed to delete step configuration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// List returns the stored step names in order
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT name FROM step_configs ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list step configurations: %w", err)
	}
	return names, nil
}
