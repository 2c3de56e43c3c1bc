package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/snapshots"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// seams for tests
var (
	openDB = dbx.Open

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
)

// SQLRepositoryManager vends a SQL-backed snapshots.Repository and runs the
// embedded goose migrations for its dialect.
type SQLRepositoryManager struct {
	db      *sql.DB
	dialect string
	dir     string
	repo    snapshots.Repository
}

// NewPostgresRepositoryManager connects through pgx's database/sql driver.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*SQLRepositoryManager, error) {
	db, err := openDB(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	return newSQLManager(db, "postgres", "postgres", snapshots.NewPostgresRepository(db)), nil
}

// NewSQLiteRepositoryManager opens a pure-Go SQLite database.
func NewSQLiteRepositoryManager(ctx context.Context, dsn string) (*SQLRepositoryManager, error) {
	db, err := openDB(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps ":memory:" stable.
	db.SetMaxOpenConns(1)
	return newSQLManager(db, "sqlite3", "sqlite", snapshots.NewSQLiteRepository(db)), nil
}

func newSQLManager(db *sql.DB, dialect, dir string, repo snapshots.Repository) *SQLRepositoryManager {
	return &SQLRepositoryManager{db: db, dialect: dialect, dir: dir, repo: repo}
}

// Snapshots returns the repository bound to the manager's connection.
func (m *SQLRepositoryManager) Snapshots() snapshots.Repository {
	return m.repo
}

// RunMigrations sets up goose with the embedded migrations for the dialect
// and applies them.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, m.dir); err != nil {
		return err
	}
	return nil
}

func (m *SQLRepositoryManager) Close() error {
	return m.db.Close()
}
