package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/perkdeck/perkdeck/internal/domain"
	"github.com/perkdeck/perkdeck/internal/repository/sqlite/migrations"
)

// DB is the SQLite-backed store. SqlDB is exported for tests that need to
// inspect the underlying database directly.
type DB struct {
	SqlDB *sql.DB

	users *UserRepository
	perks *PerkRepository
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Set a reasonable connection pool for SQLite.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	wrapped := &DB{SqlDB: db}
	wrapped.users = NewUserRepository(wrapped)
	wrapped.perks = NewPerkRepository(wrapped)
	return wrapped, nil
}

// Users returns the user repository backed by this database.
func (db *DB) Users() domain.UserRepository {
	return db.users
}

// Perks returns the perk repository backed by this database.
func (db *DB) Perks() domain.PerkRepository {
	return db.perks
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB)
}

// Close closes the underlying database.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}
