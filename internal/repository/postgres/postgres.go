package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/perkdeck/perkdeck/internal/domain"
	"github.com/perkdeck/perkdeck/internal/repository/postgres/migrations"
)

// DB is the PostgreSQL-backed store. SqlDB is exported for tests that need
// to inspect the underlying database directly.
type DB struct {
	SqlDB *sql.DB

	users *UserRepository
	perks *PerkRepository
}

// New opens a connection pool to the PostgreSQL server at the given URL and
// verifies connectivity before returning.
func New(databaseURL string) (*DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
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

// Migrate runs the embedded goose migrations against the database.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.SqlDB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}
