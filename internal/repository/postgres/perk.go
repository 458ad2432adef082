package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/perkdeck/perkdeck/internal/domain"
)

// PerkRepository implements domain.PerkRepository using PostgreSQL.
type PerkRepository struct {
	db *sql.DB
}

// NewPerkRepository creates a new PostgreSQL-backed PerkRepository.
func NewPerkRepository(db *DB) *PerkRepository {
	return &PerkRepository{db: db.SqlDB}
}

func (r *PerkRepository) List(ctx context.Context) ([]domain.Perk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, merchant, description, discount, created_at
		 FROM perks ORDER BY merchant, title`)
	if err != nil {
		return nil, fmt.Errorf("list perks: %w", err)
	}
	defer rows.Close()
	return scanPerks(rows)
}

func (r *PerkRepository) GetByID(ctx context.Context, id int64) (*domain.Perk, error) {
	p := &domain.Perk{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, merchant, description, discount, created_at
		 FROM perks WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Merchant, &p.Description, &p.Discount, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get perk by id: %w", err)
	}
	return p, nil
}

func (r *PerkRepository) GetByTitle(ctx context.Context, merchant, title string) (*domain.Perk, error) {
	p := &domain.Perk{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, merchant, description, discount, created_at
		 FROM perks WHERE merchant = $1 AND title = $2`, merchant, title,
	).Scan(&p.ID, &p.Title, &p.Merchant, &p.Description, &p.Discount, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get perk by title: %w", err)
	}
	return p, nil
}

func (r *PerkRepository) Create(ctx context.Context, perk *domain.Perk) error {
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO perks (title, merchant, description, discount, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		perk.Title, perk.Merchant, perk.Description, perk.Discount, now,
	).Scan(&perk.ID)
	if err != nil {
		return fmt.Errorf("insert perk: %w", err)
	}

	perk.CreatedAt = now
	return nil
}

func (r *PerkRepository) Merchants(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT merchant FROM perks ORDER BY merchant")
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	return merchants, rows.Err()
}

func scanPerks(rows *sql.Rows) ([]domain.Perk, error) {
	var perks []domain.Perk
	for rows.Next() {
		var p domain.Perk
		if err := rows.Scan(&p.ID, &p.Title, &p.Merchant, &p.Description, &p.Discount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan perk: %w", err)
		}
		perks = append(perks, p)
	}
	return perks, rows.Err()
}
