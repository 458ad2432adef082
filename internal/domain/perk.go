package domain

import (
	"context"
	"time"
)

// Perk represents a member benefit offered by a partner merchant.
type Perk struct {
	ID          int64
	Title       string
	Merchant    string
	Description string
	Discount    string
	CreatedAt   time.Time
}

// PerkFilter narrows a perk listing. Search matches title and description
// case-insensitively; Merchant must match exactly. Empty fields match all.
type PerkFilter struct {
	Search   string
	Merchant string
}

// PerkRepository defines persistence operations for perks.
type PerkRepository interface {
	List(ctx context.Context) ([]Perk, error)
	GetByID(ctx context.Context, id int64) (*Perk, error)
	GetByTitle(ctx context.Context, merchant, title string) (*Perk, error)
	Create(ctx context.Context, perk *Perk) error
	Merchants(ctx context.Context) ([]string, error)
}
