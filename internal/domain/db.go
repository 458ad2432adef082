package domain

import "context"

// Store bundles the repositories backed by a single database together with
// its lifecycle operations. Each implementation owns its own migration
// files and strategy.
type Store interface {
	Users() UserRepository
	Perks() PerkRepository
	Migrate(ctx context.Context) error
	Close() error
}
