package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/perkdeck/perkdeck/internal/domain"
)

// PerkService handles the perk catalog.
type PerkService struct {
	perks domain.PerkRepository
}

// NewPerkService creates a new PerkService.
func NewPerkService(perks domain.PerkRepository) *PerkService {
	return &PerkService{perks: perks}
}

// List returns the perks matching filter, ordered by merchant then title.
func (s *PerkService) List(ctx context.Context, filter domain.PerkFilter) ([]domain.Perk, error) {
	perks, err := s.perks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list perks: %w", err)
	}
	return filterPerks(perks, filter), nil
}

// GetByID returns a perk by its ID.
func (s *PerkService) GetByID(ctx context.Context, id int64) (*domain.Perk, error) {
	return s.perks.GetByID(ctx, id)
}

// Merchants returns the distinct merchant names in the catalog, sorted.
func (s *PerkService) Merchants(ctx context.Context) ([]string, error) {
	return s.perks.Merchants(ctx)
}

// SeedBuiltin inserts the built-in perk catalog. It is idempotent: perks
// that already exist (matched by merchant and title) are skipped.
func (s *PerkService) SeedBuiltin(ctx context.Context) error {
	for _, p := range builtinPerks {
		_, err := s.perks.GetByTitle(ctx, p.Merchant, p.Title)
		if err == nil {
			continue // already exists
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("check perk %q: %w", p.Title, err)
		}
		if err := s.perks.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed perk %q: %w", p.Title, err)
		}
	}
	return nil
}

func filterPerks(perks []domain.Perk, filter domain.PerkFilter) []domain.Perk {
	if filter.Merchant == "" && filter.Search == "" {
		return perks
	}

	var filtered []domain.Perk
	for _, p := range perks {
		if filter.Merchant != "" && p.Merchant != filter.Merchant {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func matchesSearch(p domain.Perk, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Title), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}

var builtinPerks = []domain.Perk{
	// Productivity
	{Title: "20% off annual Business plan", Merchant: "Notion", Description: "Workspace upgrade for member teams", Discount: "20%"},
	{Title: "3 months free on Standard", Merchant: "Linear", Description: "Issue tracking for new member teams", Discount: "3 months"},
	{Title: "25% off first year", Merchant: "Airtable", Description: "Team plan discount for members", Discount: "25%"},
	{Title: "10% off Pro sites", Merchant: "Framer", Description: "Publish member project sites", Discount: "10%"},
	// Infrastructure
	{Title: "$300 in platform credits", Merchant: "DigitalOcean", Description: "Droplets, managed databases, and spaces", Discount: "$300 credit"},
	{Title: "$100 usage credit", Merchant: "Render", Description: "Web services and background workers", Discount: "$100 credit"},
	{Title: "6 months of Pro free", Merchant: "Vercel", Description: "Hosting for member side projects", Discount: "6 months"},
	// Commerce
	{Title: "Free shipping on any order", Merchant: "Allbirds", Description: "Everyday footwear for members", Discount: "free shipping"},
	{Title: "15% off sitewide", Merchant: "Bellroy", Description: "Carry goods and workspace accessories", Discount: "15%"},
	// Learning
	{Title: "30% off annual membership", Merchant: "Frontend Masters", Description: "Courses for member engineers", Discount: "30%"},
	{Title: "2 months free", Merchant: "O'Reilly", Description: "Books and live training access", Discount: "2 months"},
	// Wellness
	{Title: "40% off first year", Merchant: "Calm", Description: "Premium subscription for members", Discount: "40%"},
}
