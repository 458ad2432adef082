package handler

import (
	"time"

	"github.com/perkdeck/perkdeck/internal/domain"
)

// UserDTO is the JSON representation of a user account. It carries no
// password hash field; the hash must never appear in a response.
type UserDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// PerkDTO is the JSON representation of a perk.
type PerkDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Merchant    string `json:"merchant"`
	Description string `json:"description"`
	Discount    string `json:"discount"`
	CreatedAt   string `json:"createdAt"`
}

func toPerkDTO(p domain.Perk) PerkDTO {
	return PerkDTO{
		ID:          p.ID,
		Title:       p.Title,
		Merchant:    p.Merchant,
		Description: p.Description,
		Discount:    p.Discount,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func toPerkDTOs(perks []domain.Perk) []PerkDTO {
	dtos := make([]PerkDTO, len(perks))
	for i, p := range perks {
		dtos[i] = toPerkDTO(p)
	}
	return dtos
}
