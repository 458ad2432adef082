package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/perkdeck/perkdeck/internal/domain"
	"github.com/perkdeck/perkdeck/internal/service"
)

// PerkHandler handles perk catalog HTTP requests.
type PerkHandler struct {
	perks *service.PerkService
}

// NewPerkHandler creates a new PerkHandler.
func NewPerkHandler(perks *service.PerkService) *PerkHandler {
	return &PerkHandler{perks: perks}
}

// HandleList returns the perks matching the optional filters.
// GET /perks?search=...&merchant=...
// Response: {"perks":[...],"count":N}
func (h *PerkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := domain.PerkFilter{
		Search:   r.URL.Query().Get("search"),
		Merchant: r.URL.Query().Get("merchant"),
	}

	perks, err := h.perks.List(r.Context(), filter)
	if err != nil {
		slog.Error("list perks", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"perks": toPerkDTOs(perks),
		"count": len(perks),
	})
}

// HandleMerchants returns the distinct merchants offering perks.
// GET /perks/merchants
// Response: {"merchants":[...]}
func (h *PerkHandler) HandleMerchants(w http.ResponseWriter, r *http.Request) {
	merchants, err := h.perks.Merchants(r.Context())
	if err != nil {
		slog.Error("list merchants", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"merchants": merchants,
	})
}

// HandleGet returns a single perk by ID.
// GET /perks/{id}
// Response: {"perk":{...}} or 404
func (h *PerkHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid perk ID.")
		return
	}

	perk, err := h.perks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Perk not found.")
			return
		}
		slog.Error("get perk", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"perk": toPerkDTO(*perk),
	})
}
