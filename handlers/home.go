package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"kinolog/models"
	"kinolog/services/hero"
	"kinolog/services/recommend"
)

type heroService interface {
	Slots(ctx context.Context, profileID string) ([]models.HeroSlot, error)
}

type recommendService interface {
	Recommendations(ctx context.Context, profileID string) ([]models.CatalogueItem, error)
}

var _ heroService = (*hero.Service)(nil)
var _ recommendService = (*recommend.Service)(nil)

type HomeHandler struct {
	Hero      heroService
	Recommend recommendService
	Profiles  profileService
}

func NewHomeHandler(heroSvc heroService, recommendSvc recommendService, profiles profileService) *HomeHandler {
	return &HomeHandler{Hero: heroSvc, Recommend: recommendSvc, Profiles: profiles}
}

// HeroSlots returns the featured carousel. Catalogue outages surface as
// fewer slots, never as an error.
func (h *HomeHandler) HeroSlots(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}

	slots, err := h.Hero.Slots(r.Context(), profileID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(slots)
}

// Recommendations returns show suggestions seeded from the profile's
// highest-rated show.
func (h *HomeHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}

	items, err := h.Recommend.Recommendations(r.Context(), profileID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
