package handlers

import (
	"encoding/json"
	"net/http"

	"kinolog/models"
	"kinolog/services/profiles"
)

type profileDirectory interface {
	List() []models.Profile
	Exists(id string) bool
}

var _ profileDirectory = (*profiles.Service)(nil)

type ProfilesHandler struct {
	Profiles profileDirectory
}

func NewProfilesHandler(directory profileDirectory) *ProfilesHandler {
	return &ProfilesHandler{Profiles: directory}
}

// List returns every profile in the household.
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Profiles.List())
}
