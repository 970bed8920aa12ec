package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"kinolog/models"
	"kinolog/services/library"
)

type LibraryHandler struct {
	Library  libraryService
	Profiles profileService
}

func NewLibraryHandler(librarySvc libraryService, profiles profileService) *LibraryHandler {
	return &LibraryHandler{Library: librarySvc, Profiles: profiles}
}

// List returns the combined film and show library narrowed by status
// bucket and optional title query.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}

	filter := models.StatusFilter(r.URL.Query().Get("status"))
	query := r.URL.Query().Get("q")

	lib, err := h.Library.List(r.Context(), profileID, filter, query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, library.ErrUnknownFilter) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lib)
}
