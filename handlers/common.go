package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// profileService is the slice of the profile directory handlers need to
// gate profile-scoped routes.
type profileService interface {
	Exists(id string) bool
}

// requireProfile extracts and validates the profile path variable. A nil
// directory disables profile gating.
func requireProfile(w http.ResponseWriter, r *http.Request, profiles profileService) (string, bool) {
	vars := mux.Vars(r)
	profileID := strings.TrimSpace(vars["profileID"])
	if profileID == "" {
		http.Error(w, "profile id is required", http.StatusBadRequest)
		return "", false
	}

	if profiles != nil && !profiles.Exists(profileID) {
		http.Error(w, "profile not found", http.StatusNotFound)
		return "", false
	}

	return profileID, true
}

// parseTitleID reads a positive numeric catalogue ID from the named path
// variable.
func parseTitleID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(strings.TrimSpace(vars[name]), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, name+" must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
