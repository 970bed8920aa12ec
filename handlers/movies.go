package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"kinolog/models"
	"kinolog/services/library"
	"kinolog/services/tracking"
)

type movieTrackingService interface {
	GetMovie(profileID string, id int64) (models.MovieTracking, bool, error)
	UpsertMovie(profileID string, id int64, input models.MovieTrackingUpsert) (models.MovieTracking, error)
	DeleteMovie(profileID string, id int64) (bool, error)
	MovieStats(profileID string) (models.MovieStats, error)
}

type libraryService interface {
	List(ctx context.Context, profileID string, filter models.StatusFilter, query string) (models.Library, error)
}

var _ movieTrackingService = (*tracking.Service)(nil)
var _ libraryService = (*library.Service)(nil)

type MoviesHandler struct {
	Tracking movieTrackingService
	Library  libraryService
	Profiles profileService
}

func NewMoviesHandler(trackingSvc movieTrackingService, librarySvc libraryService, profiles profileService) *MoviesHandler {
	return &MoviesHandler{Tracking: trackingSvc, Library: librarySvc, Profiles: profiles}
}

// moviePayload is the full-value body accepted by POST. Missing fields
// take the zero defaults, matching create-or-replace semantics.
type moviePayload struct {
	Watched     bool   `json:"watched"`
	Favourited  bool   `json:"favourited"`
	Watchlisted bool   `json:"watchlisted"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

func (p moviePayload) toUpsert() models.MovieTrackingUpsert {
	return models.MovieTrackingUpsert{
		Watched:     &p.Watched,
		Favourited:  &p.Favourited,
		Watchlisted: &p.Watchlisted,
		Rating:      &p.Rating,
		Comment:     &p.Comment,
	}
}

// List returns the profile's tracked films, optionally narrowed by status
// bucket and title query, enriched with catalogue metadata.
func (h *MoviesHandler) List(w http.ResponseWriter, r *http.Request) {
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
	json.NewEncoder(w).Encode(lib.Movies)
}

// Get returns the tracking record, or JSON null when the title is not
// tracked. Untracked is a valid state for reads, not an error.
func (h *MoviesHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	rec, tracked, err := h.Tracking.GetMovie(profileID, id)
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !tracked {
		json.NewEncoder(w).Encode(nil)
		return
	}
	json.NewEncoder(w).Encode(rec)
}

// Create replaces the record wholesale; fields missing from the body
// reset to defaults.
func (h *MoviesHandler) Create(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	var payload moviePayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.Tracking.UpsertMovie(profileID, id, payload.toUpsert())
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// Update merges only the provided fields into an existing record.
func (h *MoviesHandler) Update(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	var input models.MovieTrackingUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, tracked, err := h.Tracking.GetMovie(profileID, id); err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	} else if !tracked {
		http.Error(w, "movie not tracked", http.StatusNotFound)
		return
	}

	rec, err := h.Tracking.UpsertMovie(profileID, id, input)
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// Delete removes the record. Deleting an untracked title still answers
// 204; the end state is identical.
func (h *MoviesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.Tracking.DeleteMovie(profileID, id); err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats returns the dashboard counters for the profile's films.
func (h *MoviesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}

	stats, err := h.Tracking.MovieStats(profileID)
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func trackingStatus(err error) int {
	switch {
	case errors.Is(err, tracking.ErrProfileIDRequired),
		errors.Is(err, tracking.ErrTitleIDRequired),
		errors.Is(err, tracking.ErrRatingOutOfRange),
		errors.Is(err, tracking.ErrEpisodeNumberInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
