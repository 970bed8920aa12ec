package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"kinolog/models"
	"kinolog/services/catalogue"
	"kinolog/services/library"
	"kinolog/services/tracking"
)

type showTrackingService interface {
	GetShow(profileID string, id int64) (models.ShowTracking, bool, error)
	UpsertShow(ctx context.Context, profileID string, id int64, input models.ShowTrackingUpsert) (models.ShowTracking, error)
	DeleteShow(profileID string, id int64) (bool, error)
	MarkEpisodes(ctx context.Context, profileID string, showID int64, marks []models.EpisodeMark) (models.ShowTracking, error)
	MarkSeason(ctx context.Context, profileID string, showID int64, seasonNumber int, episodes []int, watched bool) (models.ShowTracking, error)
	ListEpisodes(profileID string, showID int64) ([]models.EpisodeState, error)
	Progress(profileID string, showID int64) (models.ShowProgress, bool, error)
}

// seasonCatalogue supplies the episode list a season mark expands to.
type seasonCatalogue interface {
	SeasonDetail(ctx context.Context, showID int64, season int) (*models.SeasonDetail, error)
}

var _ showTrackingService = (*tracking.Service)(nil)
var _ seasonCatalogue = (*catalogue.Service)(nil)

type ShowsHandler struct {
	Tracking  showTrackingService
	Library   libraryService
	Catalogue seasonCatalogue
	Profiles  profileService
}

func NewShowsHandler(trackingSvc showTrackingService, librarySvc libraryService, catalogueSvc seasonCatalogue, profiles profileService) *ShowsHandler {
	return &ShowsHandler{Tracking: trackingSvc, Library: librarySvc, Catalogue: catalogueSvc, Profiles: profiles}
}

// showPayload is the full-value body accepted by POST.
type showPayload struct {
	Favourited  bool   `json:"favourited"`
	Watchlisted bool   `json:"watchlisted"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

func (p showPayload) toUpsert() models.ShowTrackingUpsert {
	return models.ShowTrackingUpsert{
		Favourited:  &p.Favourited,
		Watchlisted: &p.Watchlisted,
		Rating:      &p.Rating,
		Comment:     &p.Comment,
	}
}

// List returns the profile's tracked shows, optionally narrowed by status
// bucket and title query, enriched with catalogue metadata.
func (h *ShowsHandler) List(w http.ResponseWriter, r *http.Request) {
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
	json.NewEncoder(w).Encode(lib.Shows)
}

// Get returns the tracking record, or JSON null when the show is not
// tracked.
func (h *ShowsHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	rec, tracked, err := h.Tracking.GetShow(profileID, id)
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
// reset to defaults. Episode states are untouched.
func (h *ShowsHandler) Create(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	var payload showPayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.Tracking.UpsertShow(r.Context(), profileID, id, payload.toUpsert())
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// Update merges only the provided fields into an existing record.
func (h *ShowsHandler) Update(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	var input models.ShowTrackingUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, tracked, err := h.Tracking.GetShow(profileID, id); err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	} else if !tracked {
		http.Error(w, "show not tracked", http.StatusNotFound)
		return
	}

	rec, err := h.Tracking.UpsertShow(r.Context(), profileID, id, input)
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// Delete removes the record and its episode states. Always 204.
func (h *ShowsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.Tracking.DeleteShow(profileID, id); err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListEpisodes returns the recorded episode states for a show.
func (h *ShowsHandler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	states, err := h.Tracking.ListEpisodes(profileID, id)
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(states)
}

// MarkEpisodes applies a batch of watched flags, implicitly tracking the
// show when needed.
func (h *ShowsHandler) MarkEpisodes(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	var marks []models.EpisodeMark
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&marks); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(marks) == 0 {
		http.Error(w, "at least one episode mark is required", http.StatusBadRequest)
		return
	}

	rec, err := h.Tracking.MarkEpisodes(r.Context(), profileID, id, marks)
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// MarkSeason flips every episode of one season in a single batch. The
// episode list comes from the catalogue; this is the one mutation that
// cannot proceed without it.
func (h *ShowsHandler) MarkSeason(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	vars := mux.Vars(r)
	season, err := strconv.Atoi(strings.TrimSpace(vars["season"]))
	if err != nil || season < 0 {
		http.Error(w, "season must be a non-negative integer", http.StatusBadRequest)
		return
	}

	watched := true
	if raw := r.URL.Query().Get("watched"); raw != "" {
		watched, err = strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "watched must be a boolean", http.StatusBadRequest)
			return
		}
	}

	detail, err := h.Catalogue.SeasonDetail(r.Context(), id, season)
	if err != nil {
		if errors.Is(err, catalogue.ErrNotFound) {
			http.Error(w, "season not found", http.StatusNotFound)
			return
		}
		http.Error(w, "catalogue unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}

	episodes := make([]int, 0, len(detail.Episodes))
	for _, ep := range detail.Episodes {
		episodes = append(episodes, ep.EpisodeNumber)
	}

	rec, err := h.Tracking.MarkSeason(r.Context(), profileID, id, season, episodes, watched)
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// Progress returns the per-season completion breakdown, 404 when the
// show is untracked.
func (h *ShowsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	profileID, ok := requireProfile(w, r, h.Profiles)
	if !ok {
		return
	}
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	progress, tracked, err := h.Tracking.Progress(profileID, id)
	if err != nil {
		http.Error(w, err.Error(), trackingStatus(err))
		return
	}
	if !tracked {
		http.Error(w, "show not tracked", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progress)
}
