package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"kinolog/models"
)

var (
	ErrStorageDirRequired   = errors.New("storage directory not provided")
	ErrProfileIDRequired    = errors.New("profile id is required")
	ErrTitleIDRequired      = errors.New("title id must be a positive integer")
	ErrRatingOutOfRange     = errors.New("rating must be between 0 and 5")
	ErrEpisodeNumberInvalid = errors.New("season must be >= 0 and episode >= 1")
)

// CatalogueService supplies the show metadata the store cannot derive from
// tracking data alone.
type CatalogueService interface {
	SeriesDetail(ctx context.Context, id int64) (*models.CatalogueItem, error)
}

// Service owns per-profile tracking records for films and shows plus
// per-episode watched flags. State lives in memory guarded by a single
// RWMutex and is persisted to one JSON file per record kind. Mutations are
// last-write-wins; there is no cross-call transaction.
type Service struct {
	mu        sync.RWMutex
	dir       string
	catalogue CatalogueService

	movies   map[string]map[int64]models.MovieTracking
	shows    map[string]map[int64]models.ShowTracking
	episodes map[string]map[int64]map[string]models.EpisodeState
}

// NewService creates a tracking store persisting inside the provided
// directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tracking dir: %w", err)
	}

	svc := &Service{
		dir:      storageDir,
		movies:   make(map[string]map[int64]models.MovieTracking),
		shows:    make(map[string]map[int64]models.ShowTracking),
		episodes: make(map[string]map[int64]map[string]models.EpisodeState),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// SetCatalogue wires the external catalogue used to seed episode totals on
// show record creation. Optional; without it totals stay at zero.
func (s *Service) SetCatalogue(catalogue CatalogueService) {
	s.catalogue = catalogue
}

func validateKey(profileID string, id int64) (string, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return "", ErrProfileIDRequired
	}
	if id <= 0 {
		return "", ErrTitleIDRequired
	}
	return profileID, nil
}

func validateRating(rating *int) error {
	if rating != nil && (*rating < 0 || *rating > 5) {
		return ErrRatingOutOfRange
	}
	return nil
}

// --- movies ---

// GetMovie returns the tracking record for a film. The boolean reports
// whether the title is tracked at all; an untracked title is a valid
// state, not an error.
func (s *Service) GetMovie(profileID string, id int64) (models.MovieTracking, bool, error) {
	profileID, err := validateKey(profileID, id)
	if err != nil {
		return models.MovieTracking{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.movies[profileID][id]
	return rec, ok, nil
}

// UpsertMovie creates the record with defaults when absent and merges only
// the supplied fields when present. AddedAt is immutable; UpdatedAt bumps
// on every call.
func (s *Service) UpsertMovie(profileID string, id int64, input models.MovieTrackingUpsert) (models.MovieTracking, error) {
	profileID, err := validateKey(profileID, id)
	if err != nil {
		return models.MovieTracking{}, err
	}
	if err := validateRating(input.Rating); err != nil {
		return models.MovieTracking{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perProfile := s.ensureMoviesLocked(profileID)

	now := time.Now().UTC()
	rec, exists := perProfile[id]
	if !exists {
		rec = models.MovieTracking{ID: id, AddedAt: now}
	}

	if input.Watched != nil {
		rec.Watched = *input.Watched
	}
	if input.Favourited != nil {
		rec.Favourited = *input.Favourited
	}
	if input.Watchlisted != nil {
		rec.Watchlisted = *input.Watchlisted
	}
	if input.Rating != nil {
		rec.Rating = *input.Rating
	}
	if input.Comment != nil {
		rec.Comment = *input.Comment
	}
	rec.UpdatedAt = now

	perProfile[id] = rec

	if err := s.saveMoviesLocked(); err != nil {
		return models.MovieTracking{}, err
	}

	return rec, nil
}

// DeleteMovie removes the record. Deleting an untracked title is a no-op,
// reported through the boolean.
func (s *Service) DeleteMovie(profileID string, id int64) (bool, error) {
	profileID, err := validateKey(profileID, id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.movies[profileID][id]; !exists {
		return false, nil
	}

	delete(s.movies[profileID], id)

	if err := s.saveMoviesLocked(); err != nil {
		return false, err
	}

	return true, nil
}

// ListMovies returns all tracked films for a profile, most recently
// updated first.
func (s *Service) ListMovies(profileID string) ([]models.MovieTracking, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrProfileIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.MovieTracking, 0, len(s.movies[profileID]))
	for _, rec := range s.movies[profileID] {
		items = append(items, rec)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})

	return items, nil
}

// MovieStats computes the dashboard counters for a profile's films.
func (s *Service) MovieStats(profileID string) (models.MovieStats, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return models.MovieStats{}, ErrProfileIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.MovieStats
	for _, rec := range s.movies[profileID] {
		stats.TotalTracked++
		if rec.Watched {
			stats.Watched++
		}
		if rec.Favourited {
			stats.Favourited++
		}
		if rec.Watchlisted {
			stats.Watchlisted++
		}
		if rec.Rating > 0 {
			stats.Rated++
		}
	}

	return stats, nil
}

// --- shows ---

// GetShow returns the tracking record for a show, with its watched count
// recomputed from episode states.
func (s *Service) GetShow(profileID string, id int64) (models.ShowTracking, bool, error) {
	profileID, err := validateKey(profileID, id)
	if err != nil {
		return models.ShowTracking{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.shows[profileID][id]
	if !ok {
		return models.ShowTracking{}, false, nil
	}
	rec.WatchedEpisodes = countWatched(s.episodes[profileID][id])
	return rec, true, nil
}

// UpsertShow creates the record with defaults when absent and merges only
// the supplied fields when present. New records ask the catalogue for the
// episode total; a failed lookup leaves it unknown rather than failing
// the mutation.
func (s *Service) UpsertShow(ctx context.Context, profileID string, id int64, input models.ShowTrackingUpsert) (models.ShowTracking, error) {
	profileID, err := validateKey(profileID, id)
	if err != nil {
		return models.ShowTracking{}, err
	}
	if err := validateRating(input.Rating); err != nil {
		return models.ShowTracking{}, err
	}

	// The catalogue lookup is slow and optional, so it happens before the
	// write lock. A concurrent create in the gap just wins; totals agree
	// either way.
	total := 0
	if !s.showExists(profileID, id) {
		total = s.lookupTotalEpisodes(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perProfile := s.ensureShowsLocked(profileID)

	now := time.Now().UTC()
	rec, exists := perProfile[id]
	if !exists {
		rec = models.ShowTracking{ID: id, TotalEpisodes: total, AddedAt: now}
	}

	if input.Favourited != nil {
		rec.Favourited = *input.Favourited
	}
	if input.Watchlisted != nil {
		rec.Watchlisted = *input.Watchlisted
	}
	if input.Rating != nil {
		rec.Rating = *input.Rating
	}
	if input.Comment != nil {
		rec.Comment = *input.Comment
	}
	rec.WatchedEpisodes = countWatched(s.episodes[profileID][id])
	rec.UpdatedAt = now

	perProfile[id] = rec

	if err := s.saveShowsLocked(); err != nil {
		return models.ShowTracking{}, err
	}

	return rec, nil
}

// DeleteShow removes the record and cascades to every episode state for
// the show. Deleting an untracked show is a no-op.
func (s *Service) DeleteShow(profileID string, id int64) (bool, error) {
	profileID, err := validateKey(profileID, id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shows[profileID][id]; !exists {
		return false, nil
	}

	delete(s.shows[profileID], id)
	delete(s.episodes[profileID], id)

	if err := s.saveShowsLocked(); err != nil {
		return false, err
	}
	if err := s.saveEpisodesLocked(); err != nil {
		return false, err
	}

	return true, nil
}

// ListShows returns all tracked shows for a profile, most recently updated
// first, with watched counts recomputed.
func (s *Service) ListShows(profileID string) ([]models.ShowTracking, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrProfileIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.ShowTracking, 0, len(s.shows[profileID]))
	for id, rec := range s.shows[profileID] {
		rec.WatchedEpisodes = countWatched(s.episodes[profileID][id])
		items = append(items, rec)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})

	return items, nil
}

func (s *Service) showExists(profileID string, id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.shows[profileID][id]
	return ok
}

func (s *Service) lookupTotalEpisodes(ctx context.Context, id int64) int {
	if s.catalogue == nil {
		return 0
	}
	item, err := s.catalogue.SeriesDetail(ctx, id)
	if err != nil {
		slog.Warn("catalogue unavailable, episode total unknown", "showId", id, "error", err)
		return 0
	}
	if item == nil {
		return 0
	}
	return item.EpisodeCount
}

// --- map plumbing ---

func (s *Service) ensureMoviesLocked(profileID string) map[int64]models.MovieTracking {
	perProfile, ok := s.movies[profileID]
	if !ok {
		perProfile = make(map[int64]models.MovieTracking)
		s.movies[profileID] = perProfile
	}
	return perProfile
}

func (s *Service) ensureShowsLocked(profileID string) map[int64]models.ShowTracking {
	perProfile, ok := s.shows[profileID]
	if !ok {
		perProfile = make(map[int64]models.ShowTracking)
		s.shows[profileID] = perProfile
	}
	return perProfile
}

func (s *Service) ensureEpisodesLocked(profileID string, showID int64) map[string]models.EpisodeState {
	perProfile, ok := s.episodes[profileID]
	if !ok {
		perProfile = make(map[int64]map[string]models.EpisodeState)
		s.episodes[profileID] = perProfile
	}
	perShow, ok := perProfile[showID]
	if !ok {
		perShow = make(map[string]models.EpisodeState)
		perProfile[showID] = perShow
	}
	return perShow
}

// --- persistence ---

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := loadJSON(filepath.Join(s.dir, "movies.json"), &s.movies); err != nil {
		return fmt.Errorf("load movie tracking: %w", err)
	}
	if err := loadJSON(filepath.Join(s.dir, "shows.json"), &s.shows); err != nil {
		return fmt.Errorf("load show tracking: %w", err)
	}
	if err := loadJSON(filepath.Join(s.dir, "episodes.json"), &s.episodes); err != nil {
		return fmt.Errorf("load episode tracking: %w", err)
	}
	return nil
}

func (s *Service) saveMoviesLocked() error {
	return saveJSON(filepath.Join(s.dir, "movies.json"), s.movies)
}

func (s *Service) saveShowsLocked() error {
	return saveJSON(filepath.Join(s.dir, "shows.json"), s.shows)
}

func (s *Service) saveEpisodesLocked() error {
	return saveJSON(filepath.Join(s.dir, "episodes.json"), s.episodes)
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func saveJSON(path string, v any) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	return nil
}
