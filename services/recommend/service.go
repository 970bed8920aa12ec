package recommend

import (
	"context"
	"log/slog"
	"sort"

	"kinolog/models"
)

const defaultMaxResults = 20

// TrackingService is the slice of the tracking store the recommender
// reads.
type TrackingService interface {
	ListShows(profileID string) ([]models.ShowTracking, error)
}

// CatalogueService supplies similar-title lookups.
type CatalogueService interface {
	SimilarSeries(ctx context.Context, id int64) ([]models.CatalogueItem, error)
}

// Service derives show suggestions from what a profile already tracks.
// Nothing is persisted; results are recomputed per request.
type Service struct {
	tracking   TrackingService
	catalogue  CatalogueService
	maxResults int
}

func NewService(tracking TrackingService, catalogue CatalogueService, maxResults int) *Service {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Service{tracking: tracking, catalogue: catalogue, maxResults: maxResults}
}

// selectSeed picks the profile's highest-rated show, breaking ties in
// favour of the one tracked first. Returns false when nothing is tracked.
func selectSeed(shows []models.ShowTracking) (models.ShowTracking, bool) {
	if len(shows) == 0 {
		return models.ShowTracking{}, false
	}

	ordered := make([]models.ShowTracking, len(shows))
	copy(ordered, shows)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].AddedAt.Equal(ordered[j].AddedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].AddedAt.Before(ordered[j].AddedAt)
	})

	seed := ordered[0]
	for _, s := range ordered[1:] {
		if s.Rating > seed.Rating {
			seed = s
		}
	}
	return seed, true
}

// Recommendations suggests shows similar to the profile's favourite seed,
// excluding everything already tracked. An empty profile gets an empty
// list rather than generic suggestions; a catalogue outage degrades the
// same way.
func (s *Service) Recommendations(ctx context.Context, profileID string) ([]models.CatalogueItem, error) {
	shows, err := s.tracking.ListShows(profileID)
	if err != nil {
		return nil, err
	}

	seed, ok := selectSeed(shows)
	if !ok {
		return []models.CatalogueItem{}, nil
	}

	similar, err := s.catalogue.SimilarSeries(ctx, seed.ID)
	if err != nil {
		slog.Warn("recommendations unavailable", "seedShowId", seed.ID, "error", err)
		return []models.CatalogueItem{}, nil
	}

	tracked := make(map[int64]struct{}, len(shows))
	for _, sh := range shows {
		tracked[sh.ID] = struct{}{}
	}

	seen := make(map[int64]struct{}, len(similar))
	results := make([]models.CatalogueItem, 0, s.maxResults)
	for _, item := range similar {
		if _, ok := tracked[item.ID]; ok {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		results = append(results, item)
		if len(results) == s.maxResults {
			break
		}
	}

	return results, nil
}
