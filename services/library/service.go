package library

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"kinolog/models"
)

var ErrUnknownFilter = errors.New("unknown status filter")

// enrichWorkers caps concurrent catalogue lookups per library request.
const enrichWorkers = 4

// TrackingService is the slice of the tracking store the library reads.
type TrackingService interface {
	ListMovies(profileID string) ([]models.MovieTracking, error)
	ListShows(profileID string) ([]models.ShowTracking, error)
}

// CatalogueService supplies presentation metadata for tracked titles.
type CatalogueService interface {
	MovieDetail(ctx context.Context, id int64) (*models.CatalogueItem, error)
	SeriesDetail(ctx context.Context, id int64) (*models.CatalogueItem, error)
}

// Service assembles the filtered, metadata-enriched view of a profile's
// tracked titles. It owns no state; everything derives from the tracking
// store and the catalogue on each call.
type Service struct {
	tracking  TrackingService
	catalogue CatalogueService
}

func NewService(tracking TrackingService, catalogue CatalogueService) *Service {
	return &Service{tracking: tracking, catalogue: catalogue}
}

// List returns the profile's library narrowed by status bucket and an
// optional title substring. Title matching needs catalogue metadata, so
// titles the catalogue cannot resolve are dropped only when a query is
// present; otherwise they appear with empty metadata.
func (s *Service) List(ctx context.Context, profileID string, filter models.StatusFilter, query string) (models.Library, error) {
	if filter == "" {
		filter = models.StatusAll
	}
	if !ValidFilter(filter) {
		return models.Library{}, ErrUnknownFilter
	}

	movies, err := s.tracking.ListMovies(profileID)
	if err != nil {
		return models.Library{}, err
	}
	shows, err := s.tracking.ListShows(profileID)
	if err != nil {
		return models.Library{}, err
	}

	movies = FilterMovieRecords(movies, filter)
	shows = FilterShowRecords(shows, filter)

	lib := models.Library{
		Movies: s.enrichMovies(ctx, movies),
		Shows:  s.enrichShows(ctx, shows),
	}

	if query != "" {
		matcher := newTitleMatcher(query)
		matchedMovies := make([]models.LibraryMovie, 0, len(lib.Movies))
		for _, m := range lib.Movies {
			if m.Title != "" && matcher.matches(m.Title) {
				matchedMovies = append(matchedMovies, m)
			}
		}
		matchedShows := make([]models.LibraryShow, 0, len(lib.Shows))
		for _, sh := range lib.Shows {
			if sh.Title != "" && matcher.matches(sh.Title) {
				matchedShows = append(matchedShows, sh)
			}
		}
		lib.Movies = matchedMovies
		lib.Shows = matchedShows
	}

	return lib, nil
}

func (s *Service) enrichMovies(ctx context.Context, records []models.MovieTracking) []models.LibraryMovie {
	out := make([]models.LibraryMovie, len(records))

	p := pool.New().WithMaxGoroutines(enrichWorkers)
	for i, rec := range records {
		p.Go(func() {
			out[i] = models.LibraryMovie{MovieTracking: rec}
			item, err := s.catalogue.MovieDetail(ctx, rec.ID)
			if err != nil {
				slog.Warn("library served without film metadata", "movieId", rec.ID, "error", err)
				return
			}
			out[i].Title = item.Title
			out[i].PosterURL = item.PosterURL
			out[i].BackdropURL = item.BackdropURL
		})
	}
	p.Wait()

	return out
}

func (s *Service) enrichShows(ctx context.Context, records []models.ShowTracking) []models.LibraryShow {
	out := make([]models.LibraryShow, len(records))

	p := pool.New().WithMaxGoroutines(enrichWorkers)
	for i, rec := range records {
		p.Go(func() {
			out[i] = models.LibraryShow{ShowTracking: rec}
			item, err := s.catalogue.SeriesDetail(ctx, rec.ID)
			if err != nil {
				slog.Warn("library served without show metadata", "showId", rec.ID, "error", err)
				return
			}
			out[i].Title = item.Title
			out[i].PosterURL = item.PosterURL
			out[i].BackdropURL = item.BackdropURL
		})
	}
	p.Wait()

	return out
}
