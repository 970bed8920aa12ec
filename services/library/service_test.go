package library_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinolog/models"
	"kinolog/services/library"
)

type stubTracking struct {
	movies []models.MovieTracking
	shows  []models.ShowTracking
}

func (s *stubTracking) ListMovies(string) ([]models.MovieTracking, error) { return s.movies, nil }
func (s *stubTracking) ListShows(string) ([]models.ShowTracking, error)   { return s.shows, nil }

type stubCatalogue struct {
	movieTitles map[int64]string
	showTitles  map[int64]string
	err         error
}

func (s *stubCatalogue) MovieDetail(_ context.Context, id int64) (*models.CatalogueItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	title, ok := s.movieTitles[id]
	if !ok {
		title = fmt.Sprintf("Film %d", id)
	}
	return &models.CatalogueItem{ID: id, MediaType: models.MediaTypeMovie, Title: title}, nil
}

func (s *stubCatalogue) SeriesDetail(_ context.Context, id int64) (*models.CatalogueItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	title, ok := s.showTitles[id]
	if !ok {
		title = fmt.Sprintf("Show %d", id)
	}
	return &models.CatalogueItem{ID: id, MediaType: models.MediaTypeSeries, Title: title}, nil
}

func TestFilterMovieRecords(t *testing.T) {
	records := []models.MovieTracking{
		{ID: 1, Watched: true},
		{ID: 2, Watchlisted: true},
		{ID: 3, Favourited: true, Watched: true},
		{ID: 4},
		// Watchlisted and already watched: still on the to-watch list.
		{ID: 5, Watchlisted: true, Watched: true},
	}

	cases := []struct {
		filter models.StatusFilter
		want   []int64
	}{
		{models.StatusAll, []int64{1, 2, 3, 4, 5}},
		{models.StatusWatched, []int64{1, 3, 5}},
		{models.StatusUnwatched, []int64{2, 4}},
		{models.StatusToWatch, []int64{2, 5}},
		{models.StatusFavourited, []int64{3}},
		// No film is ever partially watched.
		{models.StatusWatching, nil},
	}

	for _, tc := range cases {
		t.Run(string(tc.filter), func(t *testing.T) {
			got := library.FilterMovieRecords(records, tc.filter)
			ids := make([]int64, 0, len(got))
			for _, rec := range got {
				ids = append(ids, rec.ID)
			}
			assert.ElementsMatch(t, tc.want, ids)
		})
	}
}

func TestFilterShowRecords(t *testing.T) {
	records := []models.ShowTracking{
		{ID: 1, TotalEpisodes: 10, WatchedEpisodes: 4},
		{ID: 2, TotalEpisodes: 10, WatchedEpisodes: 10},
		{ID: 3, Watchlisted: true},
		{ID: 4, Favourited: true},
		// Unknown total with progress counts as watching, never watched.
		{ID: 5, TotalEpisodes: 0, WatchedEpisodes: 3},
		// Watchlisted with progress: still on the to-watch list.
		{ID: 6, Watchlisted: true, TotalEpisodes: 10, WatchedEpisodes: 3},
	}

	cases := []struct {
		filter models.StatusFilter
		want   []int64
	}{
		{models.StatusAll, []int64{1, 2, 3, 4, 5, 6}},
		{models.StatusWatching, []int64{1, 5, 6}},
		{models.StatusToWatch, []int64{3, 6}},
		{models.StatusWatched, []int64{2}},
		{models.StatusUnwatched, []int64{3, 4}},
		{models.StatusFavourited, []int64{4}},
	}

	for _, tc := range cases {
		t.Run(string(tc.filter), func(t *testing.T) {
			got := library.FilterShowRecords(records, tc.filter)
			ids := make([]int64, 0, len(got))
			for _, rec := range got {
				ids = append(ids, rec.ID)
			}
			assert.ElementsMatch(t, tc.want, ids)
		})
	}
}

func TestListEnrichesWithMetadata(t *testing.T) {
	svc := library.NewService(
		&stubTracking{
			movies: []models.MovieTracking{{ID: 603, Watched: true}},
			shows:  []models.ShowTracking{{ID: 1396, WatchedEpisodes: 2}},
		},
		&stubCatalogue{
			movieTitles: map[int64]string{603: "The Matrix"},
			showTitles:  map[int64]string{1396: "Breaking Bad"},
		},
	)

	lib, err := svc.List(context.Background(), "p1", models.StatusAll, "")
	require.NoError(t, err)

	require.Len(t, lib.Movies, 1)
	assert.Equal(t, "The Matrix", lib.Movies[0].Title)
	assert.True(t, lib.Movies[0].Watched)

	require.Len(t, lib.Shows, 1)
	assert.Equal(t, "Breaking Bad", lib.Shows[0].Title)
}

func TestListDegradesWithoutCatalogue(t *testing.T) {
	svc := library.NewService(
		&stubTracking{movies: []models.MovieTracking{{ID: 603, Watched: true}}},
		&stubCatalogue{err: errors.New("catalogue down")},
	)

	lib, err := svc.List(context.Background(), "p1", models.StatusWatched, "")
	require.NoError(t, err, "catalogue outage must not fail the listing")

	require.Len(t, lib.Movies, 1)
	assert.Empty(t, lib.Movies[0].Title)
	assert.True(t, lib.Movies[0].Watched, "classification works without metadata")
}

func TestListTitleQuery(t *testing.T) {
	svc := library.NewService(
		&stubTracking{movies: []models.MovieTracking{{ID: 1}, {ID: 2}}},
		&stubCatalogue{movieTitles: map[int64]string{1: "Amélie", 2: "Heat"}},
	)

	lib, err := svc.List(context.Background(), "p1", models.StatusAll, "amelie")
	require.NoError(t, err)

	require.Len(t, lib.Movies, 1, "query folds case and diacritics")
	assert.Equal(t, int64(1), lib.Movies[0].ID)
}

func TestListRejectsUnknownFilter(t *testing.T) {
	svc := library.NewService(&stubTracking{}, &stubCatalogue{})

	_, err := svc.List(context.Background(), "p1", models.StatusFilter("bogus"), "")
	assert.ErrorIs(t, err, library.ErrUnknownFilter)
}

func TestListDefaultsToAll(t *testing.T) {
	svc := library.NewService(
		&stubTracking{movies: []models.MovieTracking{{ID: 1}}},
		&stubCatalogue{},
	)

	lib, err := svc.List(context.Background(), "p1", "", "")
	require.NoError(t, err)
	assert.Len(t, lib.Movies, 1)
}
