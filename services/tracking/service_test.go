package tracking_test

import (
	"context"
	"errors"
	"testing"

	"kinolog/models"
	"kinolog/services/tracking"
)

func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func newTestService(t *testing.T) *tracking.Service {
	t.Helper()
	svc, err := tracking.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

type stubCatalogue struct {
	episodeCount int
	err          error
}

func (s *stubCatalogue) SeriesDetail(_ context.Context, id int64) (*models.CatalogueItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.CatalogueItem{ID: id, MediaType: models.MediaTypeSeries, EpisodeCount: s.episodeCount}, nil
}

func TestNewServiceRequiresStorageDir(t *testing.T) {
	if _, err := tracking.NewService("  "); !errors.Is(err, tracking.ErrStorageDirRequired) {
		t.Fatalf("expected ErrStorageDirRequired, got %v", err)
	}
}

func TestUpsertMovieCreatesWithDefaults(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.UpsertMovie("p1", 603, models.MovieTrackingUpsert{Watchlisted: boolPtr(true)})
	if err != nil {
		t.Fatalf("UpsertMovie: %v", err)
	}

	if !rec.Watchlisted {
		t.Error("expected watchlisted to be set")
	}
	if rec.Watched || rec.Favourited || rec.Rating != 0 || rec.Comment != "" {
		t.Errorf("expected remaining fields at defaults, got %+v", rec)
	}
	if rec.AddedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be populated")
	}
}

func TestUpsertMovieMergesOnlyProvidedFields(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.UpsertMovie("p1", 603, models.MovieTrackingUpsert{
		Watched: boolPtr(true),
		Rating:  intPtr(4),
		Comment: strPtr("great"),
	})
	if err != nil {
		t.Fatalf("UpsertMovie: %v", err)
	}

	second, err := svc.UpsertMovie("p1", 603, models.MovieTrackingUpsert{Favourited: boolPtr(true)})
	if err != nil {
		t.Fatalf("UpsertMovie merge: %v", err)
	}

	if !second.Watched || second.Rating != 4 || second.Comment != "great" {
		t.Errorf("untouched fields changed: %+v", second)
	}
	if !second.Favourited {
		t.Error("expected favourited to flip")
	}
	if !second.AddedAt.Equal(first.AddedAt) {
		t.Error("AddedAt must not change on update")
	}
}

func TestUpsertMovieRejectsBadRating(t *testing.T) {
	svc := newTestService(t)

	for _, rating := range []int{-1, 6} {
		if _, err := svc.UpsertMovie("p1", 603, models.MovieTrackingUpsert{Rating: intPtr(rating)}); !errors.Is(err, tracking.ErrRatingOutOfRange) {
			t.Errorf("rating %d: expected ErrRatingOutOfRange, got %v", rating, err)
		}
	}

	// Clearing a rating back to zero is valid.
	if _, err := svc.UpsertMovie("p1", 603, models.MovieTrackingUpsert{Rating: intPtr(0)}); err != nil {
		t.Fatalf("rating 0 should be accepted: %v", err)
	}
}

func TestUpsertMovieValidatesKeys(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.UpsertMovie("", 603, models.MovieTrackingUpsert{}); !errors.Is(err, tracking.ErrProfileIDRequired) {
		t.Errorf("expected ErrProfileIDRequired, got %v", err)
	}
	if _, err := svc.UpsertMovie("p1", 0, models.MovieTrackingUpsert{}); !errors.Is(err, tracking.ErrTitleIDRequired) {
		t.Errorf("expected ErrTitleIDRequired, got %v", err)
	}
}

func TestGetMovieUntracked(t *testing.T) {
	svc := newTestService(t)

	_, ok, err := svc.GetMovie("p1", 603)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if ok {
		t.Error("expected untracked movie to report not found")
	}
}

func TestDeleteMovie(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.UpsertMovie("p1", 603, models.MovieTrackingUpsert{Watched: boolPtr(true)}); err != nil {
		t.Fatalf("UpsertMovie: %v", err)
	}

	removed, err := svc.DeleteMovie("p1", 603)
	if err != nil {
		t.Fatalf("DeleteMovie: %v", err)
	}
	if !removed {
		t.Error("expected delete to report removal")
	}

	removed, err = svc.DeleteMovie("p1", 603)
	if err != nil {
		t.Fatalf("DeleteMovie repeat: %v", err)
	}
	if removed {
		t.Error("deleting an untracked movie must be a no-op")
	}
}

func TestProfileIsolation(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.UpsertMovie("alice", 603, models.MovieTrackingUpsert{Watched: boolPtr(true)}); err != nil {
		t.Fatalf("UpsertMovie: %v", err)
	}

	if _, ok, _ := svc.GetMovie("bob", 603); ok {
		t.Error("profile bob must not see alice's records")
	}

	movies, err := svc.ListMovies("bob")
	if err != nil {
		t.Fatalf("ListMovies: %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("expected empty list for bob, got %d items", len(movies))
	}
}

func TestMovieStats(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.UpsertMovie("p1", 1, models.MovieTrackingUpsert{Watched: boolPtr(true), Rating: intPtr(5)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpsertMovie("p1", 2, models.MovieTrackingUpsert{Favourited: boolPtr(true)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpsertMovie("p1", 3, models.MovieTrackingUpsert{Watchlisted: boolPtr(true)}); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.MovieStats("p1")
	if err != nil {
		t.Fatalf("MovieStats: %v", err)
	}

	want := models.MovieStats{TotalTracked: 3, Watched: 1, Favourited: 1, Watchlisted: 1, Rated: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestUpsertShowFetchesEpisodeTotal(t *testing.T) {
	svc := newTestService(t)
	svc.SetCatalogue(&stubCatalogue{episodeCount: 62})

	rec, err := svc.UpsertShow(context.Background(), "p1", 1396, models.ShowTrackingUpsert{Watchlisted: boolPtr(true)})
	if err != nil {
		t.Fatalf("UpsertShow: %v", err)
	}
	if rec.TotalEpisodes != 62 {
		t.Errorf("TotalEpisodes = %d, want 62", rec.TotalEpisodes)
	}
}

func TestUpsertShowSurvivesCatalogueOutage(t *testing.T) {
	svc := newTestService(t)
	svc.SetCatalogue(&stubCatalogue{err: errors.New("boom")})

	rec, err := svc.UpsertShow(context.Background(), "p1", 1396, models.ShowTrackingUpsert{Favourited: boolPtr(true)})
	if err != nil {
		t.Fatalf("UpsertShow must not fail on catalogue outage: %v", err)
	}
	if rec.TotalEpisodes != 0 {
		t.Errorf("TotalEpisodes = %d, want 0 (unknown)", rec.TotalEpisodes)
	}
	if !rec.Favourited {
		t.Error("mutation must still apply")
	}
}

func TestMarkEpisodesCreatesShowRecord(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.MarkEpisodes(context.Background(), "p1", 1396, []models.EpisodeMark{
		{SeasonNumber: 1, EpisodeNumber: 1, Watched: true},
		{SeasonNumber: 1, EpisodeNumber: 2, Watched: true},
	})
	if err != nil {
		t.Fatalf("MarkEpisodes: %v", err)
	}

	if rec.WatchedEpisodes != 2 {
		t.Errorf("WatchedEpisodes = %d, want 2", rec.WatchedEpisodes)
	}

	if _, ok, _ := svc.GetShow("p1", 1396); !ok {
		t.Error("marking an episode must implicitly track the show")
	}
}

func TestMarkEpisodesIdempotentTimestamps(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.MarkEpisodes(ctx, "p1", 1396, []models.EpisodeMark{{SeasonNumber: 1, EpisodeNumber: 1, Watched: true}}); err != nil {
		t.Fatal(err)
	}

	states, err := svc.ListEpisodes("p1", 1396)
	if err != nil || len(states) != 1 {
		t.Fatalf("ListEpisodes: %v (%d states)", err, len(states))
	}
	firstAt := states[0].WatchedAt
	if firstAt == nil {
		t.Fatal("expected WatchedAt to be set")
	}

	// Re-marking watched keeps the original timestamp.
	if _, err := svc.MarkEpisodes(ctx, "p1", 1396, []models.EpisodeMark{{SeasonNumber: 1, EpisodeNumber: 1, Watched: true}}); err != nil {
		t.Fatal(err)
	}
	states, _ = svc.ListEpisodes("p1", 1396)
	if states[0].WatchedAt == nil || !states[0].WatchedAt.Equal(*firstAt) {
		t.Error("re-marking watched must preserve the original WatchedAt")
	}

	// Unmarking clears it.
	if _, err := svc.MarkEpisodes(ctx, "p1", 1396, []models.EpisodeMark{{SeasonNumber: 1, EpisodeNumber: 1, Watched: false}}); err != nil {
		t.Fatal(err)
	}
	states, _ = svc.ListEpisodes("p1", 1396)
	if states[0].Watched || states[0].WatchedAt != nil {
		t.Errorf("unmark must clear watched state, got %+v", states[0])
	}
}

func TestMarkSeason(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.MarkSeason(ctx, "p1", 1396, 2, []int{1, 2, 3}, true)
	if err != nil {
		t.Fatalf("MarkSeason: %v", err)
	}
	if rec.WatchedEpisodes != 3 {
		t.Errorf("WatchedEpisodes = %d, want 3", rec.WatchedEpisodes)
	}

	rec, err = svc.MarkSeason(ctx, "p1", 1396, 2, []int{2, 3}, false)
	if err != nil {
		t.Fatalf("MarkSeason unmark: %v", err)
	}
	if rec.WatchedEpisodes != 1 {
		t.Errorf("WatchedEpisodes after unmark = %d, want 1", rec.WatchedEpisodes)
	}
}

func TestMarkSeasonEmptyListStillTracksShow(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.MarkSeason(context.Background(), "p1", 1396, 1, nil, true); err != nil {
		t.Fatalf("MarkSeason: %v", err)
	}
	if _, ok, _ := svc.GetShow("p1", 1396); !ok {
		t.Error("an empty season batch must still create the show record")
	}
}

func TestProgressPerSeason(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	marks := []models.EpisodeMark{
		{SeasonNumber: 1, EpisodeNumber: 1, Watched: true},
		{SeasonNumber: 1, EpisodeNumber: 2, Watched: false},
		{SeasonNumber: 2, EpisodeNumber: 1, Watched: true},
	}
	if _, err := svc.MarkEpisodes(ctx, "p1", 1396, marks); err != nil {
		t.Fatal(err)
	}

	progress, ok, err := svc.Progress("p1", 1396)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if !ok {
		t.Fatal("expected show to be tracked")
	}

	if progress.WatchedEpisodes != 2 {
		t.Errorf("WatchedEpisodes = %d, want 2", progress.WatchedEpisodes)
	}
	if len(progress.Seasons) != 2 {
		t.Fatalf("expected 2 seasons, got %d", len(progress.Seasons))
	}
	s1, s2 := progress.Seasons[0], progress.Seasons[1]
	if s1.SeasonNumber != 1 || s1.TrackedEpisodes != 2 || s1.WatchedEpisodes != 1 {
		t.Errorf("season 1 progress wrong: %+v", s1)
	}
	if s2.SeasonNumber != 2 || s2.TrackedEpisodes != 1 || s2.WatchedEpisodes != 1 {
		t.Errorf("season 2 progress wrong: %+v", s2)
	}
}

func TestProgressUntrackedShow(t *testing.T) {
	svc := newTestService(t)

	_, ok, err := svc.Progress("p1", 1396)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if ok {
		t.Error("untracked show must report not found")
	}
}

func TestDeleteShowCascadesEpisodes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.MarkEpisodes(ctx, "p1", 1396, []models.EpisodeMark{{SeasonNumber: 1, EpisodeNumber: 1, Watched: true}}); err != nil {
		t.Fatal(err)
	}

	removed, err := svc.DeleteShow("p1", 1396)
	if err != nil || !removed {
		t.Fatalf("DeleteShow: removed=%v err=%v", removed, err)
	}

	states, err := svc.ListEpisodes("p1", 1396)
	if err != nil {
		t.Fatalf("ListEpisodes: %v", err)
	}
	if len(states) != 0 {
		t.Errorf("expected episode states to be removed, got %d", len(states))
	}

	// Re-tracking after delete starts from scratch.
	rec, err := svc.MarkEpisodes(ctx, "p1", 1396, []models.EpisodeMark{{SeasonNumber: 1, EpisodeNumber: 2, Watched: true}})
	if err != nil {
		t.Fatal(err)
	}
	if rec.WatchedEpisodes != 1 {
		t.Errorf("WatchedEpisodes = %d, want 1", rec.WatchedEpisodes)
	}
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := tracking.NewService(dir)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.UpsertMovie("p1", 603, models.MovieTrackingUpsert{Watched: boolPtr(true), Rating: intPtr(5)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.MarkEpisodes(context.Background(), "p1", 1396, []models.EpisodeMark{{SeasonNumber: 1, EpisodeNumber: 1, Watched: true}}); err != nil {
		t.Fatal(err)
	}

	reloaded, err := tracking.NewService(dir)
	if err != nil {
		t.Fatalf("NewService reload: %v", err)
	}

	movie, ok, err := reloaded.GetMovie("p1", 603)
	if err != nil || !ok {
		t.Fatalf("GetMovie after reload: ok=%v err=%v", ok, err)
	}
	if !movie.Watched || movie.Rating != 5 {
		t.Errorf("reloaded movie lost fields: %+v", movie)
	}

	show, ok, err := reloaded.GetShow("p1", 1396)
	if err != nil || !ok {
		t.Fatalf("GetShow after reload: ok=%v err=%v", ok, err)
	}
	if show.WatchedEpisodes != 1 {
		t.Errorf("reloaded show WatchedEpisodes = %d, want 1", show.WatchedEpisodes)
	}
}
