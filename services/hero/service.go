package hero

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"kinolog/models"
)

const defaultSlots = 5

// TrackingService is the slice of the tracking store the carousel reads.
type TrackingService interface {
	ListMovies(profileID string) ([]models.MovieTracking, error)
	ListShows(profileID string) ([]models.ShowTracking, error)
}

// CatalogueService supplies metadata and upcoming listings.
type CatalogueService interface {
	MovieDetail(ctx context.Context, id int64) (*models.CatalogueItem, error)
	SeriesDetail(ctx context.Context, id int64) (*models.CatalogueItem, error)
	UpcomingMovies(ctx context.Context) ([]models.CatalogueItem, error)
	UpcomingSeries(ctx context.Context) ([]models.CatalogueItem, error)
}

// slotPlan fixes the pool each carousel position draws from, with a
// fallback pool when the primary runs dry. Library pools fall back to
// upcoming listings and vice versa, so a fresh profile still gets a full
// carousel and a heavy user is not starved of their own titles.
var slotPlan = []struct {
	primary  string
	fallback string
}{
	{models.PoolLibrarySeries, models.PoolUpcomingSeries},
	{models.PoolLibraryMovies, models.PoolUpcomingMovies},
	{models.PoolLibrarySeries, models.PoolUpcomingSeries},
	{models.PoolUpcomingSeries, models.PoolLibrarySeries},
	{models.PoolUpcomingMovies, models.PoolLibraryMovies},
}

// Service assembles the featured carousel for the home screen. Stateless;
// each call rebuilds the pools from the tracking store and the catalogue.
type Service struct {
	tracking  TrackingService
	catalogue CatalogueService
	slots     int
}

func NewService(tracking TrackingService, catalogue CatalogueService, slots int) *Service {
	if slots <= 0 || slots > len(slotPlan) {
		slots = defaultSlots
	}
	return &Service{tracking: tracking, catalogue: catalogue, slots: slots}
}

// Slots fills the carousel positions from their planned pools, never
// repeating a title. Slots whose primary and fallback pools are both
// exhausted are omitted, so the result may be shorter than the plan.
func (s *Service) Slots(ctx context.Context, profileID string) ([]models.HeroSlot, error) {
	pools, err := s.buildPools(ctx, profileID)
	if err != nil {
		return nil, err
	}

	used := make(map[string]struct{})
	slots := make([]models.HeroSlot, 0, s.slots)
	for _, plan := range slotPlan[:s.slots] {
		item, ok := takeFirst(pools[plan.primary], used)
		poolName := plan.primary
		if !ok {
			item, ok = takeFirst(pools[plan.fallback], used)
			poolName = plan.fallback
		}
		if !ok {
			continue
		}
		used[item.Key()] = struct{}{}
		slots = append(slots, models.HeroSlot{Pool: poolName, Item: item})
	}

	return slots, nil
}

// takeFirst returns the first pool entry not already placed in a slot.
func takeFirst(pool []models.CatalogueItem, used map[string]struct{}) (models.CatalogueItem, bool) {
	for _, item := range pool {
		if _, taken := used[item.Key()]; taken {
			continue
		}
		return item, true
	}
	return models.CatalogueItem{}, false
}

func (s *Service) buildPools(ctx context.Context, profileID string) (map[string][]models.CatalogueItem, error) {
	shows, err := s.tracking.ListShows(profileID)
	if err != nil {
		return nil, err
	}
	movies, err := s.tracking.ListMovies(profileID)
	if err != nil {
		return nil, err
	}

	// Upcoming listings and library enrichment all hit the catalogue, so
	// they run concurrently. Each pool degrades to empty independently.
	var libSeries, libMovies, upSeries, upMovies []models.CatalogueItem

	p := pool.New().WithMaxGoroutines(4)
	p.Go(func() {
		libSeries = s.seriesPool(ctx, shows)
	})
	p.Go(func() {
		libMovies = s.moviePool(ctx, movies)
	})
	p.Go(func() {
		items, err := s.catalogue.UpcomingSeries(ctx)
		if err != nil {
			slog.Warn("upcoming series pool empty", "error", err)
			return
		}
		upSeries = items
	})
	p.Go(func() {
		items, err := s.catalogue.UpcomingMovies(ctx)
		if err != nil {
			slog.Warn("upcoming films pool empty", "error", err)
			return
		}
		upMovies = items
	})
	p.Wait()

	// An upcoming pool never duplicates its library counterpart; a title
	// the profile already tracks belongs to the library pool alone.
	upSeries = withBackdropExcluding(upSeries, libSeries)
	upMovies = withBackdropExcluding(upMovies, libMovies)

	return map[string][]models.CatalogueItem{
		models.PoolLibrarySeries:  libSeries,
		models.PoolLibraryMovies:  libMovies,
		models.PoolUpcomingSeries: upSeries,
		models.PoolUpcomingMovies: upMovies,
	}, nil
}

// seriesPool features shows the profile is invested in: watchlisted or
// started, favourites first, then by rating. Titles without backdrop art
// cannot render as hero banners and are skipped.
func (s *Service) seriesPool(ctx context.Context, shows []models.ShowTracking) []models.CatalogueItem {
	candidates := make([]models.ShowTracking, 0, len(shows))
	for _, rec := range shows {
		if rec.Watchlisted || rec.WatchedEpisodes > 0 {
			candidates = append(candidates, rec)
		}
	}
	rankShows(candidates)

	items := make([]models.CatalogueItem, 0, len(candidates))
	for _, rec := range candidates {
		item, err := s.catalogue.SeriesDetail(ctx, rec.ID)
		if err != nil {
			slog.Warn("show skipped from carousel", "showId", rec.ID, "error", err)
			continue
		}
		if item.BackdropURL == "" {
			continue
		}
		items = append(items, *item)
	}
	return items
}

func (s *Service) moviePool(ctx context.Context, movies []models.MovieTracking) []models.CatalogueItem {
	candidates := make([]models.MovieTracking, 0, len(movies))
	for _, rec := range movies {
		if rec.Watchlisted || rec.Watched {
			candidates = append(candidates, rec)
		}
	}
	rankMovies(candidates)

	items := make([]models.CatalogueItem, 0, len(candidates))
	for _, rec := range candidates {
		item, err := s.catalogue.MovieDetail(ctx, rec.ID)
		if err != nil {
			slog.Warn("film skipped from carousel", "movieId", rec.ID, "error", err)
			continue
		}
		if item.BackdropURL == "" {
			continue
		}
		items = append(items, *item)
	}
	return items
}

func rankShows(shows []models.ShowTracking) {
	sort.SliceStable(shows, func(i, j int) bool {
		if shows[i].Favourited != shows[j].Favourited {
			return shows[i].Favourited
		}
		return shows[i].Rating > shows[j].Rating
	})
}

func rankMovies(movies []models.MovieTracking) {
	sort.SliceStable(movies, func(i, j int) bool {
		if movies[i].Favourited != movies[j].Favourited {
			return movies[i].Favourited
		}
		return movies[i].Rating > movies[j].Rating
	})
}

func withBackdropExcluding(items, exclude []models.CatalogueItem) []models.CatalogueItem {
	excluded := make(map[string]struct{}, len(exclude))
	for _, item := range exclude {
		excluded[item.Key()] = struct{}{}
	}

	out := make([]models.CatalogueItem, 0, len(items))
	for _, item := range items {
		if item.BackdropURL == "" {
			continue
		}
		if _, ok := excluded[item.Key()]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}
