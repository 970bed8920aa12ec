package models

// Hero pool names tag each slot with the pool that supplied it.
const (
	PoolLibrarySeries  = "library-series"
	PoolLibraryMovies  = "library-movies"
	PoolUpcomingSeries = "upcoming-series"
	PoolUpcomingMovies = "upcoming-movies"
)

// HeroSlot is one featured carousel entry.
type HeroSlot struct {
	Pool string        `json:"pool"`
	Item CatalogueItem `json:"item"`
}
