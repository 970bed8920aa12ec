package library

import (
	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"kinolog/models"
)

// Status predicates are evaluated against raw tracking records so the
// classification works even when catalogue metadata is unavailable.
var moviePredicates = map[models.StatusFilter]func(models.MovieTracking) bool{
	models.StatusAll:        func(models.MovieTracking) bool { return true },
	models.StatusToWatch:    func(m models.MovieTracking) bool { return m.Watchlisted },
	models.StatusWatched:    func(m models.MovieTracking) bool { return m.Watched },
	models.StatusUnwatched:  func(m models.MovieTracking) bool { return !m.Watched },
	models.StatusFavourited: func(m models.MovieTracking) bool { return m.Favourited },
}

var showPredicates = map[models.StatusFilter]func(models.ShowTracking) bool{
	models.StatusAll:        func(models.ShowTracking) bool { return true },
	models.StatusWatching:   func(s models.ShowTracking) bool { return s.InProgress() },
	models.StatusToWatch:    func(s models.ShowTracking) bool { return s.Watchlisted },
	models.StatusWatched:    func(s models.ShowTracking) bool { return s.Complete() },
	models.StatusUnwatched:  func(s models.ShowTracking) bool { return s.WatchedEpisodes == 0 },
	models.StatusFavourited: func(s models.ShowTracking) bool { return s.Favourited },
}

// ValidFilter reports whether the filter names a known library bucket.
// "watching" is a valid bucket even though no film can ever be in it.
func ValidFilter(filter models.StatusFilter) bool {
	if _, ok := showPredicates[filter]; ok {
		return true
	}
	_, ok := moviePredicates[filter]
	return ok
}

// FilterMovieRecords selects the raw tracking records matching the status
// bucket. Films have no partially-watched state, so "watching" always
// yields an empty slice.
func FilterMovieRecords(records []models.MovieTracking, filter models.StatusFilter) []models.MovieTracking {
	pred, ok := moviePredicates[filter]
	if !ok {
		return []models.MovieTracking{}
	}
	out := make([]models.MovieTracking, 0, len(records))
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterShowRecords selects the raw show records matching the status
// bucket.
func FilterShowRecords(records []models.ShowTracking, filter models.StatusFilter) []models.ShowTracking {
	pred, ok := showPredicates[filter]
	if !ok {
		return []models.ShowTracking{}
	}
	out := make([]models.ShowTracking, 0, len(records))
	for _, rec := range records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// titleMatcher folds case and diacritics so "amelie" matches "Amélie".
type titleMatcher struct {
	pattern *search.Pattern
}

func newTitleMatcher(query string) *titleMatcher {
	if query == "" {
		return &titleMatcher{}
	}
	m := search.New(language.Und, search.IgnoreCase, search.IgnoreDiacritics)
	return &titleMatcher{pattern: m.CompileString(query)}
}

func (t *titleMatcher) matches(title string) bool {
	if t.pattern == nil {
		return true
	}
	start, _ := t.pattern.IndexString(title)
	return start >= 0
}
