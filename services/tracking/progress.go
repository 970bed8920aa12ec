package tracking

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"kinolog/models"
)

func episodeKey(season, episode int) string {
	return fmt.Sprintf("%d:%d", season, episode)
}

func splitEpisodeKey(key string) (season, episode int, ok bool) {
	s, e, found := strings.Cut(key, ":")
	if !found {
		return 0, 0, false
	}
	season, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, false
	}
	episode, err = strconv.Atoi(e)
	if err != nil {
		return 0, 0, false
	}
	return season, episode, true
}

func countWatched(states map[string]models.EpisodeState) int {
	n := 0
	for _, st := range states {
		if st.Watched {
			n++
		}
	}
	return n
}

// MarkEpisodes applies a batch of per-episode watched flags in one
// mutation. The show tracking record is created with defaults when
// absent, so marking an episode of an unknown show implicitly starts
// tracking it. Marking an already-watched episode keeps the original
// watch timestamp; unmarking clears it.
func (s *Service) MarkEpisodes(ctx context.Context, profileID string, showID int64, marks []models.EpisodeMark) (models.ShowTracking, error) {
	profileID, err := validateKey(profileID, showID)
	if err != nil {
		return models.ShowTracking{}, err
	}
	for _, m := range marks {
		if m.SeasonNumber < 0 || m.EpisodeNumber <= 0 {
			return models.ShowTracking{}, ErrEpisodeNumberInvalid
		}
	}

	total := 0
	if !s.showExists(profileID, showID) {
		total = s.lookupTotalEpisodes(ctx, showID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perProfile := s.ensureShowsLocked(profileID)
	states := s.ensureEpisodesLocked(profileID, showID)

	now := time.Now().UTC()
	rec, exists := perProfile[showID]
	if !exists {
		rec = models.ShowTracking{ID: showID, TotalEpisodes: total, AddedAt: now}
	}

	for _, m := range marks {
		key := episodeKey(m.SeasonNumber, m.EpisodeNumber)
		st, had := states[key]
		st.SeasonNumber = m.SeasonNumber
		st.EpisodeNumber = m.EpisodeNumber

		switch {
		case m.Watched && (!had || !st.Watched):
			at := now
			st.WatchedAt = &at
		case !m.Watched:
			st.WatchedAt = nil
		}
		st.Watched = m.Watched
		states[key] = st
	}

	rec.WatchedEpisodes = countWatched(states)
	rec.UpdatedAt = now
	perProfile[showID] = rec

	if err := s.saveShowsLocked(); err != nil {
		return models.ShowTracking{}, err
	}
	if err := s.saveEpisodesLocked(); err != nil {
		return models.ShowTracking{}, err
	}

	return rec, nil
}

// MarkSeason marks every listed episode of one season watched or
// unwatched in a single batch. Callers resolve the season's episode
// numbers from the catalogue; an empty list still creates the show
// record without flipping any episode flags.
func (s *Service) MarkSeason(ctx context.Context, profileID string, showID int64, seasonNumber int, episodes []int, watched bool) (models.ShowTracking, error) {
	marks := make([]models.EpisodeMark, 0, len(episodes))
	for _, ep := range episodes {
		marks = append(marks, models.EpisodeMark{
			SeasonNumber:  seasonNumber,
			EpisodeNumber: ep,
			Watched:       watched,
		})
	}
	return s.MarkEpisodes(ctx, profileID, showID, marks)
}

// ListEpisodes returns all recorded episode states for a show, ordered by
// season then episode number.
func (s *Service) ListEpisodes(profileID string, showID int64) ([]models.EpisodeState, error) {
	profileID, err := validateKey(profileID, showID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	states := s.episodes[profileID][showID]
	items := make([]models.EpisodeState, 0, len(states))
	for _, st := range states {
		items = append(items, st)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].SeasonNumber == items[j].SeasonNumber {
			return items[i].EpisodeNumber < items[j].EpisodeNumber
		}
		return items[i].SeasonNumber < items[j].SeasonNumber
	})

	return items, nil
}

// Progress recomputes the show's watch progress from the recorded episode
// states, broken down per season. The boolean reports whether the show is
// tracked at all.
func (s *Service) Progress(profileID string, showID int64) (models.ShowProgress, bool, error) {
	profileID, err := validateKey(profileID, showID)
	if err != nil {
		return models.ShowProgress{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.shows[profileID][showID]
	if !ok {
		return models.ShowProgress{}, false, nil
	}

	progress := models.ShowProgress{
		ShowID:        showID,
		TotalEpisodes: rec.TotalEpisodes,
		Seasons:       []models.SeasonProgress{},
	}

	bySeason := make(map[int]*models.SeasonProgress)
	for key, st := range s.episodes[profileID][showID] {
		season, _, ok := splitEpisodeKey(key)
		if !ok {
			continue
		}
		sp, exists := bySeason[season]
		if !exists {
			sp = &models.SeasonProgress{SeasonNumber: season}
			bySeason[season] = sp
		}
		sp.TrackedEpisodes++
		if st.Watched {
			sp.WatchedEpisodes++
			progress.WatchedEpisodes++
		}
	}

	for _, sp := range bySeason {
		progress.Seasons = append(progress.Seasons, *sp)
	}
	sort.Slice(progress.Seasons, func(i, j int) bool {
		return progress.Seasons[i].SeasonNumber < progress.Seasons[j].SeasonNumber
	})

	return progress, true, nil
}
