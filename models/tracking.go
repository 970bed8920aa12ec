package models

import "time"

// StatusFilter selects a library bucket when listing tracked titles.
type StatusFilter string

const (
	StatusAll        StatusFilter = "all"
	StatusWatching   StatusFilter = "watching"
	StatusToWatch    StatusFilter = "to-watch"
	StatusWatched    StatusFilter = "watched"
	StatusUnwatched  StatusFilter = "unwatched"
	StatusFavourited StatusFilter = "favourited"
)

// MovieTracking stores one profile's interaction state for a film.
// Catalogue metadata is fetched on demand and never persisted here.
type MovieTracking struct {
	ID          int64     `json:"id"`
	Watched     bool      `json:"watched"`
	Favourited  bool      `json:"favourited"`
	Watchlisted bool      `json:"watchlisted"`
	Rating      int       `json:"rating"` // 0-5 stars, 0 means unrated
	Comment     string    `json:"comment"`
	AddedAt     time.Time `json:"addedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ShowTracking stores one profile's interaction state for a TV show.
// Completion is derived from episode states, never stored as a flag.
type ShowTracking struct {
	ID          int64  `json:"id"`
	Favourited  bool   `json:"favourited"`
	Watchlisted bool   `json:"watchlisted"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`

	// TotalEpisodes comes from the catalogue; 0 means it could not be
	// supplied. WatchedEpisodes is a denormalised count recomputed from
	// episode states on every mutation.
	TotalEpisodes   int `json:"totalEpisodes"`
	WatchedEpisodes int `json:"watchedEpisodes"`

	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Complete reports whether every catalogue-known episode has been watched.
func (s ShowTracking) Complete() bool {
	return s.TotalEpisodes > 0 && s.WatchedEpisodes == s.TotalEpisodes
}

// InProgress reports whether the show has been started but not finished.
// An unknown episode total counts as in progress once anything is watched.
func (s ShowTracking) InProgress() bool {
	return s.WatchedEpisodes > 0 && !s.Complete()
}

// MovieTrackingUpsert carries a partial update; nil fields stay untouched.
type MovieTrackingUpsert struct {
	Watched     *bool   `json:"watched,omitempty"`
	Favourited  *bool   `json:"favourited,omitempty"`
	Watchlisted *bool   `json:"watchlisted,omitempty"`
	Rating      *int    `json:"rating,omitempty"`
	Comment     *string `json:"comment,omitempty"`
}

// ShowTrackingUpsert carries a partial update; nil fields stay untouched.
type ShowTrackingUpsert struct {
	Favourited  *bool   `json:"favourited,omitempty"`
	Watchlisted *bool   `json:"watchlisted,omitempty"`
	Rating      *int    `json:"rating,omitempty"`
	Comment     *string `json:"comment,omitempty"`
}

// EpisodeState records the watched flag for one episode of a tracked show.
type EpisodeState struct {
	SeasonNumber  int        `json:"seasonNumber"`
	EpisodeNumber int        `json:"episodeNumber"`
	Watched       bool       `json:"watched"`
	WatchedAt     *time.Time `json:"watchedAt,omitempty"`
}

// EpisodeMark is a single watched-flag mutation within a bulk request.
type EpisodeMark struct {
	SeasonNumber  int  `json:"seasonNumber"`
	EpisodeNumber int  `json:"episodeNumber"`
	Watched       bool `json:"watched"`
}

// SeasonProgress summarises tracked episodes within one season.
type SeasonProgress struct {
	SeasonNumber    int `json:"seasonNumber"`
	TrackedEpisodes int `json:"trackedEpisodes"`
	WatchedEpisodes int `json:"watchedEpisodes"`
}

// ShowProgress is the aggregate completion state for one show. Watched
// counts are summed over whatever episode states exist, regardless of
// which seasons the caller has loaded from the catalogue.
type ShowProgress struct {
	ShowID          int64            `json:"showId"`
	TotalEpisodes   int              `json:"totalEpisodes"`
	WatchedEpisodes int              `json:"watchedEpisodes"`
	Seasons         []SeasonProgress `json:"seasons"`
}

// MovieStats holds the dashboard counters for a profile's film collection.
type MovieStats struct {
	TotalTracked int `json:"totalTracked"`
	Watched      int `json:"watched"`
	Favourited   int `json:"favourited"`
	Watchlisted  int `json:"watchlisted"`
	Rated        int `json:"rated"`
}
