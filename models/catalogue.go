package models

import "strconv"

const (
	MediaTypeMovie  = "movie"
	MediaTypeSeries = "series"
)

// CatalogueItem is read-only title metadata supplied by the external
// catalogue. This backend never mutates it.
type CatalogueItem struct {
	ID           int64    `json:"id"`
	MediaType    string   `json:"mediaType"` // movie | series
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	PosterURL    string   `json:"posterUrl,omitempty"`
	BackdropURL  string   `json:"backdropUrl,omitempty"`
	ReleaseDate  string   `json:"releaseDate,omitempty"` // release or first air date
	Genres       []string `json:"genres,omitempty"`
	VoteAverage  float64  `json:"voteAverage,omitempty"`
	VoteCount    int      `json:"voteCount,omitempty"`
	SeasonCount  int      `json:"seasonCount,omitempty"`  // series only
	EpisodeCount int      `json:"episodeCount,omitempty"` // series only
}

// Key returns a stable identity combining media type and catalogue ID.
func (c CatalogueItem) Key() string {
	return c.MediaType + ":" + strconv.FormatInt(c.ID, 10)
}

// EpisodeInfo is one catalogue episode within a season.
type EpisodeInfo struct {
	EpisodeNumber int    `json:"episodeNumber"`
	Name          string `json:"name,omitempty"`
	AirDate       string `json:"airDate,omitempty"`
}

// SeasonDetail is the catalogue's episode list for one season.
type SeasonDetail struct {
	SeasonNumber int           `json:"seasonNumber"`
	Name         string        `json:"name,omitempty"`
	AirDate      string        `json:"airDate,omitempty"`
	Episodes     []EpisodeInfo `json:"episodes"`
}
