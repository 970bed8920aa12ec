package models

// LibraryMovie couples a tracking record with the catalogue presentation
// metadata the library screen needs. Metadata fields stay empty when the
// catalogue is unavailable; classification still works without them.
type LibraryMovie struct {
	MovieTracking
	Title       string `json:"title,omitempty"`
	PosterURL   string `json:"posterUrl,omitempty"`
	BackdropURL string `json:"backdropUrl,omitempty"`
}

// LibraryShow couples a show tracking record with catalogue metadata.
type LibraryShow struct {
	ShowTracking
	Title       string `json:"title,omitempty"`
	PosterURL   string `json:"posterUrl,omitempty"`
	BackdropURL string `json:"backdropUrl,omitempty"`
}

// Library is the filtered view of everything a profile tracks.
type Library struct {
	Movies []LibraryMovie `json:"movies"`
	Shows  []LibraryShow  `json:"shows"`
}
