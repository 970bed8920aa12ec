package catalogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	gocache "github.com/patrickmn/go-cache"

	"kinolog/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// Optimised image sizes instead of "original" to keep payloads small.
	// Posters: w500 is plenty for cards; backdrops: w1280 covers 1080p.
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"

	requestTimeout = 15 * time.Second
	retryAttempts  = 3
	retryBaseDelay = 300 * time.Millisecond
)

var (
	ErrNotConfigured = errors.New("tmdb api key not configured")
	ErrEmptyQuery    = errors.New("search query cannot be empty")
	ErrNotFound      = errors.New("title not found in catalogue")

	// errTransient marks failures worth retrying (network, 429, 5xx).
	errTransient = errors.New("transient tmdb error")
)

// Service is a read-only TMDB client. Successful lookups are cached with a
// TTL and transient failures are retried with backoff; callers decide
// whether a final error degrades to an empty pool.
type Service struct {
	apiKey   string
	language string
	region   string
	baseURL  string
	httpc    *http.Client
	cache    *gocache.Cache

	// Request throttling; TMDB has generous rate limits.
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// NewService creates a catalogue client. ttl bounds how long responses are
// served from cache.
func NewService(apiKey, language, region string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Service{
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		region:      region,
		baseURL:     tmdbBaseURL,
		httpc:       &http.Client{Timeout: requestTimeout},
		cache:       gocache.New(ttl, 30*time.Minute),
		minInterval: 20 * time.Millisecond,
	}
}

// SetBaseURL overrides the TMDB endpoint. Used by tests.
func (s *Service) SetBaseURL(u string) {
	s.baseURL = strings.TrimRight(u, "/")
}

// ClearCache drops all cached responses.
func (s *Service) ClearCache() {
	s.cache.Flush()
}

func (s *Service) isConfigured() bool {
	return s != nil && s.apiKey != ""
}

func (s *Service) endpoint(p string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", s.apiKey)
	if s.language != "" && !params.Has("language") {
		params.Set("language", s.language)
	}
	return s.baseURL + p + "?" + params.Encode()
}

func (s *Service) throttle() {
	s.throttleMu.Lock()
	if since := time.Since(s.lastRequest); since < s.minInterval {
		time.Sleep(s.minInterval - since)
	}
	s.lastRequest = time.Now()
	s.throttleMu.Unlock()
}

// doGET performs an HTTP GET with throttling and bounded retry with
// exponential backoff on 429/5xx/network failures.
func (s *Service) doGET(ctx context.Context, endpoint string, v any) error {
	if !s.isConfigured() {
		return ErrNotConfigured
	}

	return retry.Do(
		func() error {
			s.throttle()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := s.httpc.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", errTransient, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("%w: %s", errTransient, resp.Status)
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(ErrNotFound)
			case resp.StatusCode >= 400:
				return retry.Unrecoverable(fmt.Errorf("tmdb request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode tmdb response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errTransient) }),
		retry.LastErrorOnly(true),
	)
}

func imageURL(size, path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return tmdbImageBaseURL + "/" + size + path
}

// --- list responses (search, similar, upcoming) ---

type tmdbListResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
}

type tmdbListResponse struct {
	Results []tmdbListResult `json:"results"`
}

func (r tmdbListResult) toItem(mediaType string) models.CatalogueItem {
	title := r.Title
	if title == "" {
		title = r.Name
	}
	release := r.ReleaseDate
	if release == "" {
		release = r.FirstAirDate
	}
	return models.CatalogueItem{
		ID:          r.ID,
		MediaType:   mediaType,
		Title:       title,
		Overview:    r.Overview,
		PosterURL:   imageURL(tmdbPosterSize, r.PosterPath),
		BackdropURL: imageURL(tmdbBackdropSize, r.BackdropPath),
		ReleaseDate: release,
		VoteAverage: r.VoteAverage,
		VoteCount:   r.VoteCount,
	}
}

func (s *Service) listItems(ctx context.Context, cacheKey, path string, params url.Values, mediaType string) ([]models.CatalogueItem, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]models.CatalogueItem), nil
	}

	var resp tmdbListResponse
	if err := s.doGET(ctx, s.endpoint(path, params), &resp); err != nil {
		return nil, err
	}

	items := make([]models.CatalogueItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, r.toItem(mediaType))
	}

	s.cache.Set(cacheKey, items, gocache.DefaultExpiration)
	return items, nil
}

// Search looks titles up by name. mediaType selects movies or series and
// defaults to movies.
func (s *Service) Search(ctx context.Context, query, mediaType string) ([]models.CatalogueItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	path := "/search/movie"
	mt := models.MediaTypeMovie
	if mediaType == models.MediaTypeSeries {
		path = "/search/tv"
		mt = models.MediaTypeSeries
	}

	cacheKey := "search:" + mt + ":" + strings.ToLower(query)
	return s.listItems(ctx, cacheKey, path, url.Values{"query": {query}}, mt)
}

// SimilarMovies returns films similar to the given one, in catalogue order.
func (s *Service) SimilarMovies(ctx context.Context, id int64) ([]models.CatalogueItem, error) {
	key := "similar:movie:" + strconv.FormatInt(id, 10)
	return s.listItems(ctx, key, fmt.Sprintf("/movie/%d/similar", id), nil, models.MediaTypeMovie)
}

// SimilarSeries returns shows similar to the given one, in catalogue order.
func (s *Service) SimilarSeries(ctx context.Context, id int64) ([]models.CatalogueItem, error) {
	key := "similar:series:" + strconv.FormatInt(id, 10)
	return s.listItems(ctx, key, fmt.Sprintf("/tv/%d/similar", id), nil, models.MediaTypeSeries)
}

// UpcomingMovies returns upcoming theatrical releases for the configured
// region.
func (s *Service) UpcomingMovies(ctx context.Context) ([]models.CatalogueItem, error) {
	params := url.Values{}
	if s.region != "" {
		params.Set("region", s.region)
	}
	return s.listItems(ctx, "upcoming:movies", "/movie/upcoming", params, models.MediaTypeMovie)
}

// UpcomingSeries returns shows with a future first air date, most popular
// first. TMDB has no upcoming endpoint for TV so this goes through
// discover.
func (s *Service) UpcomingSeries(ctx context.Context) ([]models.CatalogueItem, error) {
	params := url.Values{}
	params.Set("first_air_date.gte", time.Now().UTC().Format("2006-01-02"))
	params.Set("sort_by", "popularity.desc")
	return s.listItems(ctx, "upcoming:series", "/discover/tv", params, models.MediaTypeSeries)
}

// --- detail responses ---

type tmdbGenre struct {
	Name string `json:"name"`
}

type tmdbMovieDetail struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Overview     string      `json:"overview"`
	PosterPath   string      `json:"poster_path"`
	BackdropPath string      `json:"backdrop_path"`
	ReleaseDate  string      `json:"release_date"`
	Genres       []tmdbGenre `json:"genres"`
	VoteAverage  float64     `json:"vote_average"`
	VoteCount    int         `json:"vote_count"`
}

type tmdbSeriesDetail struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	Overview         string      `json:"overview"`
	PosterPath       string      `json:"poster_path"`
	BackdropPath     string      `json:"backdrop_path"`
	FirstAirDate     string      `json:"first_air_date"`
	Genres           []tmdbGenre `json:"genres"`
	VoteAverage      float64     `json:"vote_average"`
	VoteCount        int         `json:"vote_count"`
	NumberOfSeasons  int         `json:"number_of_seasons"`
	NumberOfEpisodes int         `json:"number_of_episodes"`
}

type tmdbSeasonDetail struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	AirDate      string `json:"air_date"`
	Episodes     []struct {
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
		AirDate       string `json:"air_date"`
	} `json:"episodes"`
}

func genreNames(genres []tmdbGenre) []string {
	if len(genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return names
}

// MovieDetail fetches full metadata for one film.
func (s *Service) MovieDetail(ctx context.Context, id int64) (*models.CatalogueItem, error) {
	cacheKey := "movie:" + strconv.FormatInt(id, 10)
	if cached, ok := s.cache.Get(cacheKey); ok {
		item := cached.(models.CatalogueItem)
		return &item, nil
	}

	var detail tmdbMovieDetail
	if err := s.doGET(ctx, s.endpoint(fmt.Sprintf("/movie/%d", id), nil), &detail); err != nil {
		return nil, err
	}

	item := models.CatalogueItem{
		ID:          detail.ID,
		MediaType:   models.MediaTypeMovie,
		Title:       detail.Title,
		Overview:    detail.Overview,
		PosterURL:   imageURL(tmdbPosterSize, detail.PosterPath),
		BackdropURL: imageURL(tmdbBackdropSize, detail.BackdropPath),
		ReleaseDate: detail.ReleaseDate,
		Genres:      genreNames(detail.Genres),
		VoteAverage: detail.VoteAverage,
		VoteCount:   detail.VoteCount,
	}

	s.cache.Set(cacheKey, item, gocache.DefaultExpiration)
	return &item, nil
}

// SeriesDetail fetches full metadata for one show, including season and
// episode counts.
func (s *Service) SeriesDetail(ctx context.Context, id int64) (*models.CatalogueItem, error) {
	cacheKey := "series:" + strconv.FormatInt(id, 10)
	if cached, ok := s.cache.Get(cacheKey); ok {
		item := cached.(models.CatalogueItem)
		return &item, nil
	}

	var detail tmdbSeriesDetail
	if err := s.doGET(ctx, s.endpoint(fmt.Sprintf("/tv/%d", id), nil), &detail); err != nil {
		return nil, err
	}

	item := models.CatalogueItem{
		ID:           detail.ID,
		MediaType:    models.MediaTypeSeries,
		Title:        detail.Name,
		Overview:     detail.Overview,
		PosterURL:    imageURL(tmdbPosterSize, detail.PosterPath),
		BackdropURL:  imageURL(tmdbBackdropSize, detail.BackdropPath),
		ReleaseDate:  detail.FirstAirDate,
		Genres:       genreNames(detail.Genres),
		VoteAverage:  detail.VoteAverage,
		VoteCount:    detail.VoteCount,
		SeasonCount:  detail.NumberOfSeasons,
		EpisodeCount: detail.NumberOfEpisodes,
	}

	s.cache.Set(cacheKey, item, gocache.DefaultExpiration)
	return &item, nil
}

// SeasonDetail fetches the episode list for one season of a show.
func (s *Service) SeasonDetail(ctx context.Context, showID int64, season int) (*models.SeasonDetail, error) {
	cacheKey := "season:" + strconv.FormatInt(showID, 10) + ":" + strconv.Itoa(season)
	if cached, ok := s.cache.Get(cacheKey); ok {
		detail := cached.(models.SeasonDetail)
		return &detail, nil
	}

	var raw tmdbSeasonDetail
	if err := s.doGET(ctx, s.endpoint(fmt.Sprintf("/tv/%d/season/%d", showID, season), nil), &raw); err != nil {
		return nil, err
	}

	detail := models.SeasonDetail{
		SeasonNumber: raw.SeasonNumber,
		Name:         raw.Name,
		AirDate:      raw.AirDate,
		Episodes:     make([]models.EpisodeInfo, 0, len(raw.Episodes)),
	}
	for _, ep := range raw.Episodes {
		detail.Episodes = append(detail.Episodes, models.EpisodeInfo{
			EpisodeNumber: ep.EpisodeNumber,
			Name:          ep.Name,
			AirDate:       ep.AirDate,
		})
	}

	s.cache.Set(cacheKey, detail, gocache.DefaultExpiration)
	return &detail, nil
}
