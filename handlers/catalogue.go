package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"kinolog/models"
	"kinolog/services/catalogue"
)

type catalogueService interface {
	Search(ctx context.Context, query, mediaType string) ([]models.CatalogueItem, error)
	UpcomingMovies(ctx context.Context) ([]models.CatalogueItem, error)
	UpcomingSeries(ctx context.Context) ([]models.CatalogueItem, error)
	MovieDetail(ctx context.Context, id int64) (*models.CatalogueItem, error)
	SeriesDetail(ctx context.Context, id int64) (*models.CatalogueItem, error)
	SeasonDetail(ctx context.Context, showID int64, season int) (*models.SeasonDetail, error)
	SimilarMovies(ctx context.Context, id int64) ([]models.CatalogueItem, error)
	SimilarSeries(ctx context.Context, id int64) ([]models.CatalogueItem, error)
}

var _ catalogueService = (*catalogue.Service)(nil)

// CatalogueHandler proxies read-only catalogue lookups so the frontend
// never talks to TMDB directly or holds the API key.
type CatalogueHandler struct {
	Catalogue catalogueService
}

func NewCatalogueHandler(catalogueSvc catalogueService) *CatalogueHandler {
	return &CatalogueHandler{Catalogue: catalogueSvc}
}

func (h *CatalogueHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	mediaType := r.URL.Query().Get("type")

	items, err := h.Catalogue.Search(r.Context(), query, mediaType)
	if err != nil {
		http.Error(w, err.Error(), catalogueStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *CatalogueHandler) UpcomingMovies(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.Catalogue.UpcomingMovies)
}

func (h *CatalogueHandler) UpcomingSeries(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.Catalogue.UpcomingSeries)
}

func (h *CatalogueHandler) MovieDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.Catalogue.MovieDetail(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), catalogueStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *CatalogueHandler) SeriesDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.Catalogue.SeriesDetail(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), catalogueStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *CatalogueHandler) SeasonDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}

	vars := mux.Vars(r)
	season, err := strconv.Atoi(strings.TrimSpace(vars["season"]))
	if err != nil || season < 0 {
		http.Error(w, "season must be a non-negative integer", http.StatusBadRequest)
		return
	}

	detail, err := h.Catalogue.SeasonDetail(r.Context(), id, season)
	if err != nil {
		http.Error(w, err.Error(), catalogueStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

func (h *CatalogueHandler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}
	h.writeList(w, r, func(ctx context.Context) ([]models.CatalogueItem, error) {
		return h.Catalogue.SimilarMovies(ctx, id)
	})
}

func (h *CatalogueHandler) SimilarSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseTitleID(w, r, "id")
	if !ok {
		return
	}
	h.writeList(w, r, func(ctx context.Context) ([]models.CatalogueItem, error) {
		return h.Catalogue.SimilarSeries(ctx, id)
	})
}

func (h *CatalogueHandler) writeList(w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]models.CatalogueItem, error)) {
	items, err := fetch(r.Context())
	if err != nil {
		http.Error(w, err.Error(), catalogueStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func catalogueStatus(err error) int {
	switch {
	case errors.Is(err, catalogue.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, catalogue.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalogue.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
