package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"kinolog/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	profilesHandler *handlers.ProfilesHandler,
	moviesHandler *handlers.MoviesHandler,
	showsHandler *handlers.ShowsHandler,
	libraryHandler *handlers.LibraryHandler,
	homeHandler *handlers.HomeHandler,
	catalogueHandler *handlers.CatalogueHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/profiles", profilesHandler.List).Methods(http.MethodGet)

	profile := api.PathPrefix("/profiles/{profileID}").Subrouter()

	// Static movie paths register before the {id} pattern so "stats"
	// never parses as a title ID.
	movies := profile.PathPrefix("/movies").Subrouter()
	movies.HandleFunc("", moviesHandler.List).Methods(http.MethodGet)
	movies.HandleFunc("/stats", moviesHandler.Stats).Methods(http.MethodGet)
	movies.HandleFunc("/{id}", moviesHandler.Get).Methods(http.MethodGet)
	movies.HandleFunc("/{id}", moviesHandler.Create).Methods(http.MethodPost)
	movies.HandleFunc("/{id}", moviesHandler.Update).Methods(http.MethodPatch)
	movies.HandleFunc("/{id}", moviesHandler.Delete).Methods(http.MethodDelete)

	shows := profile.PathPrefix("/shows").Subrouter()
	shows.HandleFunc("", showsHandler.List).Methods(http.MethodGet)
	shows.HandleFunc("/{id}", showsHandler.Get).Methods(http.MethodGet)
	shows.HandleFunc("/{id}", showsHandler.Create).Methods(http.MethodPost)
	shows.HandleFunc("/{id}", showsHandler.Update).Methods(http.MethodPatch)
	shows.HandleFunc("/{id}", showsHandler.Delete).Methods(http.MethodDelete)
	shows.HandleFunc("/{id}/episodes", showsHandler.ListEpisodes).Methods(http.MethodGet)
	shows.HandleFunc("/{id}/episodes", showsHandler.MarkEpisodes).Methods(http.MethodPost)
	shows.HandleFunc("/{id}/seasons/{season}", showsHandler.MarkSeason).Methods(http.MethodPost)
	shows.HandleFunc("/{id}/progress", showsHandler.Progress).Methods(http.MethodGet)

	profile.HandleFunc("/library", libraryHandler.List).Methods(http.MethodGet)
	profile.HandleFunc("/home/hero", homeHandler.HeroSlots).Methods(http.MethodGet)
	profile.HandleFunc("/home/recommendations", homeHandler.Recommendations).Methods(http.MethodGet)

	cat := api.PathPrefix("/catalogue").Subrouter()
	cat.HandleFunc("/search", catalogueHandler.Search).Methods(http.MethodGet)
	cat.HandleFunc("/movies/upcoming", catalogueHandler.UpcomingMovies).Methods(http.MethodGet)
	cat.HandleFunc("/movies/{id}", catalogueHandler.MovieDetail).Methods(http.MethodGet)
	cat.HandleFunc("/movies/{id}/similar", catalogueHandler.SimilarMovies).Methods(http.MethodGet)
	cat.HandleFunc("/series/upcoming", catalogueHandler.UpcomingSeries).Methods(http.MethodGet)
	cat.HandleFunc("/series/{id}", catalogueHandler.SeriesDetail).Methods(http.MethodGet)
	cat.HandleFunc("/series/{id}/similar", catalogueHandler.SimilarSeries).Methods(http.MethodGet)
	cat.HandleFunc("/series/{id}/season/{season}", catalogueHandler.SeasonDetail).Methods(http.MethodGet)
}
