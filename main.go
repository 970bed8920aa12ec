package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"kinolog/api"
	"kinolog/config"
	"kinolog/handlers"
	"kinolog/services/catalogue"
	"kinolog/services/hero"
	"kinolog/services/library"
	"kinolog/services/profiles"
	"kinolog/services/recommend"
	"kinolog/services/tracking"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🎬 kinolog backend starting...")

	configPath := os.Getenv("KINOLOG_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	setupLogging(settings.Log)

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	if strings.TrimSpace(settings.Metadata.TMDBAPIKey) == "" {
		fmt.Println("⚠️  No TMDB API key configured; catalogue lookups will be unavailable.")
	}

	catalogueService := catalogue.NewService(
		settings.Metadata.TMDBAPIKey,
		settings.Metadata.Language,
		settings.Metadata.Region,
		time.Duration(settings.Cache.MetadataTTLHours)*time.Hour,
	)

	profileService, err := profiles.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to initialise profiles: %v", err)
	}

	trackingService, err := tracking.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to initialise tracking: %v", err)
	}
	trackingService.SetCatalogue(catalogueService)

	libraryService := library.NewService(trackingService, catalogueService)
	recommendService := recommend.NewService(trackingService, catalogueService, settings.Home.MaxRecommendations)
	heroService := hero.NewService(trackingService, catalogueService, settings.Home.HeroSlots)

	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewProfilesHandler(profileService),
		handlers.NewMoviesHandler(trackingService, libraryService, profileService),
		handlers.NewShowsHandler(trackingService, libraryService, catalogueService, profileService),
		handlers.NewLibraryHandler(libraryService, profileService),
		handlers.NewHomeHandler(heroService, recommendService, profileService),
		handlers.NewCatalogueHandler(catalogueService),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// setupLogging points both the standard logger and slog at stdout, plus a
// rotating file when one is configured.
func setupLogging(cfg config.LogConfig) {
	var out io.Writer = os.Stdout

	if cfg.File != "" {
		logDir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			})
			log.Printf("Logging to file: %s", cfg.File)
		}
	}

	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}
