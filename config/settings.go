package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Metadata MetadataSettings `json:"metadata"`
	Cache    CacheSettings    `json:"cache"`
	Storage  StorageSettings  `json:"storage"`
	Home     HomeSettings     `json:"home"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// MetadataSettings configures the external catalogue (TMDB).
type MetadataSettings struct {
	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`
	Region     string `json:"region"`
}

type CacheSettings struct {
	MetadataTTLHours int `json:"metadataTtlHours"`
}

// StorageSettings points at the directory holding the JSON stores.
type StorageSettings struct {
	Directory string `json:"directory"`
}

// HomeSettings tunes the derived home-screen pools.
type HomeSettings struct {
	HeroSlots          int `json:"heroSlots"`
	MaxRecommendations int `json:"maxRecommendations"`
}

// LogConfig represents file logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first run.
func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 8484},
		Metadata: MetadataSettings{Language: "en-GB", Region: "GB"},
		Cache:    CacheSettings{MetadataTTLHours: 6},
		Storage:  StorageSettings{Directory: "data"},
		Home:     HomeSettings{HeroSlots: 5, MaxRecommendations: 20},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    25,
			MaxAge:     14,
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings at a fixed path.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Load reads settings from disk, creating the file with defaults when
// missing. Fields absent from an existing file fall back to defaults so
// older settings files keep working.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}
	applyDefaults(&s)
	return s, nil
}

// Save writes settings atomically via a temp file and rename.
func (m *Manager) Save(s Settings) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, m.path)
}

func applyDefaults(s *Settings) {
	d := DefaultSettings()
	if s.Server.Host == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if s.Metadata.Language == "" {
		s.Metadata.Language = d.Metadata.Language
	}
	if s.Metadata.Region == "" {
		s.Metadata.Region = d.Metadata.Region
	}
	if s.Cache.MetadataTTLHours <= 0 {
		s.Cache.MetadataTTLHours = d.Cache.MetadataTTLHours
	}
	if s.Storage.Directory == "" {
		s.Storage.Directory = d.Storage.Directory
	}
	if s.Home.HeroSlots <= 0 {
		s.Home.HeroSlots = d.Home.HeroSlots
	}
	if s.Home.MaxRecommendations <= 0 {
		s.Home.MaxRecommendations = d.Home.MaxRecommendations
	}
}
