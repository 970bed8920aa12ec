package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kinolog/models"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

// Service is the read-only profile directory. Profile management lives
// outside this backend; the directory only guarantees a default profile
// exists so a fresh install is usable immediately.
type Service struct {
	mu       sync.RWMutex
	path     string
	profiles map[string]models.Profile
}

// NewService creates a profile directory storing data inside the provided
// directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profiles dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "profiles.json"),
		profiles: make(map[string]models.Profile),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	if err := svc.ensureDefaultProfile(); err != nil {
		return nil, err
	}

	return svc, nil
}

// List returns all profiles sorted by creation time, then name.
func (s *Service) List() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].Name < profiles[j].Name
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})

	return profiles
}

// Get returns the profile with the given ID if present.
func (s *Service) Get(id string) (models.Profile, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Profile{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	return profile, ok
}

// Exists reports whether a profile with the provided ID is registered.
func (s *Service) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *Service) ensureDefaultProfile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.profiles) > 0 {
		return nil
	}

	profile := models.Profile{
		ID:        uuid.NewString(),
		Name:      models.DefaultProfileName,
		CreatedAt: time.Now().UTC(),
	}
	s.profiles[profile.ID] = profile

	return s.saveLocked()
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open profiles: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read profiles: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var profiles []models.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("decode profiles: %w", err)
	}

	for _, p := range profiles {
		if strings.TrimSpace(p.ID) == "" {
			continue
		}
		s.profiles[p.ID] = p
	}

	return nil
}

func (s *Service) saveLocked() error {
	profiles := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].Name < profiles[j].Name
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create profiles temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profiles); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode profiles: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync profiles: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close profiles temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace profiles file: %w", err)
	}

	return nil
}
