package profiles_test

import (
	"errors"
	"testing"

	"kinolog/models"
	"kinolog/services/profiles"
)

func TestNewServiceRequiresStorageDir(t *testing.T) {
	if _, err := profiles.NewService(""); !errors.Is(err, profiles.ErrStorageDirRequired) {
		t.Fatalf("expected ErrStorageDirRequired, got %v", err)
	}
}

func TestDefaultProfileBootstrap(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	list := svc.List()
	if len(list) != 1 {
		t.Fatalf("expected one bootstrapped profile, got %d", len(list))
	}
	if list[0].Name != models.DefaultProfileName {
		t.Errorf("default profile name = %q, want %q", list[0].Name, models.DefaultProfileName)
	}
	if list[0].ID == "" {
		t.Error("default profile must get an ID")
	}

	if !svc.Exists(list[0].ID) {
		t.Error("Exists must report the default profile")
	}
	if svc.Exists("nope") {
		t.Error("Exists must reject unknown IDs")
	}
}

func TestDefaultProfileStableAcrossReloads(t *testing.T) {
	dir := t.TempDir()

	first, err := profiles.NewService(dir)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	originalID := first.List()[0].ID

	second, err := profiles.NewService(dir)
	if err != nil {
		t.Fatalf("NewService reload: %v", err)
	}

	list := second.List()
	if len(list) != 1 {
		t.Fatalf("reload must not create another profile, got %d", len(list))
	}
	if list[0].ID != originalID {
		t.Errorf("default profile ID changed across reloads: %s != %s", list[0].ID, originalID)
	}
}

func TestGetTrimsAndValidates(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, ok := svc.Get("   "); ok {
		t.Error("blank ID must not resolve")
	}

	id := svc.List()[0].ID
	profile, ok := svc.Get(" " + id + " ")
	if !ok {
		t.Fatal("Get must trim whitespace around the ID")
	}
	if profile.ID != id {
		t.Errorf("Get returned wrong profile: %s", profile.ID)
	}
}
