package clinics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogOpen(t *testing.T) {
	open := DefaultCatalog().Open()
	if len(open) != 3 {
		t.Fatalf("expected 3 open clinics, got %d", len(open))
	}
	for _, c := range open {
		if c.Name == "Bay Street Dentistry" {
			t.Fatal("closed clinic returned as open")
		}
	}
}

func TestDirectionsURLEncodesAddress(t *testing.T) {
	got := DirectionsURL("123 King St W, Toronto")
	want := "https://maps.google.com/?q=123%20King%20St%20W%2C%20Toronto"
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
	if CallURL("+1 (416) 555-0101") != "tel:+1 (416) 555-0101" {
		t.Fatal("unexpected call url")
	}
}

func TestLoadSortsByDistance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinics.yaml")
	content := []byte(`clinics:
  - id: far
    name: Far Clinic
    distanceKm: 5.2
    open: true
  - id: near
    name: Near Clinic
    distanceKm: 0.4
    open: false
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.Clinics[0].ID != "near" {
		t.Fatalf("expected nearest first, got %s", cat.Clinics[0].ID)
	}
	if _, ok := cat.Lookup("far"); !ok {
		t.Fatal("expected lookup to find far")
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	cat, err := Load("")
	if err != nil || len(cat.Clinics) != 4 {
		t.Fatalf("expected default catalog, got %d clinics err=%v", len(cat.Clinics), err)
	}

	cat, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected read error")
	}
	if len(cat.Clinics) != 4 {
		t.Fatal("expected default catalog alongside the error")
	}
}
