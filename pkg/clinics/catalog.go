// Package clinics is the directory of nearby dental clinics the patient
// app suggests after a screening.
package clinics

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

type Clinic struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	DistanceKM float64 `yaml:"distanceKm" json:"distanceKm"`
	Rating     float64 `yaml:"rating" json:"rating"`
	Open       bool    `yaml:"open" json:"open"`
	Address    string  `yaml:"address" json:"address"`
	Phone      string  `yaml:"phone" json:"phone"`
}

type Catalog struct {
	Clinics []Clinic `yaml:"clinics" json:"clinics"`
}

// Load reads a YAML catalog. An empty path yields DefaultCatalog; a read
// failure returns DefaultCatalog alongside the error.
func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Clinics) == 0 {
		return Catalog{}, fmt.Errorf("clinic catalog empty")
	}
	cat.sortByDistance()
	return cat, nil
}

func (c *Catalog) sortByDistance() {
	sort.SliceStable(c.Clinics, func(i, j int) bool {
		return c.Clinics[i].DistanceKM < c.Clinics[j].DistanceKM
	})
}

// Open returns the clinics currently open, nearest first.
func (c Catalog) Open() []Clinic {
	out := make([]Clinic, 0, len(c.Clinics))
	for _, clinic := range c.Clinics {
		if clinic.Open {
			out = append(out, clinic)
		}
	}
	return out
}

func (c Catalog) Lookup(id string) (Clinic, bool) {
	for _, clinic := range c.Clinics {
		if clinic.ID == id {
			return clinic, true
		}
	}
	return Clinic{}, false
}

func DirectionsURL(address string) string {
	return "https://maps.google.com/?q=" + url.PathEscape(address)
}

func CallURL(phone string) string {
	return "tel:" + phone
}

func DefaultCatalog() Catalog {
	return Catalog{Clinics: []Clinic{
		{ID: "1", Name: "Downtown Dental Care", DistanceKM: 0.3, Rating: 4.8, Open: true, Address: "123 King St W, Toronto", Phone: "+1 (416) 555-0101"},
		{ID: "2", Name: "Smile Studio Toronto", DistanceKM: 0.7, Rating: 4.6, Open: true, Address: "456 Queen St E, Toronto", Phone: "+1 (416) 555-0102"},
		{ID: "3", Name: "Bay Street Dentistry", DistanceKM: 1.1, Rating: 4.9, Open: false, Address: "789 Bay St, Toronto", Phone: "+1 (416) 555-0103"},
		{ID: "4", Name: "Harbourfront Dental", DistanceKM: 1.4, Rating: 4.5, Open: true, Address: "321 Lake Shore Blvd, Toronto", Phone: "+1 (416) 555-0104"},
	}}
}
