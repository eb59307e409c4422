package geocode

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/diewo77/kunder-tools/internal/reconcile"
)

//go:embed places.yaml
var placesYAML []byte

// Place is a curated known-good coordinate for a place name.
type Place struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// PlaceTable looks up places by normalized name.
type PlaceTable struct {
	byName map[string]Place
}

// DefaultPlaces loads the embedded place table.
func DefaultPlaces() (*PlaceTable, error) {
	return ParsePlaces(placesYAML)
}

// ParsePlaces builds a table from a YAML list of places.
func ParsePlaces(data []byte) (*PlaceTable, error) {
	var places []Place
	if err := yaml.Unmarshal(data, &places); err != nil {
		return nil, fmt.Errorf("parse places: %w", err)
	}
	t := &PlaceTable{byName: make(map[string]Place, len(places))}
	for _, p := range places {
		key := reconcile.Normalize(p.Name)
		if key == "" {
			return nil, fmt.Errorf("parse places: entry without name")
		}
		if _, dup := t.byName[key]; dup {
			return nil, fmt.Errorf("parse places: duplicate entry %q", p.Name)
		}
		t.byName[key] = p
	}
	return t, nil
}

// Lookup implements reconcile.PlaceLookup.
func (t *PlaceTable) Lookup(place string) (float64, float64, bool) {
	p, ok := t.byName[reconcile.Normalize(place)]
	return p.Lat, p.Lng, ok
}

// Len returns the number of places.
func (t *PlaceTable) Len() int { return len(t.byName) }
