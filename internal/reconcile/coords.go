package reconcile

import (
	"fmt"

	"github.com/diewo77/kunder-tools/internal/models"
)

// Bounds is a closed latitude/longitude rectangle.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// NorthernRegion covers the service area of the northern tenant.
var NorthernRegion = Bounds{MinLat: 66, MaxLat: 72, MinLng: 10, MaxLng: 32}

// Contains reports whether the point lies inside b, edges included.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
}

// IsPlausible reports whether lat/lng lies within bounds.
func IsPlausible(lat, lng float64, bounds Bounds) bool {
	return bounds.Contains(lat, lng)
}

// Misplaced reports whether c has coordinates outside bounds. Records without
// coordinates are not misplaced.
func Misplaced(c models.Customer, bounds Bounds) bool {
	if !c.HasCoordinates() {
		return false
	}
	return !bounds.Contains(*c.Latitude, *c.Longitude)
}

// PlaceLookup resolves a place name to curated coordinates.
type PlaceLookup interface {
	Lookup(place string) (lat, lng float64, ok bool)
}

// LookupCorrection finds curated coordinates for c by city name.
func LookupCorrection(c models.Customer, places PlaceLookup) (lat, lng float64, ok bool) {
	if places == nil || blank(c.City) {
		return 0, 0, false
	}
	return places.Lookup(c.City)
}

// CoordinateDiff returns the update that moves c to lat/lng with the given quality.
// An empty quality leaves the tag to ClassifyQuality.
func CoordinateDiff(c models.Customer, lat, lng float64, quality models.GeocodeQuality) Diff {
	moved := c
	moved.Latitude, moved.Longitude = &lat, &lng
	if quality == QualityNull {
		quality = ClassifyQuality(moved)
	}
	d := Diff{}
	if c.Latitude == nil || *c.Latitude != lat {
		d[models.ColLatitude] = lat
	}
	if c.Longitude == nil || *c.Longitude != lng {
		d[models.ColLongitude] = lng
	}
	if c.GeocodeQuality == nil || *c.GeocodeQuality != quality {
		d[models.ColGeocodeQuality] = string(quality)
	}
	return d
}
