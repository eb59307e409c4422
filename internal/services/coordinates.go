package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/kunder-tools/internal/geocode"
	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/reconcile"
	"github.com/diewo77/kunder-tools/internal/store"
)

// QueryGeocoder resolves a free-text query to a point.
type QueryGeocoder interface {
	Geocode(ctx context.Context, query string) (geocode.Result, error)
}

// Locator resolves a customer to a point, falling back to coarser queries.
type Locator interface {
	Locate(ctx context.Context, c models.Customer) (geocode.Result, error)
}

// CoordinateFixer holds the sources used to correct misplaced coordinates.
type CoordinateFixer struct {
	Bounds reconcile.Bounds
	// Places is consulted first; its points are tagged area.
	Places reconcile.PlaceLookup
	// Geocoder is asked for the full address when Places has no entry. Optional.
	Geocoder QueryGeocoder
}

// FixCoordinates moves customers whose coordinates fall outside the bounds. A
// correction that is itself outside the bounds counts as failed.
func (r *Runner) FixCoordinates(ctx context.Context, opts Options, fx CoordinateFixer) (*Report, error) {
	return r.run(ctx, opts, job{
		name:   "fix-coordinates",
		filter: store.Filter{HasCoordinates: true},
		plan: func(ctx context.Context, c models.Customer) (reconcile.Diff, error) {
			if !reconcile.Misplaced(c, fx.Bounds) {
				return nil, nil
			}
			log := r.recordLog(c)
			log.Debug().
				Float64("lat", *c.Latitude).Float64("lng", *c.Longitude).
				Stringer("bounds", fx.Bounds).
				Msg("coordinates out of bounds")

			if lat, lng, ok := reconcile.LookupCorrection(c, fx.Places); ok {
				return checkedDiff(c, lat, lng, models.QualityArea, fx.Bounds)
			}
			if fx.Geocoder == nil {
				return nil, skipf("no curated place for %q", c.City)
			}
			query := c.FullAddress()
			if query == "" {
				return nil, skipf("no address")
			}
			res, err := fx.Geocoder.Geocode(ctx, query)
			if errors.Is(err, geocode.ErrNotFound) {
				return nil, skipf("no correction found for %q", query)
			}
			if err != nil {
				return nil, err
			}
			return checkedDiff(c, res.Lat, res.Lng, qualityFor(res), fx.Bounds)
		},
	})
}

func checkedDiff(c models.Customer, lat, lng float64, q models.GeocodeQuality, b reconcile.Bounds) (reconcile.Diff, error) {
	if !reconcile.IsPlausible(lat, lng, b) {
		return nil, fmt.Errorf("correction %.5f,%.5f is outside %s", lat, lng, b)
	}
	return reconcile.CoordinateDiff(c, lat, lng, q), nil
}

// qualityFor tags coarse results as area and leaves the rest to classification.
func qualityFor(res geocode.Result) models.GeocodeQuality {
	if res.Coarse {
		return models.QualityArea
	}
	return reconcile.QualityNull
}

// GeocodeMissing looks up customers without coordinates. Results outside bounds, when
// bounds are given, are skipped rather than stored.
func (r *Runner) GeocodeMissing(ctx context.Context, opts Options, loc Locator, bounds *reconcile.Bounds) (*Report, error) {
	return r.run(ctx, opts, job{
		name:   "geocode",
		filter: store.Filter{MissingCoordinates: true},
		plan: func(ctx context.Context, c models.Customer) (reconcile.Diff, error) {
			if geocode.FullQuery(c) == "" && geocode.CoarseQuery(c) == "" {
				return nil, skipf("no address")
			}
			res, err := loc.Locate(ctx, c)
			if errors.Is(err, geocode.ErrNotFound) {
				return nil, skipf("not found")
			}
			if err != nil {
				return nil, err
			}
			if bounds != nil && !bounds.Contains(res.Lat, res.Lng) {
				return nil, skipf("%s result %.5f,%.5f is outside %s", res.Source, res.Lat, res.Lng, bounds)
			}
			log := r.recordLog(c)
			log.Debug().Str("source", res.Source).Bool("coarse", res.Coarse).Msg("geocoded")
			return reconcile.CoordinateDiff(c, res.Lat, res.Lng, qualityFor(res)), nil
		},
	})
}
