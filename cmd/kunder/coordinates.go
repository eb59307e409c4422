package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diewo77/kunder-tools/internal/geocode"
	"github.com/diewo77/kunder-tools/internal/reconcile"
	"github.com/diewo77/kunder-tools/internal/services"
)

func newFixCoordinatesCommand(app *App) *cobra.Command {
	return newDataCommand(app, "fix-coordinates", "Move coordinates outside the service area to a curated or geocoded point", "fix",
		func(ctx context.Context, r *services.Runner, opts services.Options) (*services.Report, error) {
			places, err := geocode.DefaultPlaces()
			if err != nil {
				return nil, err
			}
			chain, err := app.Geocoder()
			if err != nil {
				return nil, err
			}
			app.log.Debug().Int("places", places.Len()).Str("geocoder", chain.Name()).Msg("correction sources")
			return r.FixCoordinates(ctx, opts, services.CoordinateFixer{
				Bounds:   reconcile.NorthernRegion,
				Places:   places,
				Geocoder: chain,
			})
		})
}

func newGeocodeCommand(app *App) *cobra.Command {
	return newDataCommand(app, "geocode", "Geocode customers without coordinates", "update",
		func(ctx context.Context, r *services.Runner, opts services.Options) (*services.Report, error) {
			chain, err := app.Geocoder()
			if err != nil {
				return nil, err
			}
			bounds := reconcile.NorthernRegion
			return r.GeocodeMissing(ctx, opts, chain, &bounds)
		})
}
