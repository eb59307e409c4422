package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/kunder-tools/internal/config"
	"github.com/diewo77/kunder-tools/internal/db"
	"github.com/diewo77/kunder-tools/internal/geocode"
	"github.com/diewo77/kunder-tools/internal/lock"
	"github.com/diewo77/kunder-tools/internal/logging"
	"github.com/diewo77/kunder-tools/internal/services"
	"github.com/diewo77/kunder-tools/internal/store"
)

// lockTTL bounds how long a crashed run keeps its tenant locked.
const lockTTL = 30 * time.Minute

// App holds the configuration and the lazily opened connections shared by commands.
type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	out     io.Writer
	verbose bool

	hosted *gorm.DB
	rdb    *redis.Client
}

func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg, out: os.Stdout}
}

// setup builds the logger once flags are parsed.
func (a *App) setup() {
	level := a.cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	a.log = logging.New(logging.Config{Level: level, Format: a.cfg.Log.Format})
}

// Hosted connects to the hosted store.
func (a *App) Hosted(ctx context.Context) (*gorm.DB, error) {
	if a.hosted != nil {
		return a.hosted, nil
	}
	if err := a.cfg.Require(config.KeyDatabase); err != nil {
		return nil, err
	}
	conn, err := db.Connect(ctx, a.cfg.Database, a.log)
	if err != nil {
		return nil, err
	}
	a.hosted = conn
	return conn, nil
}

// Redis returns a client when REDIS_URL is set, nil otherwise.
func (a *App) Redis() (*redis.Client, error) {
	if a.rdb != nil || a.cfg.Redis.URL == "" {
		return a.rdb, nil
	}
	opts, err := redis.ParseURL(a.cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	a.rdb = redis.NewClient(opts)
	return a.rdb, nil
}

// Runner opens the hosted store and returns a runner scoped to the configured tenant.
func (a *App) Runner(ctx context.Context) (*services.Runner, services.Options, error) {
	if err := a.cfg.Require(config.KeyDatabase, config.KeyOrganization); err != nil {
		return nil, services.Options{}, err
	}
	conn, err := a.Hosted(ctx)
	if err != nil {
		return nil, services.Options{}, err
	}
	rdb, err := a.Redis()
	if err != nil {
		return nil, services.Options{}, err
	}
	var locker lock.Locker = lock.Noop{}
	if rdb != nil {
		locker = lock.NewRedis(rdb, lockTTL)
	}
	opts := services.Options{OrganizationID: a.cfg.Tenant.OrganizationID}
	log := a.log.With().Uint("organization", opts.OrganizationID).Logger()
	return services.NewRunner(store.New(conn), locker, log), opts, nil
}

// Geocoder builds the provider chain: each provider is throttled, then cached, so
// cache hits do not wait.
func (a *App) Geocoder() (*geocode.Chain, error) {
	g := a.cfg.Geocoding
	opts := geocode.HTTPOptions{UserAgent: g.UserAgent, Timeout: g.Timeout}

	var cache geocode.Cache = geocode.NewMemoryCache(g.CacheTTL)
	rdb, err := a.Redis()
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		cache = geocode.Layered{cache, geocode.NewRedisCache(rdb, g.CacheTTL)}
	}

	kartverket := opts
	kartverket.BaseURL = g.KartverketURL
	nominatim := opts
	nominatim.BaseURL = g.NominatimURL

	providers := []geocode.Geocoder{geocode.NewKartverket(kartverket), geocode.NewNominatim(nominatim)}
	for i, p := range providers {
		providers[i] = geocode.WithCache(geocode.Throttle(p, g.Delay), cache, a.log)
	}
	return geocode.NewChain(providers...), nil
}

// Close releases open connections.
func (a *App) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.hosted != nil {
		if sqlDB, err := a.hosted.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// report prints a run summary.
func (a *App) report(rep *services.Report) error {
	if rep == nil {
		return nil
	}
	return rep.Print(a.out)
}
