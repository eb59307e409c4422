package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/diewo77/kunder-tools/internal/reconcile"
)

// Entry is a cached lookup. Found is false for a remembered miss.
type Entry struct {
	Result Result `json:"result"`
	Found  bool   `json:"found"`
}

// Cache stores geocoding outcomes by key.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
}

// MemoryCache is a process-local TTL cache.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(ttl, 10*time.Minute)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	return v.(Entry), true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, e Entry) error {
	m.store.Set(key, e, gocache.DefaultExpiration)
	return nil
}

// ItemCount returns the number of cached entries.
func (m *MemoryCache) ItemCount() int { return m.store.ItemCount() }

// RedisCache shares geocoding outcomes between runs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache stores entries under "geocode:" with the given ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "geocode:"}
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached entry: %w", err)
	}
	return e, true, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, b, r.ttl).Err()
}

// Layered reads caches in order and writes to all of them. A hit in a later
// layer is copied into the earlier ones.
type Layered []Cache

// Get implements Cache. A hit is returned together with any layer errors met on the
// way, including failed copies into earlier layers.
func (l Layered) Get(ctx context.Context, key string) (Entry, bool, error) {
	var errs []error
	for i, c := range l {
		e, ok, err := c.Get(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			for _, earlier := range l[:i] {
				if err := earlier.Set(ctx, key, e); err != nil {
					errs = append(errs, fmt.Errorf("copy to earlier layer: %w", err))
				}
			}
			return e, true, errors.Join(errs...)
		}
	}
	return Entry{}, false, errors.Join(errs...)
}

// Set implements Cache.
func (l Layered) Set(ctx context.Context, key string, e Entry) error {
	var errs []error
	for _, c := range l {
		if err := c.Set(ctx, key, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cached answers repeated queries from a cache. Cache failures are logged and the
// wrapped geocoder is used as if the entry were missing.
type Cached struct {
	next  Geocoder
	cache Cache
	log   zerolog.Logger
}

// WithCache wraps g with cache.
func WithCache(g Geocoder, cache Cache, log zerolog.Logger) *Cached {
	return &Cached{next: g, cache: cache, log: log}
}

// Name implements Geocoder.
func (c *Cached) Name() string { return c.next.Name() }

// Geocode implements Geocoder.
func (c *Cached) Geocode(ctx context.Context, query string) (Result, error) {
	key := c.next.Name() + ":" + reconcile.Normalize(query)

	e, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("geocode cache read failed")
	}
	if ok {
		if !e.Found {
			return Result{}, ErrNotFound
		}
		return e.Result, nil
	}

	r, err := c.next.Geocode(ctx, query)
	switch {
	case err == nil:
		e = Entry{Result: r, Found: true}
	case errors.Is(err, ErrNotFound):
		e = Entry{}
	default:
		return Result{}, err
	}
	if serr := c.cache.Set(ctx, key, e); serr != nil {
		c.log.Warn().Err(serr).Str("key", key).Msg("geocode cache write failed")
	}
	return r, err
}
