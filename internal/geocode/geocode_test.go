package geocode

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/kunder-tools/internal/models"
	"github.com/diewo77/kunder-tools/internal/reconcile"
)

// stubGeocoder answers from a fixed map and records queries.
type stubGeocoder struct {
	name    string
	answers map[string]Result
	fail    error

	mu      sync.Mutex
	queries []string
}

func (s *stubGeocoder) Name() string { return s.name }

func (s *stubGeocoder) Geocode(_ context.Context, q string) (Result, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	if s.fail != nil {
		return Result{}, s.fail
	}
	r, ok := s.answers[q]
	if !ok {
		return Result{}, ErrNotFound
	}
	r.Source = s.name
	return r, nil
}

func TestQueries(t *testing.T) {
	c := models.Customer{Address: "Storgata 1", PostalCode: "8006", City: "Bodø"}
	assert.Equal(t, "Storgata 1, 8006 Bodø", FullQuery(c))
	assert.Equal(t, "8006 Bodø", CoarseQuery(c))

	assert.Equal(t, "", FullQuery(models.Customer{City: "Bodø"}))
	assert.Equal(t, "Bodø", CoarseQuery(models.Customer{City: "Bodø"}))
	assert.Equal(t, "", CoarseQuery(models.Customer{}))
}

func TestChainLocateFallbackOrder(t *testing.T) {
	c := models.Customer{Address: "Valberg", PostalCode: "8378", City: "Stamsund"}
	primary := &stubGeocoder{name: "kartverket", answers: map[string]Result{}}
	secondary := &stubGeocoder{name: "nominatim", answers: map[string]Result{
		"Valberg, 8378 Stamsund": {Lat: 68.18, Lng: 13.95},
		"8378 Stamsund":          {Lat: 68.12, Lng: 13.84},
	}}

	r, err := NewChain(primary, secondary).Locate(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "nominatim", r.Source)
	assert.False(t, r.Coarse)
	assert.Equal(t, 68.18, r.Lat)
	assert.Equal(t, []string{"Valberg, 8378 Stamsund", "8378 Stamsund"}, primary.queries)
}

func TestChainLocateCoarse(t *testing.T) {
	c := models.Customer{Address: "Ukjent vei 99", City: "Leknes"}
	primary := &stubGeocoder{name: "kartverket", answers: map[string]Result{"Leknes": {Lat: 68.14, Lng: 13.61}}}

	r, err := NewChain(primary).Locate(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, r.Coarse)
	assert.Equal(t, "kartverket", r.Source)
}

func TestChainLocateNotFoundAndFailure(t *testing.T) {
	c := models.Customer{Address: "Ingensteds 1", City: "Ingen"}

	_, err := NewChain(&stubGeocoder{name: "a"}, &stubGeocoder{name: "b"}).Locate(context.Background(), c)
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("connection reset")
	_, err = NewChain(&stubGeocoder{name: "a", fail: boom}, &stubGeocoder{name: "b"}).Locate(context.Background(), c)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestChainGeocodeFirstProviderWins(t *testing.T) {
	a := &stubGeocoder{name: "a", answers: map[string]Result{"Bodø": {Lat: 1, Lng: 2}}}
	b := &stubGeocoder{name: "b", answers: map[string]Result{"Bodø": {Lat: 3, Lng: 4}}}
	chain := NewChain(a, b)

	r, err := chain.Geocode(context.Background(), "Bodø")
	require.NoError(t, err)
	assert.Equal(t, "a", r.Source)
	assert.Empty(t, b.queries)
	assert.Equal(t, "a>b", chain.Name())
}

func TestKartverket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sok", r.URL.Path)
		assert.Equal(t, "kunder-test", r.Header.Get("User-Agent"))
		if r.URL.Query().Get("sok") == "Storgata 1, 8006 Bodø" {
			_, _ = w.Write([]byte(`{"adresser":[{"adressetekst":"Storgata 1","representasjonspunkt":{"epsg":"EPSG:4258","lat":67.2817,"lon":14.3801}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"adresser":[]}`))
	}))
	defer srv.Close()

	k := NewKartverket(HTTPOptions{BaseURL: srv.URL, UserAgent: "kunder-test"})
	r, err := k.Geocode(context.Background(), "Storgata 1, 8006 Bodø")
	require.NoError(t, err)
	assert.Equal(t, Result{Lat: 67.2817, Lng: 14.3801, Source: "kartverket"}, r)

	_, err = k.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "no", r.URL.Query().Get("countrycodes"))
		switch r.URL.Query().Get("q") {
		case "Valberg":
			_, _ = w.Write([]byte(`[{"lat":"68.1880","lon":"13.9560","display_name":"Valberg, Vestvågøy"}]`))
		case "busy":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	n := NewNominatim(HTTPOptions{BaseURL: srv.URL})
	r, err := n.Geocode(context.Background(), "Valberg")
	require.NoError(t, err)
	assert.Equal(t, 68.188, r.Lat)
	assert.Equal(t, 13.956, r.Lng)

	_, err = n.Geocode(context.Background(), "none")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = n.Geocode(context.Background(), "busy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestThrottleSpacesCalls(t *testing.T) {
	stub := &stubGeocoder{name: "s"}
	th := Throttle(stub, 40*time.Millisecond)

	start := time.Now()
	for range 3 {
		_, _ = th.Geocode(context.Background(), "x")
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Len(t, stub.queries, 3)
}

func TestThrottleHonoursContext(t *testing.T) {
	th := Throttle(&stubGeocoder{name: "s"}, time.Hour)
	_, _ = th.Geocode(context.Background(), "first")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := th.Geocode(ctx, "second")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedRemembersHitsAndMisses(t *testing.T) {
	stub := &stubGeocoder{name: "s", answers: map[string]Result{"Bodø": {Lat: 67.28, Lng: 14.40}}}
	cache := NewMemoryCache(time.Hour)
	g := WithCache(stub, cache, zerolog.Nop())

	for range 2 {
		r, err := g.Geocode(context.Background(), "Bodø")
		require.NoError(t, err)
		assert.Equal(t, 67.28, r.Lat)
		_, err = g.Geocode(context.Background(), " bodø ")
		require.NoError(t, err)
		_, err = g.Geocode(context.Background(), "Ingen")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, []string{"Bodø", "Ingen"}, stub.queries)
	assert.Equal(t, 2, cache.ItemCount())
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	stub := &stubGeocoder{name: "s", fail: errors.New("timeout")}
	cache := NewMemoryCache(time.Hour)
	g := WithCache(stub, cache, zerolog.Nop())

	_, err := g.Geocode(context.Background(), "Bodø")
	require.Error(t, err)
	assert.Zero(t, cache.ItemCount())
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("down")
}
func (brokenCache) Set(context.Context, string, Entry) error { return errors.New("down") }

func TestLayeredCache(t *testing.T) {
	ctx := context.Background()
	front, back := NewMemoryCache(time.Hour), NewMemoryCache(time.Hour)
	require.NoError(t, back.Set(ctx, "k", Entry{Found: true, Result: Result{Lat: 1}}))

	l := Layered{front, back}
	e, ok, err := l.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, e.Result.Lat)

	_, ok, _ = front.Get(ctx, "k")
	assert.True(t, ok, "hit copied to earlier layer")

	l = Layered{brokenCache{}, back}
	e, ok, err = l.Get(ctx, "k")
	require.True(t, ok, "a broken layer does not hide the hit")
	assert.Equal(t, 1.0, e.Result.Lat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy to earlier layer")

	_, ok, err = l.Get(ctx, "missing")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestCachedServesHitWhenWriteBackFails(t *testing.T) {
	ctx := context.Background()
	back := NewMemoryCache(time.Hour)
	require.NoError(t, back.Set(ctx, "s:"+reconcile.Normalize("Bodø"), Entry{Found: true, Result: Result{Lat: 67.28, Lng: 14.40}}))

	var logs bytes.Buffer
	stub := &stubGeocoder{name: "s"}
	g := WithCache(stub, Layered{brokenCache{}, back}, zerolog.New(&logs))

	r, err := g.Geocode(ctx, "Bodø")
	require.NoError(t, err)
	assert.Equal(t, 67.28, r.Lat)
	assert.Empty(t, stub.queries)
	assert.Contains(t, logs.String(), "copy to earlier layer")
}

func TestPlaces(t *testing.T) {
	places, err := DefaultPlaces()
	require.NoError(t, err)
	assert.Greater(t, places.Len(), 10)

	lat, lng, ok := places.Lookup("  STAMSUND ")
	require.True(t, ok)
	assert.InDelta(t, 68.13, lat, 0.01)
	assert.InDelta(t, 13.84, lng, 0.01)

	_, _, ok = places.Lookup("Oslo")
	assert.False(t, ok)
}

func TestParsePlacesRejectsDuplicates(t *testing.T) {
	_, err := ParsePlaces([]byte("- name: Bodø\n  lat: 1\n  lng: 2\n- name: bodø\n  lat: 3\n  lng: 4\n"))
	assert.Error(t, err)
}
