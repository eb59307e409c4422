package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPOptions configures the HTTP geocoders.
type HTTPOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Client    *http.Client
}

func (o HTTPOptions) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func getJSON(ctx context.Context, c *http.Client, userAgent, endpoint string, params url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Kartverket queries the national address registry (ws.geonorge.no/adresser/v1).
type Kartverket struct {
	opts   HTTPOptions
	client *http.Client
}

// NewKartverket returns a Kartverket geocoder.
func NewKartverket(opts HTTPOptions) *Kartverket {
	return &Kartverket{opts: opts, client: opts.client()}
}

// Name implements Geocoder.
func (k *Kartverket) Name() string { return "kartverket" }

type kartverketResponse struct {
	Adresser []struct {
		Adressetekst         string `json:"adressetekst"`
		Representasjonspunkt struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"representasjonspunkt"`
	} `json:"adresser"`
}

// Geocode implements Geocoder.
func (k *Kartverket) Geocode(ctx context.Context, query string) (Result, error) {
	params := url.Values{}
	params.Set("sok", query)
	params.Set("treffPerSide", "1")
	params.Set("utkoordsys", "4258")

	var body kartverketResponse
	if err := getJSON(ctx, k.client, k.opts.UserAgent, k.opts.BaseURL+"/sok", params, &body); err != nil {
		return Result{}, err
	}
	if len(body.Adresser) == 0 {
		return Result{}, ErrNotFound
	}
	p := body.Adresser[0].Representasjonspunkt
	return Result{Lat: p.Lat, Lng: p.Lon, Source: k.Name()}, nil
}

// Nominatim queries an OpenStreetMap Nominatim instance.
type Nominatim struct {
	opts   HTTPOptions
	client *http.Client
	// CountryCodes limits results, "no" by default.
	CountryCodes string
}

// NewNominatim returns a Nominatim geocoder restricted to Norway.
func NewNominatim(opts HTTPOptions) *Nominatim {
	return &Nominatim{opts: opts, client: opts.client(), CountryCodes: "no"}
}

// Name implements Geocoder.
func (n *Nominatim) Name() string { return "nominatim" }

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode implements Geocoder.
func (n *Nominatim) Geocode(ctx context.Context, query string) (Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if n.CountryCodes != "" {
		params.Set("countrycodes", n.CountryCodes)
	}

	var places []nominatimPlace
	if err := getJSON(ctx, n.client, n.opts.UserAgent, n.opts.BaseURL+"/search", params, &places); err != nil {
		return Result{}, err
	}
	if len(places) == 0 {
		return Result{}, ErrNotFound
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("parse lat %q: %w", places[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("parse lon %q: %w", places[0].Lon, err)
	}
	return Result{Lat: lat, Lng: lng, Source: n.Name()}, nil
}
