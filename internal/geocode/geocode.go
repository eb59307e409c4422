// Package geocode turns address text into coordinates using external geocoders.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/kunder-tools/internal/models"
)

// ErrNotFound is returned when a geocoder has no result for a query.
var ErrNotFound = errors.New("geocode: not found")

// Result is a single geocoded point.
type Result struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Source string  `json:"source"`
	// Coarse is set when the point came from a postal code or city query.
	Coarse bool `json:"coarse,omitempty"`
}

// Geocoder resolves free text to the best matching point.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) (Result, error)
}

// FullQuery is "address, postal city" for c.
func FullQuery(c models.Customer) string {
	if strings.TrimSpace(c.Address) == "" {
		return ""
	}
	return c.FullAddress()
}

// CoarseQuery is "postal city" when c has a postal code, otherwise the city alone.
func CoarseQuery(c models.Customer) string {
	postal, city := strings.TrimSpace(c.PostalCode), strings.TrimSpace(c.City)
	if postal != "" {
		return strings.TrimSpace(postal + " " + city)
	}
	return city
}

// Chain tries providers in order. Each provider gets the full query first and the
// coarse query when the full one finds nothing.
type Chain struct {
	Providers []Geocoder
}

// NewChain returns a chain over providers in fallback order.
func NewChain(providers ...Geocoder) *Chain {
	return &Chain{Providers: providers}
}

// Name implements Geocoder.
func (c *Chain) Name() string {
	names := make([]string, len(c.Providers))
	for i, p := range c.Providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

// Geocode tries query against each provider and returns the first point found.
func (c *Chain) Geocode(ctx context.Context, query string) (Result, error) {
	var errs []error
	for _, p := range c.Providers {
		r, err := p.Geocode(ctx, query)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
	}
	return Result{}, notFoundOr(errs)
}

// Locate geocodes a customer record, trying full then coarse queries per provider.
func (c *Chain) Locate(ctx context.Context, rec models.Customer) (Result, error) {
	queries := []struct {
		text   string
		coarse bool
	}{
		{FullQuery(rec), false},
		{CoarseQuery(rec), true},
	}

	var errs []error
	for _, p := range c.Providers {
		for _, q := range queries {
			if q.text == "" {
				continue
			}
			r, err := p.Geocode(ctx, q.text)
			if err == nil {
				r.Coarse = q.coarse
				return r, nil
			}
			if !errors.Is(err, ErrNotFound) {
				errs = append(errs, fmt.Errorf("%s %q: %w", p.Name(), q.text, err))
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
		}
	}
	return Result{}, notFoundOr(errs)
}

// notFoundOr reports transport failures when there were any, otherwise ErrNotFound.
func notFoundOr(errs []error) error {
	if len(errs) == 0 {
		return ErrNotFound
	}
	return errors.Join(errs...)
}
