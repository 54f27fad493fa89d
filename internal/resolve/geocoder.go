// Package resolve turns place text into coordinates and categories through
// cached external lookups.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/naver"
)

// GeocodeAPI is the geocode transport.
type GeocodeAPI interface {
	Configured() bool
	Geocode(ctx context.Context, query string) (*naver.GeocodeResponse, error)
}

// CacheObserver is notified of cache lookups.
type CacheObserver func(hit bool)

// Geocoder resolves a keyword to an address and coordinates. Results are
// memoized per exact keyword in a bounded LRU owned by the instance.
type Geocoder struct {
	api      GeocodeAPI
	hints    []string
	timeout  time.Duration
	retry    retryPolicy
	cache    *lru.Cache[string, entity.ResolvedLocation]
	observer CacheObserver
	logger   *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// GeocoderOption configures a Geocoder.
type GeocoderOption func(*Geocoder)

// WithGeocodeObserver reports cache hits and misses.
func WithGeocodeObserver(o CacheObserver) GeocoderOption {
	return func(g *Geocoder) { g.observer = o }
}

// NewGeocoder builds a Geocoder from cfg.
func NewGeocoder(api GeocodeAPI, cfg common.GeocodeConfig, logger *slog.Logger, opts ...GeocoderOption) (*Geocoder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[string, entity.ResolvedLocation](size)
	if err != nil {
		return nil, fmt.Errorf("geocode cache: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 7 * time.Second
	}
	g := &Geocoder{
		api:     api,
		hints:   cfg.RegionHints,
		timeout: timeout,
		retry:   newRetryPolicy(cfg.Retries),
		cache:   cache,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Queries returns the lookup strings tried for keyword, in order.
func (g *Geocoder) Queries(keyword string) []string {
	if len(g.hints) == 0 {
		return []string{keyword}
	}
	out := make([]string, 0, len(g.hints))
	for _, h := range g.hints {
		out = append(out, strings.TrimSpace(h+" "+keyword))
	}
	return out
}

// Geocode never fails: anything short of a usable match yields the sentinel.
func (g *Geocoder) Geocode(ctx context.Context, keyword string) entity.ResolvedLocation {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || g.api == nil || !g.api.Configured() {
		return entity.Unresolved()
	}
	if loc, ok := g.cache.Get(keyword); ok {
		g.hits.Add(1)
		g.notify(true)
		return loc
	}
	g.misses.Add(1)
	g.notify(false)

	loc, transient := g.lookup(ctx, keyword)
	// transient failures are not memoized so a later row can try again
	if !transient {
		g.cache.Add(keyword, loc)
	}
	return loc
}

func (g *Geocoder) lookup(ctx context.Context, keyword string) (entity.ResolvedLocation, bool) {
	transient := false
	for _, q := range g.Queries(keyword) {
		if ctx.Err() != nil {
			return entity.Unresolved(), true
		}
		var resp *naver.GeocodeResponse
		err := g.retry.do(ctx, g.timeout, func(ctx context.Context) error {
			var err error
			resp, err = g.api.Geocode(ctx, q)
			return err
		})
		if err != nil {
			transient = transient || naver.Retryable(err)
			g.logger.Warn("geocode.lookup.failed", "query", q, "error", err)
			continue
		}
		for _, a := range resp.Addresses {
			addr := a.Best()
			lat, lng, ok := a.Coordinates()
			if addr == "" || !ok || entity.IsSentinel(lat, lng) {
				continue
			}
			g.logger.Debug("geocode.lookup.resolved", "query", q, "address", addr, "lat", lat, "lng", lng)
			return entity.ResolvedLocation{Address: addr, Lat: lat, Lng: lng}, false
		}
	}
	return entity.Unresolved(), transient
}

// CacheStats returns cumulative hits and misses.
func (g *Geocoder) CacheStats() (hits, misses int64) {
	return g.hits.Load(), g.misses.Load()
}

func (g *Geocoder) notify(hit bool) {
	if g.observer != nil {
		g.observer(hit)
	}
}
