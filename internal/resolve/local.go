package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/naver"
	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

// LocalSearchAPI is the local-search transport.
type LocalSearchAPI interface {
	Configured() bool
	Search(ctx context.Context, query string, display int) (*naver.LocalSearchResponse, error)
}

// LookupStatus classifies a local-search lookup.
type LookupStatus string

const (
	LookupOK        LookupStatus = "ok"
	LookupAPIFail   LookupStatus = "api_fail"
	LookupNotFound  LookupStatus = "not_found"
	LookupParseFail LookupStatus = "parse_fail"
)

// LookupResult is the chosen point of interest for a (name, address) query.
type LookupResult struct {
	Status      LookupStatus
	Title       string
	RawCategory string
	Category    string
	Phone       string
	Lat         float64
	Lng         float64
}

type localKey struct {
	name    string
	address string
}

// LocalSearch resolves a place to its point-of-interest category. Results are
// memoized per (name, address) in a bounded LRU.
type LocalSearch struct {
	api      LocalSearchAPI
	vocab    *vocab.Vocabulary
	display  int
	timeout  time.Duration
	retry    retryPolicy
	cache    *lru.Cache[localKey, LookupResult]
	observer CacheObserver
	logger   *slog.Logger
}

// LocalSearchOption configures a LocalSearch.
type LocalSearchOption func(*LocalSearch)

// WithLocalSearchObserver reports cache hits and misses.
func WithLocalSearchObserver(o CacheObserver) LocalSearchOption {
	return func(l *LocalSearch) { l.observer = o }
}

// NewLocalSearch builds a LocalSearch from cfg. A nil vocabulary uses the embedded default.
func NewLocalSearch(api LocalSearchAPI, v *vocab.Vocabulary, cfg common.LocalSearchConfig, logger *slog.Logger, opts ...LocalSearchOption) (*LocalSearch, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = vocab.Default()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[localKey, LookupResult](size)
	if err != nil {
		return nil, fmt.Errorf("local search cache: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	display := cfg.Display
	if display <= 0 {
		display = 5
	}
	l := &LocalSearch{
		api:     api,
		vocab:   v,
		display: display,
		timeout: timeout,
		retry:   newRetryPolicy(cfg.Retries),
		cache:   cache,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// ResolveCategory returns the canonical category of the best candidate near
// (lat, lng) within radius meters.
func (l *LocalSearch) ResolveCategory(ctx context.Context, name string, lat, lng float64, address string, radius float64) (string, bool) {
	res := l.Lookup(ctx, name, lat, lng, address, radius)
	if res.Status != LookupOK {
		return "", false
	}
	return res.Category, true
}

// Lookup is ResolveCategory with the full result and failure class.
func (l *LocalSearch) Lookup(ctx context.Context, name string, lat, lng float64, address string, radius float64) LookupResult {
	key := localKey{name: strings.TrimSpace(name), address: strings.TrimSpace(address)}
	if key.name == "" || l.api == nil || !l.api.Configured() {
		return LookupResult{Status: LookupAPIFail}
	}
	if res, ok := l.cache.Get(key); ok {
		l.notify(true)
		return res
	}
	l.notify(false)

	res := l.lookup(ctx, key, lat, lng, radius)
	if res.Status != LookupAPIFail {
		l.cache.Add(key, res)
	}
	return res
}

func (l *LocalSearch) lookup(ctx context.Context, key localKey, lat, lng, radius float64) LookupResult {
	query := BuildQuery(key.name, key.address)

	var resp *naver.LocalSearchResponse
	err := l.retry.do(ctx, l.timeout, func(ctx context.Context) error {
		var err error
		resp, err = l.api.Search(ctx, query, l.display)
		return err
	})
	if err != nil {
		l.logger.Warn("local_search.lookup.failed", "query", query, "error", err)
		return LookupResult{Status: LookupAPIFail}
	}
	if len(resp.Items) == 0 {
		return LookupResult{Status: LookupNotFound}
	}

	best, ok := ChooseBest(resp.Items, key.name, lat, lng, radius)
	if !ok {
		l.logger.Debug("local_search.lookup.no_candidate", "query", query, "items", len(resp.Items))
		return LookupResult{Status: LookupNotFound}
	}

	res := LookupResult{
		Title:       best.PlainTitle(),
		RawCategory: best.Category,
		Phone:       strings.TrimSpace(best.Telephone),
	}
	res.Lat, res.Lng, _ = best.Coordinates()
	cat, ok := l.vocab.CanonicalCategory(best.Category)
	if !ok {
		res.Status = LookupParseFail
		return res
	}
	res.Category = cat
	res.Status = LookupOK
	l.logger.Debug("local_search.lookup.resolved", "query", query, "title", res.Title, "category", cat)
	return res
}

func (l *LocalSearch) notify(hit bool) {
	if l.observer != nil {
		l.observer(hit)
	}
}

// BuildQuery appends up to three address fragments to name: administrative
// parts ending in 시/군/구/동/읍/면, or a road name, which ends the scan.
func BuildQuery(name, address string) string {
	parts := []string{}
	if name = strings.TrimSpace(name); name != "" {
		parts = append(parts, name)
	}
	var useful []string
	for _, p := range strings.Fields(address) {
		if hasAnySuffix(p, "시", "군", "구", "동", "읍", "면") {
			useful = append(useful, p)
			continue
		}
		if hasAnySuffix(p, "로", "대로", "길") {
			useful = append(useful, p)
			break
		}
	}
	if len(useful) > 3 {
		useful = useful[:3]
	}
	return strings.Join(append(parts, useful...), " ")
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// ChooseBest picks the candidate with the highest name score, breaking ties by
// distance. Candidates without coordinates are always dropped; candidates
// farther than radius meters are dropped unless (lat, lng) is the sentinel, in
// which case distance is ignored.
func ChooseBest(items []naver.LocalItem, name string, lat, lng, radius float64) (naver.LocalItem, bool) {
	filter := !entity.IsSentinel(lat, lng)
	target := matchKey(name)
	origin := orb.Point{lng, lat}

	var (
		best      naver.LocalItem
		bestScore = -1
		bestDist  float64
	)
	for _, it := range items {
		clat, clng, ok := it.Coordinates()
		if !ok {
			continue
		}
		dist := 0.0
		if filter {
			dist = geo.DistanceHaversine(origin, orb.Point{clng, clat})
			if dist > radius {
				continue
			}
		}
		score := nameScore(target, matchKey(it.PlainTitle()))
		if score > bestScore || (score == bestScore && dist < bestDist) {
			best, bestScore, bestDist = it, score, dist
		}
	}
	return best, bestScore >= 0
}

func nameScore(query, title string) int {
	switch {
	case query == "" || title == "":
		return 0
	case strings.Contains(title, query):
		return 2
	case strings.Contains(query, title):
		return 1
	default:
		return 0
	}
}

func matchKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
