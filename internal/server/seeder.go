package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/restaurant-seeder/internal/backfill"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/export"
	"github.com/joseph-ayodele/restaurant-seeder/internal/naver"
	"github.com/joseph-ayodele/restaurant-seeder/internal/pipeline"
	"github.com/joseph-ayodele/restaurant-seeder/internal/readers"
	"github.com/joseph-ayodele/restaurant-seeder/internal/repository"
	"github.com/joseph-ayodele/restaurant-seeder/internal/resolve"
	"github.com/joseph-ayodele/restaurant-seeder/internal/upsert"
	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

// Seeder wires the resolvers, parser and orchestrator for one process. The
// resolver caches live as long as the Seeder, so repeated runs share them.
type Seeder struct {
	cfg      *common.Config
	store    *repository.Store
	vocab    *vocab.Vocabulary
	geocoder *resolve.Geocoder
	local    *resolve.LocalSearch
	parser   *pipeline.Parser
	logger   *slog.Logger
}

// NewSeeder builds a Seeder over an open store.
func NewSeeder(cfg *common.Config, store *repository.Store, logger *slog.Logger) (*Seeder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v := vocab.Default()
	if cfg.Seed.VocabPath != "" {
		loaded, err := vocab.Load(cfg.Seed.VocabPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		v = loaded
		logger.Info("vocabulary loaded", "path", cfg.Seed.VocabPath)
	}

	httpClient := &http.Client{}
	geoAPI := naver.NewGeocodeClient(httpClient, cfg.Geocode.BaseURL, cfg.Geocode.ClientID, cfg.Geocode.ClientSecret, logger)
	if !geoAPI.Configured() {
		logger.Warn("geocode credentials missing, coordinates will stay unresolved")
	}
	geocoder, err := resolve.NewGeocoder(geoAPI, cfg.Geocode, logger, resolve.WithGeocodeObserver(pipeline.GeocodeCacheObserver))
	if err != nil {
		return nil, err
	}

	localAPI := naver.NewLocalSearchClient(httpClient, cfg.LocalSearch.BaseURL, cfg.LocalSearch.ClientID, cfg.LocalSearch.ClientSecret, logger)
	local, err := resolve.NewLocalSearch(localAPI, v, cfg.LocalSearch, logger, resolve.WithLocalSearchObserver(pipeline.LocalSearchCacheObserver))
	if err != nil {
		return nil, err
	}

	var inline pipeline.CategoryLookup
	if cfg.LocalSearch.Enabled {
		if localAPI.Configured() {
			inline = local
		} else {
			logger.Warn("local search enabled without credentials, categories will not be resolved inline")
		}
	}

	parser := pipeline.NewParser(readers.NewRegistry(cfg.Readers, logger), v, geocoder, inline, pipeline.ParserOptions{
		AllowNoGeocode:     cfg.Seed.AllowNoGeocode,
		FillAddressFromGeo: cfg.Seed.FillAddressFromGeo,
		CategoryRadius:     cfg.LocalSearch.RadiusMeters,
	}, logger)

	return &Seeder{
		cfg:      cfg,
		store:    store,
		vocab:    v,
		geocoder: geocoder,
		local:    local,
		parser:   parser,
		logger:   logger,
	}, nil
}

// Run executes one seeding pass with opts.
func (s *Seeder) Run(ctx context.Context, opts pipeline.Options) (pipeline.RunSummary, error) {
	orch := pipeline.NewOrchestrator(opts, s.parser, upsert.NewEngine(s.logger), upsert.Transactions(s.store), s.logger)
	sum, err := orch.Run(ctx)
	hits, misses := s.geocoder.CacheStats()
	s.logger.Info("geocode.cache.stats", "run_id", sum.RunID, "hits", hits, "misses", misses)
	return sum, err
}

// Backfill runs the category backfill job.
func (s *Seeder) Backfill(ctx context.Context, opts backfill.Options) (backfill.Stats, error) {
	return backfill.New(s.local, s.store.Restaurants(), upsert.Transactions(s.store), opts, s.logger).Run(ctx)
}

// Export renders the store as an XLSX workbook.
func (s *Seeder) Export(ctx context.Context, run *pipeline.RunSummary) ([]byte, error) {
	return export.NewService(s.store.Restaurants(), s.logger).ExportRestaurantsXLSX(ctx, run)
}

// Store returns the underlying store.
func (s *Seeder) Store() *repository.Store { return s.store }
