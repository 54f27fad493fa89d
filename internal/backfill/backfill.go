// Package backfill fills restaurant categories from the local-search API for
// records that were stored without one.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/repository"
	"github.com/joseph-ayodele/restaurant-seeder/internal/resolve"
	"github.com/joseph-ayodele/restaurant-seeder/internal/upsert"
)

// Options controls a backfill pass.
type Options struct {
	Limit     int // 0 = every target
	DryRun    bool
	BatchSize int
	RateLimit time.Duration // pause between API calls
	Radius    float64       // meters
	Force     bool          // revisit records that already have a category
}

func (o *Options) setDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.RateLimit < 0 {
		o.RateLimit = 0
	}
	if o.Radius <= 0 {
		o.Radius = 1000
	}
	if o.Limit < 0 {
		o.Limit = 0
	}
}

// Stats tallies a backfill pass.
type Stats struct {
	Total      int `json:"total"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
	APISuccess int `json:"api_success"`
	APIFail    int `json:"api_fail"`
	NotFound   int `json:"not_found"`
	ParseFail  int `json:"parse_fail"`
}

// Lookup resolves a place to its point of interest.
type Lookup interface {
	Lookup(ctx context.Context, name string, lat, lng float64, address string, radius float64) resolve.LookupResult
}

// Records pages through stored restaurants.
type Records interface {
	List(ctx context.Context, opts repository.ListOptions) ([]*entity.Restaurant, error)
}

// Job runs category backfill passes.
type Job struct {
	lookup  Lookup
	records Records
	store   upsert.Beginner
	engine  *upsert.Engine
	opts    Options
	logger  *slog.Logger
}

// New builds a Job. With Force, a resolved category replaces the stored one;
// otherwise only empty categories are filled.
func New(lookup Lookup, records Records, store upsert.Beginner, opts Options, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()
	policies := []upsert.Policy{
		{Field: upsert.FieldCoordinates, Kind: upsert.FillIfSentinel},
		{Field: upsert.FieldCategory, Kind: upsert.FillIfEmpty},
		{Field: upsert.FieldPhone, Kind: upsert.FillIfEmpty},
	}
	if opts.Force {
		policies[1].Kind = upsert.Overwrite
	}
	return &Job{
		lookup:  lookup,
		records: records,
		store:   store,
		engine:  upsert.NewEngine(logger, upsert.WithPolicies(policies...)),
		opts:    opts,
		logger:  logger,
	}
}

// Run walks the targets in id order, one batch per transaction.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	start := time.Now()
	j.logger.Info("backfill.start",
		"force", j.opts.Force, "dry_run", j.opts.DryRun,
		"batch_size", j.opts.BatchSize, "limit", j.opts.Limit, "radius_m", j.opts.Radius,
	)

	var afterID int64
	calls := 0
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		page, err := j.records.List(ctx, repository.ListOptions{
			AfterID:       afterID,
			Limit:         j.opts.BatchSize,
			EmptyCategory: !j.opts.Force,
		})
		if err != nil {
			return stats, fmt.Errorf("list targets: %w", err)
		}
		if len(page) == 0 {
			break
		}
		afterID = page[len(page)-1].ID

		var updates []entity.Observation
		for _, rec := range page {
			if j.opts.Limit > 0 && stats.Total >= j.opts.Limit {
				break
			}
			if rec.Name == "" {
				continue
			}
			stats.Total++
			if calls > 0 && j.opts.RateLimit > 0 {
				if err := sleepCtx(ctx, j.opts.RateLimit); err != nil {
					return stats, err
				}
			}
			calls++

			obs, ok := j.resolve(ctx, rec, &stats)
			if !ok {
				continue
			}
			if j.opts.DryRun {
				stats.Updated++
				j.logger.Info("backfill.dry_run", "id", rec.ID, "name", rec.Name, "old", rec.Category, "new", obs.Category)
				continue
			}
			updates = append(updates, obs)
		}

		if len(updates) > 0 {
			j.apply(ctx, updates, &stats)
		}
		j.logger.Info("backfill.progress",
			"total", stats.Total, "updated", stats.Updated, "skipped", stats.Skipped,
			"errors", stats.Errors, "elapsed_ms", time.Since(start).Milliseconds(),
		)
		if j.opts.Limit > 0 && stats.Total >= j.opts.Limit {
			break
		}
	}

	j.logger.Info("backfill.done",
		"total", stats.Total, "updated", stats.Updated, "skipped", stats.Skipped, "errors", stats.Errors,
		"api_success", stats.APISuccess, "api_fail", stats.APIFail,
		"not_found", stats.NotFound, "parse_fail", stats.ParseFail,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return stats, nil
}

// resolve looks rec up and returns the observation to merge.
func (j *Job) resolve(ctx context.Context, rec *entity.Restaurant, stats *Stats) (entity.Observation, bool) {
	r := j.lookup.Lookup(ctx, rec.Name, rec.Lat, rec.Lng, rec.Address, j.opts.Radius)
	switch r.Status {
	case resolve.LookupAPIFail:
		stats.APIFail++
		stats.Skipped++
		return entity.Observation{}, false
	case resolve.LookupNotFound:
		stats.NotFound++
		stats.Skipped++
		return entity.Observation{}, false
	case resolve.LookupParseFail:
		stats.APISuccess++
		stats.ParseFail++
		stats.Skipped++
		j.logger.Debug("backfill.category.unparsed", "id", rec.ID, "raw", r.RawCategory)
		return entity.Observation{}, false
	}
	stats.APISuccess++
	if r.Category == rec.Category {
		stats.Skipped++
		return entity.Observation{}, false
	}

	obs := entity.Observation{
		Name:     rec.Name,
		Address:  rec.Address,
		Lat:      rec.Lat,
		Lng:      rec.Lng,
		Category: r.Category,
		Phone:    r.Phone,
	}
	if !rec.HasCoordinates() && !entity.IsSentinel(r.Lat, r.Lng) {
		obs.Lat, obs.Lng = r.Lat, r.Lng
	}
	return obs, true
}

// apply writes one batch; a failed commit counts the whole batch as errors.
func (j *Job) apply(ctx context.Context, updates []entity.Observation, stats *Stats) {
	dbCtx := context.WithoutCancel(ctx)
	batch, err := j.store.BeginBatch(dbCtx)
	if err != nil {
		stats.Errors += len(updates)
		j.logger.Error("backfill.batch.begin_failed", "err", err)
		return
	}
	var updated, skipped int
	for _, obs := range updates {
		out, err := j.engine.Apply(dbCtx, batch.Store(), obs)
		if err != nil {
			_ = batch.Rollback()
			stats.Errors += len(updates)
			j.logger.Error("backfill.apply_failed", "name", obs.Name, "err", err)
			return
		}
		switch out {
		case constants.OutcomeUpdated, constants.OutcomeCreated:
			updated++
		default:
			skipped++
		}
	}
	if err := batch.Commit(); err != nil {
		_ = batch.Rollback()
		stats.Errors += len(updates)
		j.logger.Error("backfill.batch.commit_failed", "records", len(updates), "err", err)
		return
	}
	stats.Updated += updated
	stats.Skipped += skipped
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
