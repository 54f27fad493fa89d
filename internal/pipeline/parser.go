// Package pipeline turns source documents into restaurant observations and
// streams them into the store.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/dedup"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/extract"
	"github.com/joseph-ayodele/restaurant-seeder/internal/ingest"
	"github.com/joseph-ayodele/restaurant-seeder/internal/normalize"
	"github.com/joseph-ayodele/restaurant-seeder/internal/place"
	"github.com/joseph-ayodele/restaurant-seeder/internal/readers"
	"github.com/joseph-ayodele/restaurant-seeder/internal/resolve"
	"github.com/joseph-ayodele/restaurant-seeder/internal/vocab"
)

// Sanity bounds applied to spend rows.
const (
	MaxPersonCount = 1000
	MaxPrice       = 1_000_000
)

// Geocoder resolves a keyword to a location; failures come back unresolved.
type Geocoder interface {
	Geocode(ctx context.Context, keyword string) entity.ResolvedLocation
}

// CategoryLookup finds the point of interest behind a named place.
type CategoryLookup interface {
	Lookup(ctx context.Context, name string, lat, lng float64, address string, radius float64) resolve.LookupResult
}

// ParserOptions controls the per-row pipeline.
type ParserOptions struct {
	AllowNoGeocode     bool
	FillAddressFromGeo bool
	CategoryRadius     float64
}

// FileJob asks a worker to parse one document. Seq is the document's
// position in the scan order.
type FileJob struct {
	Seq    int
	Source ingest.Source
}

// FileStats tallies what the row pipeline did with one document.
type FileStats struct {
	Grids      int
	Rows       int
	Garbage    int
	Events     int
	Empty      int
	Duplicates int
	Ungeocoded int
	Bypassed   int
	Categories int
	Candidates int
}

// FileResult is a worker's answer for one FileJob.
type FileResult struct {
	Seq          int
	Path         string
	Observations []entity.Observation
	Stats        FileStats
	Err          error
	Elapsed      time.Duration
}

// Parser runs read → extract → split → dedup → geocode for a document. It
// never touches the store.
type Parser struct {
	reader    readers.GridReader
	extractor *extract.Extractor
	splitter  *place.Splitter
	norm      *normalize.Normalizer
	geocoder  Geocoder
	local     CategoryLookup
	opts      ParserOptions
	logger    *slog.Logger
}

// NewParser wires a Parser. local may be nil to skip category resolution.
func NewParser(reader readers.GridReader, v *vocab.Vocabulary, geocoder Geocoder, local CategoryLookup, opts ParserOptions, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = vocab.Default()
	}
	if opts.CategoryRadius <= 0 {
		opts.CategoryRadius = 300
	}
	return &Parser{
		reader:    reader,
		extractor: extract.NewExtractor(v, logger),
		splitter:  place.NewSplitter(v),
		norm:      normalize.New(v),
		geocoder:  geocoder,
		local:     local,
		opts:      opts,
		logger:    logger,
	}
}

// ParseFile reads one document and returns its observations. Read failures
// are reported in FileResult.Err; cancellation stops after the current row.
func (p *Parser) ParseFile(ctx context.Context, job FileJob) (res FileResult) {
	start := time.Now()
	res = FileResult{Seq: job.Seq, Path: job.Source.Path}
	defer func() { res.Elapsed = time.Since(start) }()

	hash, err := ingest.HashFile(job.Source.Path)
	if err != nil {
		res.Err = common.MalformedDocument(job.Source.Path, err)
		return res
	}
	grids, err := p.reader.ReadGrids(ctx, job.Source.Path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Stats.Grids = len(grids)

	seen := dedup.NewSeenSet()
	for _, g := range grids {
		rows, strategy := p.extractor.FromGrid(g.Rows)
		res.Stats.Rows += len(rows)
		if len(rows) > 0 {
			p.logger.Debug("pipeline.grid.rows",
				"file", job.Source.Path, "grid", g.Label,
				"rows", len(rows), "strategy", strategy,
			)
		}
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				res.Err = err
				return res
			}
			obs, ok := p.processRow(ctx, row, seen, &res.Stats)
			if !ok {
				continue
			}
			obs.Fingerprint = Fingerprint(hash, g.Label, row.Ordinal)
			obs.Source = filepath.Base(job.Source.Path) + "#" + g.Label
			res.Observations = append(res.Observations, obs)
		}
	}
	res.Stats.Candidates = len(res.Observations)
	res.Elapsed = time.Since(start)
	p.logger.Info("pipeline.file.parsed",
		"file", job.Source.Path,
		"grids", res.Stats.Grids,
		"rows", res.Stats.Rows,
		"candidates", res.Stats.Candidates,
		"duplicates", res.Stats.Duplicates,
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res
}

func (p *Parser) processRow(ctx context.Context, row entity.CandidateRow, seen *dedup.SeenSet, stats *FileStats) (entity.Observation, bool) {
	q := p.splitter.Qualifier()

	text := p.norm.Text(row.PlaceRaw)
	if extract.LooksLikeGarbage(text) {
		stats.Garbage++
		return entity.Observation{}, false
	}
	if q.IsEventBooth(text) {
		stats.Events++
		return entity.Observation{}, false
	}

	name, address := p.splitter.Split(row.PlaceRaw)
	if address == "" && row.FromAddressColumn && row.AddressCell != "" {
		name, address = q.Clean(row.NameCell), row.AddressCell
		stats.Bypassed++
		recordAddressBypass()
		p.logger.Info("place.address_column.bypass",
			"name", name,
			"address", address,
			"score", p.splitter.Scorer().Score(address),
		)
	}
	if name != "" && q.IsNonFood(name) {
		name = ""
	}
	name, address = entity.IdentityKey(name, address)
	if name == "" && address == "" {
		stats.Empty++
		return entity.Observation{}, false
	}
	if !seen.Add(name, address) {
		stats.Duplicates++
		return entity.Observation{}, false
	}

	keyword := address
	if keyword == "" {
		keyword = name
	}
	loc := entity.Unresolved()
	if p.geocoder != nil {
		loc = p.geocoder.Geocode(ctx, keyword)
	}
	if !loc.Resolved() {
		stats.Ungeocoded++
		if !p.opts.AllowNoGeocode {
			return entity.Observation{}, false
		}
	}
	if address == "" && p.opts.FillAddressFromGeo && loc.Address != "" {
		address = normalize.Truncate(p.norm.Text(loc.Address), entity.MaxAddressRunes)
	}

	obs := entity.Observation{
		Name:    name,
		Address: address,
		Lat:     loc.Lat,
		Lng:     loc.Lng,
		Price:   PricePerPerson(row.AmountTotal, row.PersonCount),
	}
	if p.local != nil && name != "" {
		r := p.local.Lookup(ctx, name, loc.Lat, loc.Lng, address, p.opts.CategoryRadius)
		if r.Status == resolve.LookupOK {
			obs.Category = r.Category
			obs.Phone = r.Phone
			stats.Categories++
		}
	}
	return obs, true
}

// PricePerPerson derives the per-person price of a spend row: the amount
// divided by the head count when that is positive, else the amount itself.
// Out-of-range inputs are treated as absent.
func PricePerPerson(amount *int64, people *int) *int64 {
	if amount == nil {
		return nil
	}
	if people != nil && (*people > MaxPersonCount || *people < 0) {
		people = nil
	}
	v := *amount
	if people != nil && *people > 0 {
		v = floorDiv(v, int64(*people))
	}
	if v <= 0 || v > MaxPrice {
		return nil
	}
	return &v
}

// Fingerprint identifies one source row across runs.
func Fingerprint(fileHash, gridLabel string, ordinal int) string {
	h := sha256.New()
	h.Write([]byte(fileHash))
	h.Write([]byte{0})
	h.Write([]byte(gridLabel))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(ordinal)))
	return hex.EncodeToString(h.Sum(nil))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// isMalformed reports whether a file failure came from the document itself.
func isMalformed(err error) bool {
	return errors.Is(err, common.ErrMalformedDocument) || errors.Is(err, common.ErrUnsupportedFormat)
}
