package pipeline

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// seedMetrics holds Prometheus metrics for the seeding pipeline.
type seedMetrics struct {
	once sync.Once

	// Files
	filesScanned prometheus.Counter
	filesParsed  prometheus.Counter
	filesFailed  prometheus.Counter

	// Rows
	rowsExtracted    prometheus.Counter
	candidates       prometheus.Counter
	addressBypassed  prometheus.Counter
	rowsUngeocoded   prometheus.Counter
	duplicatesInFile prometheus.Counter
	duplicatesInRun  prometheus.Counter

	// Records
	recordsCreated prometheus.Counter
	recordsUpdated prometheus.Counter
	recordsSkipped prometheus.Counter
	recordErrors   prometheus.Counter
	commitRetries  prometheus.Counter

	// Resolver caches
	geocodeCacheHits   prometheus.Counter
	geocodeCacheMisses prometheus.Counter
	localCacheHits     prometheus.Counter
	localCacheMisses   prometheus.Counter

	// Durations
	parseDuration  prometheus.Histogram
	commitDuration prometheus.Histogram
}

var metrics seedMetrics

func (m *seedMetrics) init() {
	m.once.Do(func() {
		m.filesScanned = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_files_scanned_total", Help: "Supported documents found under the base directory"})
		m.filesParsed = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_files_parsed_total", Help: "Documents parsed successfully"})
		m.filesFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_files_failed_total", Help: "Documents skipped because they could not be read"})

		m.rowsExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_rows_extracted_total", Help: "Candidate rows extracted from document tables"})
		m.candidates = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_candidates_total", Help: "Observations produced by the row pipeline"})
		m.addressBypassed = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_address_column_bypass_total", Help: "Address-column values accepted without a confident address score"})
		m.rowsUngeocoded = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_rows_ungeocoded_total", Help: "Rows without resolved coordinates"})
		m.duplicatesInFile = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_duplicates_file_total", Help: "Rows dropped by per-document dedup"})
		m.duplicatesInRun = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_duplicates_run_total", Help: "Observations dropped by run-level dedup"})

		m.recordsCreated = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_records_created_total", Help: "Restaurant records inserted"})
		m.recordsUpdated = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_records_updated_total", Help: "Restaurant records updated"})
		m.recordsSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_records_skipped_total", Help: "Observations that changed nothing"})
		m.recordErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_record_errors_total", Help: "Observations lost to upsert or commit failures"})
		m.commitRetries = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_commit_retries_total", Help: "Batch commits replayed after a failure"})

		m.geocodeCacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_geocode_cache_hits_total", Help: "Geocode lookups served from cache"})
		m.geocodeCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_geocode_cache_misses_total", Help: "Geocode lookups sent to the API"})
		m.localCacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_local_search_cache_hits_total", Help: "Local search lookups served from cache"})
		m.localCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "seed_local_search_cache_misses_total", Help: "Local search lookups sent to the API"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "seed_file_parse_seconds", Help: "Time to read and resolve one document", Buckets: buckets})
		m.commitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "seed_batch_commit_seconds", Help: "Time to commit one batch", Buckets: buckets})

		prometheus.MustRegister(
			m.filesScanned, m.filesParsed, m.filesFailed,
			m.rowsExtracted, m.candidates, m.addressBypassed, m.rowsUngeocoded,
			m.duplicatesInFile, m.duplicatesInRun,
			m.recordsCreated, m.recordsUpdated, m.recordsSkipped, m.recordErrors, m.commitRetries,
			m.geocodeCacheHits, m.geocodeCacheMisses, m.localCacheHits, m.localCacheMisses,
			m.parseDuration, m.commitDuration,
		)
	})
}

func recordFilesScanned(n int) { metrics.init(); metrics.filesScanned.Add(float64(n)) }

func recordFileParsed(d time.Duration) {
	metrics.init()
	metrics.filesParsed.Inc()
	metrics.parseDuration.Observe(d.Seconds())
}

func recordFileFailed() { metrics.init(); metrics.filesFailed.Inc() }

func recordFileStats(s FileStats) {
	metrics.init()
	metrics.rowsExtracted.Add(float64(s.Rows))
	metrics.candidates.Add(float64(s.Candidates))
	metrics.rowsUngeocoded.Add(float64(s.Ungeocoded))
	metrics.duplicatesInFile.Add(float64(s.Duplicates))
}

func recordAddressBypass() { metrics.init(); metrics.addressBypassed.Inc() }

func recordRunDuplicate() { metrics.init(); metrics.duplicatesInRun.Inc() }

func recordCommitted(created, updated, skipped int) {
	metrics.init()
	metrics.recordsCreated.Add(float64(created))
	metrics.recordsUpdated.Add(float64(updated))
	metrics.recordsSkipped.Add(float64(skipped))
}

func recordErrors(n int) { metrics.init(); metrics.recordErrors.Add(float64(n)) }

func recordCommit(d time.Duration) { metrics.init(); metrics.commitDuration.Observe(d.Seconds()) }

func recordCommitRetry() { metrics.init(); metrics.commitRetries.Inc() }

// GeocodeCacheObserver feeds geocode cache hits and misses into the pipeline metrics.
func GeocodeCacheObserver(hit bool) {
	metrics.init()
	if hit {
		metrics.geocodeCacheHits.Inc()
		return
	}
	metrics.geocodeCacheMisses.Inc()
}

// LocalSearchCacheObserver feeds local search cache hits and misses into the pipeline metrics.
func LocalSearchCacheObserver(hit bool) {
	metrics.init()
	if hit {
		metrics.localCacheHits.Inc()
		return
	}
	metrics.localCacheMisses.Inc()
}
