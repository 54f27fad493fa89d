package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
	"github.com/joseph-ayodele/restaurant-seeder/internal/async"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/dedup"
	"github.com/joseph-ayodele/restaurant-seeder/internal/entity"
	"github.com/joseph-ayodele/restaurant-seeder/internal/ingest"
	"github.com/joseph-ayodele/restaurant-seeder/internal/upsert"
)

// Options controls one orchestrator run.
type Options struct {
	BaseDir          string
	Limit            int // 0 = unlimited
	CommitEvery      int
	Workers          int
	FileTimeout      time.Duration
	CommitRetries    int // total commit attempts per batch
	CommitRetryDelay time.Duration
}

// OptionsFromConfig maps the seed configuration onto run options.
func OptionsFromConfig(cfg common.SeedConfig) Options {
	return Options{
		BaseDir:          cfg.BaseDir,
		Limit:            cfg.Limit,
		CommitEvery:      cfg.CommitEvery,
		Workers:          cfg.Workers,
		FileTimeout:      cfg.FileTimeout,
		CommitRetries:    cfg.CommitRetries,
		CommitRetryDelay: cfg.CommitRetryDelay,
	}
}

// Orchestrator streams documents through the parser on a worker queue and
// applies the results, in scan order, on a single consuming goroutine.
type Orchestrator struct {
	opts    Options
	scanner *ingest.Scanner
	parser  *Parser
	engine  *upsert.Engine
	store   upsert.Beginner
	logger  *slog.Logger
}

func NewOrchestrator(opts Options, parser *Parser, engine *upsert.Engine, store upsert.Beginner, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = upsert.NewEngine(logger)
	}
	if opts.CommitEvery <= 0 {
		opts.CommitEvery = 200
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.CommitRetries <= 0 {
		opts.CommitRetries = 3
	}
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	return &Orchestrator{
		opts:    opts,
		scanner: ingest.NewScanner(logger),
		parser:  parser,
		engine:  engine,
		store:   store,
		logger:  logger,
	}
}

// batch is the open transaction and the observations applied in it.
type batch struct {
	tx      upsert.Batch
	pending []entity.Observation
	tally   tally
	err     error // why tx was lost, if it was
}

func (b *batch) reset() {
	b.tx = nil
	b.pending = b.pending[:0]
	b.tally = tally{}
	b.err = nil
}

// run is the consuming goroutine's state.
type run struct {
	sum  *RunSummary
	seen *dedup.SeenSet
	b    *batch
	log  *slog.Logger
}

// Run executes one seeding pass over the base directory. A missing base
// directory yields an empty run and no error.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, error) {
	sum := RunSummary{
		RunID:     ulid.Make().String(),
		BaseDir:   o.opts.BaseDir,
		StartedAt: time.Now().UTC(),
	}
	ctx = common.WithRunID(ctx, sum.RunID)
	log := o.logger.With("run_id", sum.RunID)

	sources, dirStats, err := o.scanner.Scan(ctx, o.opts.BaseDir)
	if errors.Is(err, ingest.ErrBaseDirMissing) {
		log.Warn("pipeline.base_dir.missing", "base_dir", o.opts.BaseDir)
		sum.finish(constants.RunStatusEmpty)
		return sum, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			sum.finish(constants.RunStatusCanceled)
			return sum, nil
		}
		sum.finish(constants.RunStatusPartial)
		return sum, err
	}
	sum.FilesScanned = len(sources)
	recordFilesScanned(len(sources))
	log.Info("pipeline.run.start",
		"base_dir", o.opts.BaseDir,
		"files", len(sources),
		"hidden", dirStats.Hidden,
		"workers", o.opts.Workers,
		"limit", o.opts.Limit,
	)
	if len(sources) == 0 {
		sum.finish(constants.RunStatusEmpty)
		log.Info("pipeline.run.done", sum.LogAttrs()...)
		return sum, nil
	}

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	q := async.New(dispatchCtx, o.parser.ParseFile, log,
		async.WithWorkers(o.opts.Workers),
		async.WithQueueSize(o.opts.Workers),
		async.WithProcessTimeout(o.opts.FileTimeout),
	)
	go func() {
		defer q.Shutdown()
		for i, src := range sources {
			if dispatchCtx.Err() != nil {
				return
			}
			if err := q.Enqueue(dispatchCtx, FileJob{Seq: i, Source: src}); err != nil {
				return
			}
		}
	}()

	// Store work outlives cancellation so the last batch is still committed.
	dbCtx := context.WithoutCancel(ctx)
	r := &run{sum: &sum, seen: dedup.NewSeenSet(), b: &batch{}, log: log}

	buffered := make(map[int]FileResult)
	next, stopped := 0, false
	for res := range q.Results() {
		if stopped {
			continue
		}
		buffered[res.Seq] = res
		for !stopped {
			fr, ok := buffered[next]
			if !ok {
				break
			}
			delete(buffered, next)
			next++
			if !o.consumeFile(ctx, dbCtx, r, fr) {
				stopped = true
				stopDispatch()
			}
		}
	}
	o.flush(dbCtx, r)

	switch {
	case ctx.Err() != nil:
		sum.finish(constants.RunStatusCanceled)
	case sum.FilesFailed > 0 || sum.Errors > 0:
		sum.finish(constants.RunStatusPartial)
	default:
		sum.finish(constants.RunStatusOK)
	}
	log.Info("pipeline.run.done", sum.LogAttrs()...)
	return sum, nil
}

// consumeFile applies one file's observations. It returns false when the run
// must stop dispatching.
func (o *Orchestrator) consumeFile(ctx, dbCtx context.Context, r *run, fr FileResult) bool {
	if ctx.Err() != nil {
		return false
	}
	if fr.Err != nil {
		r.sum.FilesFailed++
		recordFileFailed()
		attrs := []any{"file", fr.Path, "err", fr.Err, "elapsed_ms", fr.Elapsed.Milliseconds()}
		if isMalformed(fr.Err) {
			r.log.Warn("pipeline.file.malformed", attrs...)
		} else {
			r.log.Error("pipeline.file.failed", attrs...)
		}
		return true
	}

	r.sum.FilesParsed++
	r.sum.Rows += fr.Stats.Rows
	r.sum.Candidates += fr.Stats.Candidates
	r.sum.Duplicates += fr.Stats.Duplicates
	recordFileParsed(fr.Elapsed)
	recordFileStats(fr.Stats)

	for _, obs := range fr.Observations {
		if ctx.Err() != nil {
			return false
		}
		if o.limitReached(r) {
			return false
		}
		if !r.seen.Add(obs.Key()) {
			r.sum.Duplicates++
			recordRunDuplicate()
			continue
		}
		o.apply(dbCtx, r, obs)
		if len(r.b.pending) >= o.opts.CommitEvery {
			o.flush(dbCtx, r)
		}
	}
	r.log.Debug("pipeline.file.done", "file", fr.Path, "candidates", len(fr.Observations))
	return !o.limitReached(r)
}

func (o *Orchestrator) limitReached(r *run) bool {
	if o.opts.Limit == 0 {
		return false
	}
	if r.sum.Processed()+len(r.b.pending) >= o.opts.Limit {
		if !r.sum.LimitReached {
			r.log.Info("pipeline.limit.reached", "limit", o.opts.Limit)
		}
		r.sum.LimitReached = true
		return true
	}
	return false
}

// apply runs one observation in the open batch, opening it when needed.
func (o *Orchestrator) apply(ctx context.Context, r *run, obs entity.Observation) {
	b := r.b
	if b.tx == nil {
		tx, err := o.store.BeginBatch(ctx)
		if err != nil {
			r.sum.Errors++
			recordErrors(1)
			r.log.Error("upsert.batch.begin_failed", "err", err)
			return
		}
		b.tx = tx
	}

	out, err := o.engine.Apply(ctx, b.tx.Store(), obs)
	if err == nil {
		b.pending = append(b.pending, obs)
		b.tally.add(out)
		return
	}

	r.sum.Errors++
	recordErrors(1)
	r.log.Warn("upsert.apply_failed", "name", obs.Name, "address", obs.Address, "err", err)
	if errors.Is(err, common.ErrInvalidInput) {
		return
	}
	// A failed statement can poison the transaction; restart the batch.
	_ = b.tx.Rollback()
	b.tx, b.err = nil, err
	if len(b.pending) == 0 {
		b.reset()
		return
	}
	o.flush(ctx, r)
}

// flush commits the open batch. A failed commit is rolled back and the batch
// replayed in a fresh transaction, up to CommitRetries attempts in total;
// after that the batch's observations are counted as errors.
func (o *Orchestrator) flush(ctx context.Context, r *run) {
	b := r.b
	for attempt := 1; ; attempt++ {
		err := o.commit(b)
		if err == nil {
			b.tally.mergeInto(r.sum)
			if len(b.pending) > 0 {
				r.log.Debug("upsert.batch.committed", "records", len(b.pending), "attempt", attempt)
			}
			b.reset()
			return
		}
		r.log.Warn("upsert.batch.commit_failed", "attempt", attempt, "records", len(b.pending), "err", err)
		if attempt >= o.opts.CommitRetries {
			r.sum.Errors += len(b.pending)
			recordErrors(len(b.pending))
			r.log.Error("upsert.batch.dropped", "records", len(b.pending), "attempts", attempt)
			b.reset()
			return
		}
		r.sum.CommitRetries++
		recordCommitRetry()
		time.Sleep(o.opts.CommitRetryDelay)
		o.replay(ctx, b)
	}
}

func (o *Orchestrator) commit(b *batch) error {
	if b.tx == nil {
		return b.err
	}
	start := time.Now()
	err := b.tx.Commit()
	if err != nil {
		_ = b.tx.Rollback()
		b.tx, b.err = nil, err
		return err
	}
	recordCommit(time.Since(start))
	b.tx = nil
	return nil
}

// replay re-applies every pending observation in a new transaction.
func (o *Orchestrator) replay(ctx context.Context, b *batch) {
	tx, err := o.store.BeginBatch(ctx)
	if err != nil {
		b.err = err
		return
	}
	b.tally = tally{}
	for _, obs := range b.pending {
		out, err := o.engine.Apply(ctx, tx.Store(), obs)
		if err != nil {
			_ = tx.Rollback()
			b.err = err
			return
		}
		b.tally.add(out)
	}
	b.tx, b.err = tx, nil
}
