package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hackseek/scraper/internal/dedupe"
	"github.com/hackseek/scraper/internal/model"
	"github.com/hackseek/scraper/internal/normalize"
	"github.com/hackseek/scraper/internal/source"
	"github.com/hackseek/scraper/internal/store"
)

// DefaultMaxItemsPerRun caps how many discovered URLs one adapter
// processes in a single cycle.
const DefaultMaxItemsPerRun = 50

// Options tunes a single engine instance.
type Options struct {
	// MaxItemsPerRun bounds discovered URLs per adapter per cycle.
	// Zero means DefaultMaxItemsPerRun.
	MaxItemsPerRun int
	// Parallelism bounds concurrent item fetch+parse within one adapter
	// run. Zero or one means sequential. The fetch client's own delay and
	// connection caps still apply underneath.
	Parallelism int
}

// Engine drives source adapters through a full discover, parse,
// normalize, persist cycle and records job history for each run.
type Engine struct {
	sources *source.Registry
	store   store.Store
	opts    Options
}

// New creates an Engine over the given registry and store.
func New(sources *source.Registry, st store.Store, opts Options) *Engine {
	if opts.MaxItemsPerRun <= 0 {
		opts.MaxItemsPerRun = DefaultMaxItemsPerRun
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Engine{sources: sources, store: st, opts: opts}
}

// RunAll runs every adapter in the registry sequentially and returns one
// result per adapter. A panic escaping one adapter is converted into a
// failed result so the remaining adapters still run.
func (e *Engine) RunAll(ctx context.Context) []model.ScrapeResult {
	adapters := e.sources.All()
	results := make([]model.ScrapeResult, 0, len(adapters))
	for _, src := range adapters {
		results = append(results, e.runGuarded(ctx, src))
	}

	var found, saved, errs int
	succeeded := 0
	for _, r := range results {
		found += r.ItemsFound
		saved += r.ItemsSaved
		errs += r.ErrorsCount
		if r.Success {
			succeeded++
		}
	}
	zap.L().Info("engine: cycle complete",
		zap.Int("adapters", len(results)),
		zap.Int("succeeded", succeeded),
		zap.Int("items_found", found),
		zap.Int("items_saved", saved),
		zap.Int("errors", errs),
	)
	return results
}

// runGuarded converts a panic inside one adapter run into a failed
// result instead of letting it take down the whole cycle.
func (e *Engine) runGuarded(ctx context.Context, src source.Source) (result model.ScrapeResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("engine: adapter panicked",
				zap.String("platform", src.Name()),
				zap.Any("panic", r),
			)
			result = model.ScrapeResult{
				Platform:     src.Name(),
				Success:      false,
				ErrorMessage: fmt.Sprintf("adapter panic: %v", r),
			}
		}
	}()
	return e.RunOne(ctx, src)
}

// RunOne drives a single adapter through one full cycle. Only a failed
// discovery of a mandatory listing page fails the run; every per-item
// failure is counted and skipped.
func (e *Engine) RunOne(ctx context.Context, src source.Source) model.ScrapeResult {
	log := zap.L().With(zap.String("platform", src.Name()))
	started := time.Now()
	log.Info("engine: run starting")

	urls, err := src.Discover(ctx)
	if err != nil {
		result := model.ScrapeResult{
			Platform:     src.Name(),
			Success:      false,
			ErrorMessage: err.Error(),
			Duration:     time.Since(started),
		}
		log.Error("engine: discovery failed", zap.Error(err))
		e.recordJob(ctx, result, started)
		return result
	}
	if len(urls) > e.opts.MaxItemsPerRun {
		log.Info("engine: capping discovered urls",
			zap.Int("discovered", len(urls)),
			zap.Int("cap", e.opts.MaxItemsPerRun),
		)
		urls = urls[:e.opts.MaxItemsPerRun]
	}

	scrapedAt := time.Now().UTC()
	var (
		mu      sync.Mutex
		records []model.Hackathon
		errs    int
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallelism)
	for _, url := range urls {
		g.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			raw, parseErr := src.ParseItem(groupCtx, url)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case parseErr != nil:
				errs++
				log.Warn("engine: item failed",
					zap.String("url", url), zap.Error(parseErr))
			case raw == nil || raw.Title == "":
				errs++
				log.Debug("engine: item skipped", zap.String("url", url))
			default:
				records = append(records, normalize.Record(*raw, src.Name(), scrapedAt))
			}
			return nil
		})
	}
	_ = g.Wait()

	dupPairs := dedupe.FindDuplicates(records)

	saved := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		if _, upsertErr := e.store.UpsertHackathon(ctx, rec); upsertErr != nil {
			errs++
			log.Warn("engine: upsert failed",
				zap.String("title", rec.Title), zap.Error(upsertErr))
			continue
		}
		saved++
	}

	result := model.ScrapeResult{
		Platform:        src.Name(),
		Success:         true,
		ItemsFound:      len(records),
		ItemsSaved:      saved,
		ErrorsCount:     errs,
		DuplicatesCount: len(dupPairs),
		Duration:        time.Since(started),
	}
	log.Info("engine: run complete",
		zap.Int("items_found", result.ItemsFound),
		zap.Int("items_saved", result.ItemsSaved),
		zap.Int("errors", result.ErrorsCount),
		zap.Int("duplicates", result.DuplicatesCount),
		zap.Duration("duration", result.Duration),
	)
	e.recordJob(ctx, result, started)
	return result
}

// recordJob appends the audit row for one adapter run. Recording is
// best-effort; a store failure here is logged and does not change the
// run's outcome.
func (e *Engine) recordJob(ctx context.Context, result model.ScrapeResult, started time.Time) {
	job := model.ScrapeJob{
		ID:          uuid.NewString(),
		Platform:    result.Platform,
		Status:      model.JobCompleted,
		ItemsFound:  result.ItemsFound,
		ItemsSaved:  result.ItemsSaved,
		ErrorsCount: result.ErrorsCount,
		StartedAt:   started.UTC(),
		CompletedAt: time.Now().UTC(),
	}
	if !result.Success {
		job.Status = model.JobFailed
		job.ErrorDetail = map[string]any{"error": result.ErrorMessage}
	}
	// Use a detached context so a cancelled run still records its partial
	// bookkeeping.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := e.store.RecordJobRun(recordCtx, job); err != nil {
		zap.L().Warn("engine: record job run failed",
			zap.String("platform", result.Platform), zap.Error(err))
	}
}
