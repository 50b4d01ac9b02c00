package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// InfoLookup is the cache surface the engine needs. Implemented by services.InfoCache.
type InfoLookup interface {
	Cached(ctx context.Context, name string) models.ArtistInfo
	Peek(name string) (models.ArtistInfo, bool)
}

// RunRecorder persists enrichment runs. Implemented by repositories.EnrichmentRunRepository.
type RunRecorder interface {
	Create(run *models.EnrichmentRun) error
	Update(run *models.EnrichmentRun) error
}

// Engine runs the long-lived batch operations over the artist table.
type Engine struct {
	cache  InfoLookup
	runs   RunRecorder
	logger *log.Logger
}

// NewEngine creates an Engine. runs may be nil, in which case runs are not recorded.
func NewEngine(cache InfoLookup, runs RunRecorder, logger *log.Logger) *Engine {
	return &Engine{
		cache:  cache,
		runs:   runs,
		logger: shared.WithLogger(logger, "component", "tasks"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// EnrichOpts configures a cache warm-up.
type EnrichOpts struct {
	NumWorkers int     // Concurrent lookups (default: 4, max: 10)
	RateLimit  float64 // Lookups started per second (default: 5)
}

// EnrichResult reports a warm-up run.
type EnrichResult struct {
	Infos   []models.ArtistInfo // Completed lookups in input order
	Total   int                 // Distinct names requested
	Found   int                 // Lookups with a Spotify match
	Missing int                 // Lookups that fell back to defaults
	Run     *models.EnrichmentRun
}

type enrichJob struct {
	index int
	name  string
}

type enrichOutcome struct {
	index int
	info  models.ArtistInfo
}

func distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Enrich warms the info cache for names using a rate-limited worker pool.
//
// A failed lookup is a default record counted as missing, never an error. The only error
// is cancellation, returned alongside the partial result.
func (e *Engine) Enrich(ctx context.Context, names []string, opts EnrichOpts, progress chan<- ProgressUpdate) (*EnrichResult, error) {
	if e.cache == nil {
		return nil, fmt.Errorf("%w: info cache not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	names = distinct(names)
	total := len(names)
	result := &EnrichResult{Total: total}

	run := e.startRun(total)
	result.Run = run

	e.sendProgress(progress, enrichStartUpdate(total))
	e.logger.Info("enrichment started", "artists", total, "workers", opts.NumWorkers)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan enrichJob)
	outcomes := make(chan enrichOutcome, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.enrichWorker(ctx, &wg, jobs, outcomes)
	}

	go func() {
		defer close(jobs)
		for i, name := range names {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case jobs <- enrichJob{index: i, name: name}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	infos := make([]*models.ArtistInfo, total)
	completed := 0
	for out := range outcomes {
		completed++
		info := out.info
		infos[out.index] = &info
		if info.Found {
			result.Found++
		} else {
			result.Missing++
		}
		e.sendProgress(progress, enrichArtistUpdate(completed, total, info))
	}

	for _, info := range infos {
		if info != nil {
			result.Infos = append(result.Infos, *info)
		}
	}

	err := ctx.Err()
	e.finishRun(run, result, err)
	e.sendProgress(progress, enrichDoneUpdate(result))
	e.logger.Info("enrichment finished", "found", result.Found, "missing", result.Missing, "error", err)

	if err != nil {
		return result, fmt.Errorf("enrichment interrupted after %d of %d artists: %w", completed, total, err)
	}
	return result, nil
}

func (e *Engine) enrichWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan enrichJob, outcomes chan<- enrichOutcome) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		outcomes <- enrichOutcome{index: job.index, info: e.cache.Cached(ctx, job.name)}
	}
}

func (e *Engine) startRun(total int) *models.EnrichmentRun {
	run := models.NewEnrichmentRun(0, total)
	run.SetStatus(models.RunRunning)
	if e.runs == nil {
		return run
	}
	if err := e.runs.Create(run); err != nil {
		e.logger.Warn("failed to record enrichment run", "error", err)
	}
	return run
}

func (e *Engine) finishRun(run *models.EnrichmentRun, res *EnrichResult, err error) {
	run.SetCounts(res.Found, res.Missing)
	run.Complete(err)
	if e.runs == nil || run.ID() == "" {
		return
	}
	if err := e.runs.Update(run); err != nil {
		e.logger.Warn("failed to update enrichment run", "run", run.ID(), "error", err)
	}
}
