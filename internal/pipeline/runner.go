// Package pipeline orchestrates one batch run: decompose documents into
// pages, extract each page, and collect outcomes into an ordered result.
//
// Pages are independent, so extraction calls are dispatched to a bounded
// worker pool. Each page's slot in the result is fixed by the index
// assigned at decomposition time, which keeps the output in input order no
// matter which calls finish first. A shared rate limiter guards the
// inference-service quota; MaxConcurrency 1 reproduces strictly sequential
// processing.
package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"checkparser/internal/document"
	"checkparser/internal/extract"
	"checkparser/internal/logger"
	"checkparser/pkg/models"
)

// Decomposer is the document-splitting dependency of the runner.
type Decomposer interface {
	Decompose(ctx context.Context, docs []models.RawDocument) ([]models.PageImage, []error)
}

// Config tunes a batch run.
type Config struct {
	// MaxConcurrency is the number of extraction calls in flight at once.
	// 1 processes pages strictly sequentially.
	MaxConcurrency int

	// RateLimitRPM caps inference requests per minute across all workers.
	// 0 disables the limiter.
	RateLimitRPM int

	// OnProgress, when set, is called after each page completes with the
	// number of completed pages and the total. Purely observational.
	OnProgress func(completed, total int)
}

// Runner executes batch runs. It holds no state between runs.
type Runner struct {
	decomposer Decomposer
	extractor  extract.Extractor
	config     Config
	log        zerolog.Logger
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(decomposer Decomposer, extractor extract.Extractor, config Config) *Runner {
	if config.MaxConcurrency < 1 {
		config.MaxConcurrency = 1
	}
	return &Runner{
		decomposer: decomposer,
		extractor:  extractor,
		config:     config,
		log:        logger.WithComponent("pipeline"),
	}
}

// NewDefaultRunner wires the production decomposer and extractor.
func NewDefaultRunner(dpi float64, config Config) (*Runner, error) {
	extractor, err := extract.NewVisionExtractor()
	if err != nil {
		return nil, err
	}
	return NewRunner(document.NewDecomposer(dpi), extractor, config), nil
}

// Run processes all documents and returns the ordered batch result.
//
// A page failure of any kind is recorded at that page's index and never
// aborts the batch; a document that cannot be decomposed at all is
// reported in BatchResult.DocumentErrors and the rest of the batch still
// runs. Cancellation stops dispatching new pages; pages already dispatched
// record their own outcome (possibly a context error) at their index.
func (r *Runner) Run(ctx context.Context, docs []models.RawDocument) (models.BatchResult, error) {
	pages, docErrs := r.decomposer.Decompose(ctx, docs)
	total := len(pages)

	r.log.Info().
		Int("documents", len(docs)).
		Int("pages", total).
		Int("decomposition_failures", len(docErrs)).
		Int("max_concurrency", r.config.MaxConcurrency).
		Msg("Starting batch run")

	result := models.BatchResult{
		Pages:          make([]models.PageOutcome, total),
		DocumentErrors: docErrs,
	}

	var limiter *rate.Limiter
	if r.config.RateLimitRPM > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(r.config.RateLimitRPM)/60.0), 1)
	}

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.MaxConcurrency)

	for i, page := range pages {
		g.Go(func() error {
			outcome := models.PageOutcome{Index: page.Index}

			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					outcome.Err = err
					result.Pages[i] = outcome
					r.reportProgress(&mu, &completed, total)
					return nil
				}
			}

			record, err := r.extractor.Extract(gctx, page)
			if err != nil {
				r.log.Warn().
					Err(err).
					Int("page", page.Index).
					Str("source", page.SourceName).
					Msg("Page extraction failed")
				outcome.Err = err
			} else {
				outcome.Record = record
			}
			result.Pages[i] = outcome
			r.reportProgress(&mu, &completed, total)
			return nil
		})
	}

	// Workers never return errors; page failures live in their slots.
	_ = g.Wait()

	succeeded := len(result.Succeeded())
	r.log.Info().
		Int("pages", total).
		Int("succeeded", succeeded).
		Int("failed", total-succeeded).
		Msg("Batch run finished")

	return result, nil
}

func (r *Runner) reportProgress(mu *sync.Mutex, completed *int, total int) {
	mu.Lock()
	*completed++
	done := *completed
	mu.Unlock()
	if r.config.OnProgress != nil {
		r.config.OnProgress(done, total)
	}
}
