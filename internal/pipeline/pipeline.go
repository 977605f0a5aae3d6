// Package pipeline runs one ETL pass: list symbols, process them with a
// bounded worker pool, persist the results and roll them up per industry.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/collector"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/recorder"
)

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 8

// Options configures a Pipeline.
type Options struct {
	Industries []string
	Workers    int
	DryRun     bool
}

// Pipeline orchestrates a single ETL run.
type Pipeline struct {
	Fetcher   collector.Fetcher
	Processor *collector.Processor
	Recorder  recorder.Recorder

	industries []string
	workers    int
	dryRun     bool
	logger     arbor.ILogger
}

// New creates a Pipeline over the given client and store.
func New(fetcher collector.Fetcher, rec recorder.Recorder, opts Options, logger arbor.ILogger) *Pipeline {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		Fetcher:    fetcher,
		Processor:  collector.NewProcessor(fetcher, opts.Industries, logger),
		Recorder:   rec,
		industries: append([]string(nil), opts.Industries...),
		workers:    workers,
		dryRun:     opts.DryRun,
		logger:     logger,
	}
}

// Run executes the pipeline once. Per-symbol failures are counted and
// logged; only a failed symbol listing, a store error or cancellation abort
// the run. When the context is cancelled before persisting, nothing is written.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	summary := &model.RunSummary{
		RunID:     uuid.NewString(),
		DryRun:    p.dryRun,
		StartedAt: time.Now().UTC(),
	}
	logger := p.logger.WithCorrelationId(summary.RunID)
	logger.Info().Int("workers", p.workers).Strs("industries", p.industries).Msg("Starting ETL run")

	symbols, err := p.Fetcher.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	summary.SymbolsFetched = len(symbols)
	logger.Info().Int("symbols", len(symbols)).Msg("Fetched symbol universe")

	outcomes := p.processAll(ctx, symbols)
	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Msg("ETL run cancelled before persisting")
		return nil, err
	}

	results := make([]model.TickerResult, 0, len(outcomes))
	for _, o := range outcomes {
		switch o.Kind {
		case model.OutcomeProcessed:
			r := *o.Result
			r.RunID = summary.RunID
			results = append(results, r)
		case model.OutcomeFiltered:
			summary.Filtered++
		case model.OutcomeUpstreamError:
			summary.UpstreamErrors++
		default:
			summary.Failed++
		}
	}
	sortBySymbol(results)

	if err := p.Recorder.BulkSaveTickers(ctx, results); err != nil {
		return nil, fmt.Errorf("bulk save tickers: %w", err)
	}
	summary.TickersProcessed = len(results)

	for _, agg := range BuildAggregates(p.industries, results) {
		agg := agg
		if err := p.Recorder.SaveOrUpdateIndustryAggregate(ctx, &agg); err != nil {
			return nil, fmt.Errorf("save industry aggregate %q: %w", agg.Industry, err)
		}
		summary.IndustriesProcessed++
		logger.Debug().Str("industry", agg.Industry).Msg("Industry aggregate saved")
	}

	summary.FinishedAt = time.Now().UTC()
	logger.Info().
		Int("tickers", summary.TickersProcessed).
		Int("industries", summary.IndustriesProcessed).
		Int("filtered", summary.Filtered).
		Int("upstream_errors", summary.UpstreamErrors).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration()).
		Msg("ETL run completed")
	return summary, nil
}

// processAll fans symbols out to at most p.workers goroutines and collects
// the outcomes in completion order. It stops scheduling new symbols once ctx
// is done.
func (p *Pipeline) processAll(ctx context.Context, symbols []string) []model.SymbolOutcome {
	var (
		mu       sync.Mutex
		outcomes = make([]model.SymbolOutcome, 0, len(symbols))
		g        errgroup.Group
	)
	g.SetLimit(p.workers)

	for _, sym := range symbols {
		if ctx.Err() != nil {
			break
		}
		sym := sym
		g.Go(func() error {
			out := p.Processor.Process(ctx, sym)
			mu.Lock()
			outcomes = append(outcomes, out)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func sortBySymbol(results []model.TickerResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Symbol < results[j].Symbol
	})
}
