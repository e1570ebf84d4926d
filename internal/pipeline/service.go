// Package pipeline composes search, fetch and enrichment into one run.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/assemble"
	"github.com/newspulse/newspulse/internal/cache"
	"github.com/newspulse/newspulse/internal/metrics"
	"github.com/newspulse/newspulse/internal/news"
)

// Aggregator collects deduplicated search hits across query terms.
type Aggregator interface {
	Aggregate(ctx context.Context, query string, period news.Period, minArticles int) []news.SearchHit
}

// Fetcher fans fetches out over the worker pool.
type Fetcher interface {
	FetchAll(ctx context.Context, hits []news.SearchHit) []news.ArticleRecord
}

// Assembler enriches fetched records.
type Assembler interface {
	Assemble(records []news.ArticleRecord) ([]news.EnrichedRecord, []news.EntityMention)
}

// Config controls run behavior.
type Config struct {
	Timeout     time.Duration
	MinArticles int
	EventTopic  string
	TopEntities int
}

// Request is one pipeline invocation.
type Request struct {
	Query       string
	Period      news.Period
	MinArticles int
}

// RunEvent is the payload published after each completed run.
type RunEvent struct {
	RunID    string        `json:"run_id"`
	Query    string        `json:"query"`
	Period   news.Period   `json:"period"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"duration"`
}

// Service executes the full acquisition and enrichment pipeline. Publisher
// and archive are optional; cache may be nil to disable result reuse.
type Service struct {
	aggregator Aggregator
	fetcher    Fetcher
	assembler  Assembler
	results    *cache.ResultCache
	publisher  news.Publisher
	archive    news.ArchiveStore
	clock      news.Clock
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Service.
func New(
	aggregator Aggregator,
	fetcher Fetcher,
	assembler Assembler,
	results *cache.ResultCache,
	publisher news.Publisher,
	archive news.ArchiveStore,
	clock news.Clock,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.MinArticles <= 0 {
		cfg.MinArticles = 30
	}
	if cfg.TopEntities <= 0 {
		cfg.TopEntities = 20
	}
	metrics.Init()
	return &Service{
		aggregator: aggregator,
		fetcher:    fetcher,
		assembler:  assembler,
		results:    results,
		publisher:  publisher,
		archive:    archive,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes one pipeline pass. A run where every term fails or nothing
// survives fetching yields an explicit empty Result, never an error; the
// error return is reserved for invalid requests.
func (s *Service) Run(ctx context.Context, req Request) (news.Result, error) {
	if !req.Period.Valid() {
		return news.Result{}, &InvalidPeriodError{Period: req.Period}
	}
	minArticles := req.MinArticles
	if minArticles <= 0 {
		minArticles = s.cfg.MinArticles
	}

	if s.results != nil {
		if cached, ok := s.results.Get(req.Query, req.Period); ok {
			s.logger.Debug("serving cached result",
				zap.String("query", req.Query),
				zap.String("period", string(req.Period)),
			)
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	started := s.clock.Now().UTC()
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))

	hits := s.aggregator.Aggregate(ctx, req.Query, req.Period, minArticles)
	records := s.fetcher.FetchAll(ctx, hits)
	enriched, mentions := s.assembler.Assemble(records)

	freq := assemble.Frequencies(mentions)
	result := news.Result{
		RunID:       runID,
		Query:       req.Query,
		Period:      req.Period,
		Records:     enriched,
		Entities:    mentions,
		Frequencies: freq,
		TopEntities: assemble.TopEntities(freq, s.cfg.TopEntities),
		StartedAt:   started,
		Duration:    s.clock.Now().UTC().Sub(started),
	}
	metrics.ObservePipelineDuration(result.Duration)

	logger.Info("pipeline run complete",
		zap.String("query", req.Query),
		zap.Int("hits", len(hits)),
		zap.Int("records", len(enriched)),
		zap.Int("mentions", len(mentions)),
		zap.Duration("duration", result.Duration),
	)

	if s.results != nil && len(result.Records) > 0 {
		s.results.Put(req.Query, req.Period, result)
	}
	s.notify(ctx, result, logger)
	return result, nil
}

// notify publishes the run event and archives the result. Both are
// best-effort: failures are logged, never surfaced to the caller.
func (s *Service) notify(ctx context.Context, result news.Result, logger *zap.Logger) {
	if s.publisher != nil {
		event := RunEvent{
			RunID:    result.RunID,
			Query:    result.Query,
			Period:   result.Period,
			Records:  len(result.Records),
			Duration: result.Duration,
		}
		if _, err := s.publisher.Publish(ctx, s.cfg.EventTopic, event); err != nil {
			logger.Warn("run event publish failed", zap.Error(err))
		}
	}
	if s.archive != nil && len(result.Records) > 0 {
		if err := s.archive.StoreRun(ctx, result); err != nil {
			logger.Warn("archive store failed", zap.Error(err))
		}
	}
}

// InvalidPeriodError reports an unsupported recency window.
type InvalidPeriodError struct {
	Period news.Period
}

func (e *InvalidPeriodError) Error() string {
	return "invalid period " + string(e.Period)
}
