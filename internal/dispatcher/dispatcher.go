// Package dispatcher fans article fetches out over a bounded worker pool.
package dispatcher

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/metrics"
	"github.com/newspulse/newspulse/internal/news"
)

// Config controls pool width.
type Config struct {
	Concurrency int
}

// Dispatcher runs one fetch per search hit with at most Concurrency fetches
// in flight.
type Dispatcher struct {
	fetcher news.ArticleFetcher
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Dispatcher. Concurrency defaults to 10.
func New(fetcher news.ArticleFetcher, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Dispatcher{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

// FetchAll fetches every hit concurrently and returns the surviving records
// in completion order. Hits the fetcher rejects (nil records) are dropped.
// The call blocks until all workers finish.
func (d *Dispatcher) FetchAll(ctx context.Context, hits []news.SearchHit) []news.ArticleRecord {
	if len(hits) == 0 {
		return []news.ArticleRecord{}
	}

	sem := make(chan struct{}, d.cfg.Concurrency)
	results := make(chan *news.ArticleRecord, len(hits))

	var wg sync.WaitGroup
	for _, hit := range hits {
		wg.Add(1)
		go func(hit news.SearchHit) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			metrics.IncActiveWorkers()
			defer metrics.DecActiveWorkers()
			results <- d.fetcher.Fetch(ctx, hit)
		}(hit)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	records := make([]news.ArticleRecord, 0, len(hits))
	for rec := range results {
		if rec == nil {
			continue
		}
		records = append(records, *rec)
	}
	d.logger.Debug("fetch batch complete",
		zap.Int("hits", len(hits)),
		zap.Int("records", len(records)),
	)
	return records
}
