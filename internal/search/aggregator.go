package search

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/metrics"
	"github.com/newspulse/newspulse/internal/news"
)

// Default search terms used when the caller supplies no query: general
// India news, the stock market, and economic policy.
var defaultTerms = []string{
	"India Top news",
	"India Sensex",
	"RBI MPC meeting",
	"Indian stock market",
	"India economy",
}

// AggregatorConfig controls term pacing and the default term set.
type AggregatorConfig struct {
	DefaultTerms []string
	PaceMin      time.Duration
	PaceMax      time.Duration
}

// Aggregator issues a fixed set of search queries against the index,
// deduplicates hits by normalized URL and by exact title, and truncates the
// surviving hits to the requested count.
type Aggregator struct {
	index   news.SearchIndex
	cfg     AggregatorConfig
	logger  *zap.Logger
	sleep   news.Sleeper
	float64 func() float64
}

// NewAggregator constructs an Aggregator. sleep and float64 may be nil for
// production behavior.
func NewAggregator(
	index news.SearchIndex,
	cfg AggregatorConfig,
	logger *zap.Logger,
	sleep news.Sleeper,
	f64 func() float64,
) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sleep == nil {
		sleep = news.SleepContext
	}
	if f64 == nil {
		f64 = rand.Float64
	}
	if len(cfg.DefaultTerms) == 0 {
		cfg.DefaultTerms = defaultTerms
	}
	if cfg.PaceMin == 0 && cfg.PaceMax == 0 {
		cfg.PaceMin = 500 * time.Millisecond
		cfg.PaceMax = 1500 * time.Millisecond
	}
	metrics.Init()
	return &Aggregator{
		index:   index,
		cfg:     cfg,
		logger:  logger,
		sleep:   sleep,
		float64: f64,
	}
}

// Terms returns the search terms for the given user query: the fixed
// default set when the query is empty, otherwise a single derived term.
func (a *Aggregator) Terms(query string) []string {
	if query == "" {
		return append([]string(nil), a.cfg.DefaultTerms...)
	}
	return []string{query + " in India"}
}

// Aggregate runs every term against the index sequentially, deduplicating
// incrementally. A hit is discarded when its normalized URL or its exact
// title was already seen; first-seen wins. Term failures are logged and
// skipped. The deduplicated list is truncated to minArticles hits in
// discovery order. Never returns an error: no results means an empty slice.
func (a *Aggregator) Aggregate(ctx context.Context, query string, period news.Period, minArticles int) []news.SearchHit {
	terms := a.Terms(query)

	var hits []news.SearchHit
	seenURLs := make(map[string]struct{})
	seenTitles := make(map[string]struct{})

	for i, term := range terms {
		if ctx.Err() != nil {
			break
		}
		results, err := a.index.Search(ctx, term, period)
		switch {
		case err != nil:
			metrics.ObserveSearchTerm("error")
			a.logger.Warn("search term failed",
				zap.String("term", term),
				zap.Error(err),
			)
		case len(results) == 0:
			metrics.ObserveSearchTerm("empty")
			a.logger.Warn("search term returned no results", zap.String("term", term))
		default:
			metrics.ObserveSearchTerm("ok")
			for _, hit := range results {
				key := news.Normalize(hit.Link)
				if _, dup := seenURLs[key]; dup {
					continue
				}
				if _, dup := seenTitles[hit.Title]; dup {
					continue
				}
				seenURLs[key] = struct{}{}
				seenTitles[hit.Title] = struct{}{}
				hits = append(hits, hit)
			}
			a.logger.Debug("search term processed",
				zap.String("term", term),
				zap.Int("results", len(results)),
				zap.Int("unique_total", len(hits)),
			)
		}

		// Pace against the upstream index between terms.
		if i < len(terms)-1 {
			a.sleep(ctx, a.paceDelay())
		}
	}

	if minArticles > 0 && len(hits) > minArticles {
		hits = hits[:minArticles]
	}
	a.logger.Info("aggregation complete",
		zap.String("query", query),
		zap.String("period", string(period)),
		zap.Int("unique_hits", len(hits)),
	)
	return hits
}

func (a *Aggregator) paceDelay() time.Duration {
	if a.cfg.PaceMax <= a.cfg.PaceMin {
		return a.cfg.PaceMin
	}
	spread := float64(a.cfg.PaceMax - a.cfg.PaceMin)
	return a.cfg.PaceMin + time.Duration(a.float64()*spread)
}
