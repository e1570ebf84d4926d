package cmd

import (
	"context"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/assemble"
	"github.com/newspulse/newspulse/internal/cache"
	systemclock "github.com/newspulse/newspulse/internal/clock/system"
	"github.com/newspulse/newspulse/internal/config"
	"github.com/newspulse/newspulse/internal/dispatcher"
	"github.com/newspulse/newspulse/internal/entities"
	"github.com/newspulse/newspulse/internal/fetch"
	collyfetch "github.com/newspulse/newspulse/internal/fetch/colly"
	"github.com/newspulse/newspulse/internal/fetch/headless"
	"github.com/newspulse/newspulse/internal/news"
	"github.com/newspulse/newspulse/internal/pipeline"
	pubsubpublisher "github.com/newspulse/newspulse/internal/publisher/pubsub"
	"github.com/newspulse/newspulse/internal/search"
	"github.com/newspulse/newspulse/internal/sentiment"
	"github.com/newspulse/newspulse/internal/storage/postgres"
)

// buildService assembles the full pipeline from configuration. The returned
// cleanup releases every optional collaborator (renderer, archive pool,
// pubsub client).
func buildService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*pipeline.Service, func(), error) {
	clock := systemclock.New()

	index := search.NewGoogleNewsIndex(search.GoogleNewsConfig{
		BaseURL:  cfg.Search.BaseURL,
		Language: cfg.Search.Language,
		Region:   cfg.Search.Region,
		Timeout:  cfg.FetchTimeout(),
	})
	aggregator := search.NewAggregator(index, search.AggregatorConfig{
		DefaultTerms: cfg.Search.DefaultTerms,
		PaceMin:      time.Duration(cfg.Search.PaceMinMs) * time.Millisecond,
		PaceMax:      time.Duration(cfg.Search.PaceMaxMs) * time.Millisecond,
	}, logger, nil, nil)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var renderer news.Renderer
	if cfg.Headless.Enabled {
		r, err := headless.New(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init headless renderer: %w", err)
		}
		renderer = r
		cleanups = append(cleanups, func() { _ = r.Close(context.Background()) })
	}

	pages := collyfetch.New(collyfetch.Config{Timeout: cfg.FetchTimeout()})
	fetcher := fetch.New(
		pages,
		renderer,
		news.NewBlocklist(append(news.DefaultBlockedDomains(), cfg.Fetch.BlockedDomains...)),
		news.NewUserAgentPool(cfg.Fetch.UserAgents, nil),
		fetch.Config{
			Backoff:       cfg.Backoff(),
			MinTextLength: cfg.Fetch.MinTextLength,
		},
		logger,
	)
	pool := dispatcher.New(fetcher, dispatcher.Config{Concurrency: cfg.Pipeline.Concurrency}, logger)

	assembler := assemble.New(sentiment.New(), entities.New(logger), clock, logger)
	results := cache.New(cfg.CacheTTL(), clock)

	var publisher news.Publisher
	if cfg.PubSub.ProjectID != "" && cfg.PubSub.TopicName != "" {
		client, err := gcppubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init pubsub client: %w", err)
		}
		publisher = pubsubpublisher.New(client)
		cleanups = append(cleanups, func() { _ = client.Close() })
	}

	var archive news.ArchiveStore
	if cfg.Archive.DSN != "" {
		store, err := postgres.NewArchiveStore(ctx, postgres.ArchiveStoreConfig{
			DSN:      cfg.Archive.DSN,
			Table:    cfg.Archive.Table,
			MaxConns: cfg.Archive.MaxConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init archive store: %w", err)
		}
		archive = store
		cleanups = append(cleanups, store.Close)
	}

	svc := pipeline.New(
		aggregator,
		pool,
		assembler,
		results,
		publisher,
		archive,
		clock,
		pipeline.Config{
			Timeout:     cfg.PipelineTimeout(),
			MinArticles: cfg.Search.MinArticles,
			EventTopic:  cfg.PubSub.TopicName,
		},
		logger,
	)
	return svc, cleanup, nil
}
