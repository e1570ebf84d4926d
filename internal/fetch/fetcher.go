// Package fetch implements per-article full-text retrieval with bounded
// retries and content-quality fallback.
package fetch

import (
	"context"

	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/metrics"
	"github.com/newspulse/newspulse/internal/news"
)

// Config controls the content fetcher.
type Config struct {
	Backoff       news.BackoffPolicy
	MinTextLength int
}

// ContentFetcher implements news.ArticleFetcher. It owns the retry policy;
// the underlying PageFetcher performs single attempts.
type ContentFetcher struct {
	pages     news.PageFetcher
	renderer  news.Renderer
	blocklist *news.Blocklist
	agents    *news.UserAgentPool
	cfg       Config
	logger    *zap.Logger
}

// New constructs a ContentFetcher. renderer may be nil; blocklist and
// agents may be nil for the defaults.
func New(
	pages news.PageFetcher,
	renderer news.Renderer,
	blocklist *news.Blocklist,
	agents *news.UserAgentPool,
	cfg Config,
	logger *zap.Logger,
) *ContentFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if blocklist == nil {
		blocklist = news.DefaultBlocklist()
	}
	if agents == nil {
		agents = news.NewUserAgentPool(nil, nil)
	}
	if cfg.Backoff.MaxAttempts == 0 {
		cfg.Backoff = news.DefaultBackoffPolicy()
	}
	if cfg.MinTextLength == 0 {
		cfg.MinTextLength = 50
	}
	metrics.Init()
	return &ContentFetcher{
		pages:     pages,
		renderer:  renderer,
		blocklist: blocklist,
		agents:    agents,
		cfg:       cfg,
		logger:    logger,
	}
}

// Fetch retrieves one article's full text. It returns nil when the hit is
// rejected outright (empty or blocklisted URL) and otherwise always
// produces a record: a full record on success, a fallback record whose
// FullText is the hit's description on any terminal failure. Errors never
// reach the caller.
func (f *ContentFetcher) Fetch(ctx context.Context, hit news.SearchHit) *news.ArticleRecord {
	link := news.Normalize(hit.Link)
	if link == "" {
		f.logger.Debug("skipping hit with empty link", zap.String("title", hit.Title))
		metrics.ObserveArticle("skipped")
		return nil
	}
	if f.blocklist.Blocks(link) {
		f.logger.Debug("skipping blocklisted link", zap.String("link", link))
		metrics.ObserveArticle("skipped")
		return nil
	}

	for attempt := 1; attempt <= f.cfg.Backoff.Attempts(); attempt++ {
		if ctx.Err() != nil {
			break
		}
		result, err := f.pages.FetchPage(ctx, link, f.agents.Pick())
		if err != nil {
			metrics.ObserveFetchAttempt(string(news.FailureTransient))
			f.logger.Debug("fetch attempt failed",
				zap.String("link", link),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if attempt < f.cfg.Backoff.Attempts() {
				f.cfg.Backoff.Wait(ctx)
			}
			continue
		}

		if result.StatusCode < 200 || result.StatusCode > 299 {
			class := news.ClassifyStatus(result.StatusCode)
			metrics.ObserveFetchAttempt(string(class))
			if class == news.FailurePermanent {
				f.logger.Debug("permanent fetch failure, falling back",
					zap.String("link", link),
					zap.Int("status", result.StatusCode),
				)
				return f.fallbackRecord(hit, link)
			}
			f.logger.Debug("transient status, retrying",
				zap.String("link", link),
				zap.Int("status", result.StatusCode),
				zap.Int("attempt", attempt),
			)
			if attempt < f.cfg.Backoff.Attempts() {
				f.cfg.Backoff.Wait(ctx)
			}
			continue
		}

		text, err := ExtractParagraphText(result.Body)
		if err != nil {
			metrics.ObserveFetchAttempt(string(news.FailureThinContent))
			f.logger.Debug("html parse failed, falling back",
				zap.String("link", link),
				zap.Error(err),
			)
			return f.fallbackRecord(hit, link)
		}
		if len(text) < f.cfg.MinTextLength {
			if rendered, ok := f.tryRender(ctx, link); ok {
				text = rendered
			} else {
				metrics.ObserveFetchAttempt(string(news.FailureThinContent))
				f.logger.Debug("thin content, falling back",
					zap.String("link", link),
					zap.Int("length", len(text)),
				)
				return f.fallbackRecord(hit, link)
			}
		}

		metrics.ObserveFetchAttempt("ok")
		metrics.ObserveArticle("full")
		return &news.ArticleRecord{
			Title:       hit.Title,
			Description: hit.Description,
			Link:        link,
			Source:      hit.Source,
			PublishedAt: parsePublishedAt(hit.PublishedAt),
			FullText:    text,
		}
	}

	f.logger.Debug("retries exhausted, falling back", zap.String("link", link))
	return f.fallbackRecord(hit, link)
}

// tryRender gives a thin page one JS-rendered second chance when a renderer
// is configured. It only succeeds when the rendered page clears the minimum
// text length.
func (f *ContentFetcher) tryRender(ctx context.Context, link string) (string, bool) {
	if f.renderer == nil {
		return "", false
	}
	body, err := f.renderer.Render(ctx, link)
	if err != nil {
		f.logger.Debug("headless render failed", zap.String("link", link), zap.Error(err))
		return "", false
	}
	text, err := ExtractParagraphText(body)
	if err != nil || len(text) < f.cfg.MinTextLength {
		return "", false
	}
	return text, true
}

// fallbackRecord substitutes the search-result description for the page
// content. An empty description yields an empty FullText; that edge case is
// accepted, not patched.
func (f *ContentFetcher) fallbackRecord(hit news.SearchHit, link string) *news.ArticleRecord {
	metrics.ObserveArticle("fallback")
	return &news.ArticleRecord{
		Title:       hit.Title,
		Description: hit.Description,
		Link:        link,
		Source:      hit.Source,
		PublishedAt: parsePublishedAt(hit.PublishedAt),
		FullText:    hit.Description,
		Fallback:    true,
	}
}
