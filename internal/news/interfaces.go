package news

import (
	"context"
	"time"
)

// SearchIndex queries the external news index for a single term.
// Implementations scope results to the configured language/region and the
// given recency window. An empty result set is not an error.
type SearchIndex interface {
	Search(ctx context.Context, term string, period Period) ([]SearchHit, error)
}

// ArticleFetcher retrieves one article's full text. It never returns an
// error: every hit yields either a record (possibly a fallback record) or
// nil when the hit is rejected outright.
type ArticleFetcher interface {
	Fetch(ctx context.Context, hit SearchHit) *ArticleRecord
}

// PageResult is one HTTP attempt's outcome as seen by the retry policy.
type PageResult struct {
	StatusCode int
	Body       []byte
}

// PageFetcher performs a single HTTP GET. A response with a non-2xx status
// is returned as a PageResult, not an error; errors are reserved for
// transport-level failures (timeout, DNS, connection reset).
type PageFetcher interface {
	FetchPage(ctx context.Context, url string, userAgent string) (PageResult, error)
}

// Renderer re-fetches a page with a JS-capable browser. Used, when enabled,
// as a second chance before a thin-content fallback.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
	Close(ctx context.Context) error
}

// SentimentScorer maps text to a compound score in [-1, 1]. Empty or
// whitespace-only input scores 0.0.
type SentimentScorer interface {
	Score(text string) float64
}

// EntityExtractor runs named-entity recognition over a batch of documents,
// returning one mention per detected occurrence across all documents.
// Whitespace-only documents are skipped silently.
type EntityExtractor interface {
	Extract(texts []string) []EntityMention
}

// Geocoder resolves a place name to coordinates. Failures degrade to a
// placeholder in the caller, never propagate.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (lat, lng float64, ok bool, err error)
}

// Publisher pushes run-completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// ArchiveStore persists enriched records at the collaborator boundary.
type ArchiveStore interface {
	StoreRun(ctx context.Context, result Result) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Sleeper blocks for the given duration or until the context finishes.
// Injected so pacing and backoff are testable without real sleeps.
type Sleeper func(ctx context.Context, d time.Duration)

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
