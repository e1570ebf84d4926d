// Package collyfetch implements single-attempt page retrieval using gocolly.
package collyfetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/newspulse/newspulse/internal/news"
)

// Config controls collector behavior.
type Config struct {
	Timeout time.Duration
}

// Fetcher implements news.PageFetcher using the Colly collector. Retries and
// failure classification live one level up; each FetchPage call is exactly
// one HTTP GET.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher with a pooled transport shared by all attempts.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	transport := newHTTPTransport()
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// FetchPage executes one HTTP GET. Non-2xx responses come back as a
// PageResult; the error return is reserved for transport failures.
func (f *Fetcher) FetchPage(ctx context.Context, url, userAgent string) (news.PageResult, error) {
	collector := f.baseCollector.Clone()
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(f.transport)
	collector.SetRequestTimeout(f.cfg.Timeout)
	if userAgent != "" {
		collector.UserAgent = userAgent
	}

	var (
		result   news.PageResult
		gotBody  bool
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		result = news.PageResult{
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
		gotBody = true
	})
	collector.OnError(func(r *colly.Response, err error) {
		// Colly routes non-2xx statuses here with the body still attached.
		if r != nil && r.StatusCode != 0 {
			result = news.PageResult{
				StatusCode: r.StatusCode,
				Body:       append([]byte(nil), r.Body...),
			}
			gotBody = true
			return
		}
		fetchErr = err
	})

	if err := f.visit(ctx, collector, url, &fetchErr); err != nil {
		if gotBody {
			return result, nil
		}
		return news.PageResult{}, err
	}
	return result, nil
}

func (f *Fetcher) visit(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("page fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("page fetch failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("page visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
