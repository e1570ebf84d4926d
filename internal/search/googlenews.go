// Package search implements the query aggregator and its Google News
// backed search index.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/newspulse/newspulse/internal/news"
)

// GoogleNewsConfig controls the RSS search index client.
type GoogleNewsConfig struct {
	BaseURL  string
	Language string
	Region   string
	Timeout  time.Duration
}

// GoogleNewsIndex implements news.SearchIndex against the Google News RSS
// search endpoint.
type GoogleNewsIndex struct {
	cfg    GoogleNewsConfig
	parser *gofeed.Parser
}

// NewGoogleNewsIndex builds an index client with sane defaults.
func NewGoogleNewsIndex(cfg GoogleNewsConfig) *GoogleNewsIndex {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://news.google.com/rss/search"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Region == "" {
		cfg.Region = "IN"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	return &GoogleNewsIndex{cfg: cfg, parser: parser}
}

// Search queries the index once for the given term, scoped to the
// configured language/region and the recency window.
func (g *GoogleNewsIndex) Search(ctx context.Context, term string, period news.Period) ([]news.SearchHit, error) {
	feedURL, err := g.buildURL(term, period)
	if err != nil {
		return nil, err
	}
	feed, err := g.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("query news index for %q: %w", term, err)
	}

	hits := make([]news.SearchHit, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		title, source := splitTitleSource(item.Title)
		if source == "" {
			source = hostOf(item.Link)
		}
		hits = append(hits, news.SearchHit{
			Title:       title,
			Description: stripHTML(item.Description),
			Link:        item.Link,
			Source:      source,
			PublishedAt: item.Published,
		})
	}
	return hits, nil
}

func (g *GoogleNewsIndex) buildURL(term string, period news.Period) (string, error) {
	base, err := url.Parse(g.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse search base url: %w", err)
	}
	lang := strings.ToLower(g.cfg.Language)
	region := strings.ToUpper(g.cfg.Region)

	q := base.Query()
	q.Set("q", fmt.Sprintf("%s when:%s", term, period))
	q.Set("hl", fmt.Sprintf("%s-%s", lang, region))
	q.Set("gl", region)
	q.Set("ceid", fmt.Sprintf("%s:%s", region, lang))
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// splitTitleSource separates the " - Publisher" suffix the index appends to
// headlines. Titles without the suffix come back unchanged.
func splitTitleSource(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 || idx+3 >= len(title) {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// stripHTML flattens the index's HTML snippet to plain text.
func stripHTML(snippet string) string {
	if snippet == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return snippet
	}
	return strings.TrimSpace(doc.Text())
}
