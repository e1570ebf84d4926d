package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/internal/news"
)

type pageCall struct {
	url       string
	userAgent string
}

// fakePages replays a scripted sequence of per-attempt outcomes.
type fakePages struct {
	calls   []pageCall
	results []news.PageResult
	errs    []error
}

func (f *fakePages) FetchPage(_ context.Context, url, userAgent string) (news.PageResult, error) {
	i := len(f.calls)
	f.calls = append(f.calls, pageCall{url: url, userAgent: userAgent})
	if i < len(f.errs) && f.errs[i] != nil {
		return news.PageResult{}, f.errs[i]
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return news.PageResult{StatusCode: 200}, nil
}

type fakeRenderer struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeRenderer) Render(context.Context, string) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

func (f *fakeRenderer) Close(context.Context) error { return nil }

func instantBackoff(attempts int) news.BackoffPolicy {
	return news.BackoffPolicy{
		MaxAttempts: attempts,
		MinDelay:    time.Millisecond,
		MaxDelay:    time.Millisecond,
		Sleep:       func(context.Context, time.Duration) {},
	}
}

func richPage(words int) news.PageResult {
	return news.PageResult{
		StatusCode: 200,
		Body:       []byte("<html><body><p>" + strings.Repeat("word ", words) + "</p></body></html>"),
	}
}

var testHit = news.SearchHit{
	Title:       "RBI holds rates steady",
	Description: "The central bank kept the repo rate unchanged at its August review.",
	Link:        "https://news.example.com/rbi-rates?utm_source=rss#section",
	Source:      "Example Times",
	PublishedAt: "Mon, 24 Aug 2026 09:30:00 +0000",
}

func TestFetchSuccessProducesFullRecord(t *testing.T) {
	t.Parallel()

	pages := &fakePages{results: []news.PageResult{richPage(40)}}
	f := New(pages, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), testHit)
	require.NotNil(t, rec)
	require.False(t, rec.Fallback)
	require.Equal(t, "RBI holds rates steady", rec.Title)
	require.Equal(t, "https://news.example.com/rbi-rates", rec.Link)
	require.GreaterOrEqual(t, len(rec.FullText), 50)
	require.Equal(t, time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC), rec.PublishedAt)
	require.Len(t, pages.calls, 1)
}

func TestFetchNotFoundIsPermanentSingleAttempt(t *testing.T) {
	t.Parallel()

	pages := &fakePages{results: []news.PageResult{{StatusCode: 404}}}
	f := New(pages, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), testHit)
	require.NotNil(t, rec)
	require.True(t, rec.Fallback)
	require.Equal(t, testHit.Description, rec.FullText)
	require.Len(t, pages.calls, 1)
}

func TestFetchForbiddenIsPermanentSingleAttempt(t *testing.T) {
	t.Parallel()

	pages := &fakePages{results: []news.PageResult{{StatusCode: 403}}}
	f := New(pages, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), testHit)
	require.NotNil(t, rec)
	require.True(t, rec.Fallback)
	require.Len(t, pages.calls, 1)
}

func TestFetchRetriesTransportErrorsUntilExhausted(t *testing.T) {
	t.Parallel()

	timeout := errors.New("context deadline exceeded")
	pages := &fakePages{errs: []error{timeout, timeout, timeout, timeout}}
	f := New(pages, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), testHit)
	require.NotNil(t, rec)
	require.True(t, rec.Fallback)
	require.Equal(t, testHit.Description, rec.FullText)
	require.Len(t, pages.calls, 4)
}

func TestFetchTransientStatusThenSuccess(t *testing.T) {
	t.Parallel()

	pages := &fakePages{results: []news.PageResult{
		{StatusCode: 503},
		richPage(40),
	}}
	f := New(pages, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), testHit)
	require.NotNil(t, rec)
	require.False(t, rec.Fallback)
	require.Len(t, pages.calls, 2)
}

func TestFetchThinContentFallsBackWithoutRetry(t *testing.T) {
	t.Parallel()

	pages := &fakePages{results: []news.PageResult{{
		StatusCode: 200,
		Body:       []byte("<html><body><p>too short</p></body></html>"),
	}}}
	f := New(pages, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), testHit)
	require.NotNil(t, rec)
	require.True(t, rec.Fallback)
	require.Equal(t, testHit.Description, rec.FullText)
	require.Len(t, pages.calls, 1)
}

func TestFetchThinContentRenderedSecondChance(t *testing.T) {
	t.Parallel()

	pages := &fakePages{results: []news.PageResult{{
		StatusCode: 200,
		Body:       []byte("<html><body><p>stub</p></body></html>"),
	}}}
	renderer := &fakeRenderer{body: richPage(40).Body}
	f := New(pages, renderer, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), testHit)
	require.NotNil(t, rec)
	require.False(t, rec.Fallback)
	require.Equal(t, 1, renderer.calls)
}

func TestFetchBlocklistedLinkReturnsNil(t *testing.T) {
	t.Parallel()

	pages := &fakePages{}
	f := New(pages, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), news.SearchHit{
		Title: "Watch live",
		Link:  "https://www.youtube.com/watch?v=abc",
	})
	require.Nil(t, rec)
	require.Empty(t, pages.calls)
}

func TestFetchEmptyLinkReturnsNil(t *testing.T) {
	t.Parallel()

	f := New(&fakePages{}, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)
	require.Nil(t, f.Fetch(context.Background(), news.SearchHit{Title: "orphan"}))
}

func TestFetchUnparseableDateLeavesZeroTime(t *testing.T) {
	t.Parallel()

	hit := testHit
	hit.PublishedAt = "sometime last week"
	pages := &fakePages{results: []news.PageResult{richPage(40)}}
	f := New(pages, nil, nil, nil, Config{Backoff: instantBackoff(4)}, nil)

	rec := f.Fetch(context.Background(), hit)
	require.NotNil(t, rec)
	require.True(t, rec.PublishedAt.IsZero())
}

func TestFetchSendsPooledUserAgent(t *testing.T) {
	t.Parallel()

	pages := &fakePages{results: []news.PageResult{richPage(40)}}
	agents := news.NewUserAgentPool([]string{"agent-a"}, nil)
	f := New(pages, nil, nil, agents, Config{Backoff: instantBackoff(4)}, nil)

	f.Fetch(context.Background(), testHit)
	require.Len(t, pages.calls, 1)
	require.Equal(t, "agent-a", pages.calls[0].userAgent)
}
