package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/internal/news"
)

type fakeIndex struct {
	hits  map[string][]news.SearchHit
	errs  map[string]error
	calls []string
}

func (f *fakeIndex) Search(_ context.Context, term string, _ news.Period) ([]news.SearchHit, error) {
	f.calls = append(f.calls, term)
	if err, ok := f.errs[term]; ok {
		return nil, err
	}
	return f.hits[term], nil
}

func noSleep(context.Context, time.Duration) {}

func newTestAggregator(index news.SearchIndex) *Aggregator {
	return NewAggregator(index, AggregatorConfig{}, nil, noSleep, func() float64 { return 0 })
}

func TestTermsDefaultSetWhenQueryEmpty(t *testing.T) {
	t.Parallel()

	a := newTestAggregator(&fakeIndex{})
	terms := a.Terms("")
	require.Equal(t, []string{
		"India Top news",
		"India Sensex",
		"RBI MPC meeting",
		"Indian stock market",
		"India economy",
	}, terms)
}

func TestTermsDerivedFromUserQuery(t *testing.T) {
	t.Parallel()

	a := newTestAggregator(&fakeIndex{})
	require.Equal(t, []string{"adani group in India"}, a.Terms("adani group"))
}

func TestAggregateDeduplicatesByNormalizedURL(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{hits: map[string][]news.SearchHit{
		"India Top news": {
			{Title: "Markets rally", Link: "https://example.com/story?utm=1"},
		},
		"India Sensex": {
			{Title: "Sensex soars", Link: "https://example.com/story?utm=2"},
		},
	}}
	a := NewAggregator(index, AggregatorConfig{
		DefaultTerms: []string{"India Top news", "India Sensex"},
	}, nil, noSleep, func() float64 { return 0 })

	hits := a.Aggregate(context.Background(), "", news.Period1d, 30)
	require.Len(t, hits, 1)
	require.Equal(t, "Markets rally", hits[0].Title)
}

func TestAggregateDeduplicatesByTitle(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{hits: map[string][]news.SearchHit{
		"a": {{Title: "Same headline", Link: "https://one.example.com/x"}},
		"b": {{Title: "Same headline", Link: "https://two.example.com/y"}},
	}}
	a := NewAggregator(index, AggregatorConfig{DefaultTerms: []string{"a", "b"}},
		nil, noSleep, func() float64 { return 0 })

	hits := a.Aggregate(context.Background(), "", news.Period1d, 30)
	require.Len(t, hits, 1)
	require.Equal(t, "https://one.example.com/x", hits[0].Link)
}

func TestAggregateFirstSeenWinsAcrossTerms(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{hits: map[string][]news.SearchHit{
		"a": {
			{Title: "One", Link: "https://example.com/1"},
			{Title: "Two", Link: "https://example.com/2"},
		},
		"b": {
			{Title: "Two again", Link: "https://example.com/2#frag"},
			{Title: "Three", Link: "https://example.com/3"},
		},
	}}
	a := NewAggregator(index, AggregatorConfig{DefaultTerms: []string{"a", "b"}},
		nil, noSleep, func() float64 { return 0 })

	hits := a.Aggregate(context.Background(), "", news.Period1d, 30)
	require.Len(t, hits, 3)
	require.Equal(t, "One", hits[0].Title)
	require.Equal(t, "Two", hits[1].Title)
	require.Equal(t, "Three", hits[2].Title)
}

func TestAggregateSkipsFailingTermAndContinues(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{
		hits: map[string][]news.SearchHit{
			"c": {{Title: "Survivor", Link: "https://example.com/s"}},
		},
		errs: map[string]error{
			"a": errors.New("index unreachable"),
		},
	}
	a := NewAggregator(index, AggregatorConfig{DefaultTerms: []string{"a", "b", "c"}},
		nil, noSleep, func() float64 { return 0 })

	hits := a.Aggregate(context.Background(), "", news.Period1d, 30)
	require.Len(t, hits, 1)
	require.Equal(t, []string{"a", "b", "c"}, index.calls)
}

func TestAggregateTruncatesToMinArticles(t *testing.T) {
	t.Parallel()

	var many []news.SearchHit
	for i := range 10 {
		many = append(many, news.SearchHit{
			Title: string(rune('A' + i)),
			Link:  "https://example.com/" + string(rune('a'+i)),
		})
	}
	index := &fakeIndex{hits: map[string][]news.SearchHit{"a": many}}
	a := NewAggregator(index, AggregatorConfig{DefaultTerms: []string{"a"}},
		nil, noSleep, func() float64 { return 0 })

	hits := a.Aggregate(context.Background(), "", news.Period1d, 4)
	require.Len(t, hits, 4)
	require.Equal(t, "A", hits[0].Title)
}

func TestAggregateEmptyIndexReturnsEmptySlice(t *testing.T) {
	t.Parallel()

	a := newTestAggregator(&fakeIndex{})
	hits := a.Aggregate(context.Background(), "", news.Period1d, 30)
	require.Empty(t, hits)
}

func TestAggregatePacesBetweenTermsOnly(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	sleep := func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }
	index := &fakeIndex{}
	a := NewAggregator(index, AggregatorConfig{
		DefaultTerms: []string{"a", "b", "c"},
		PaceMin:      500 * time.Millisecond,
		PaceMax:      1500 * time.Millisecond,
	}, nil, sleep, func() float64 { return 0.5 })

	a.Aggregate(context.Background(), "", news.Period1d, 30)
	require.Equal(t, []time.Duration{time.Second, time.Second}, sleeps)
}
