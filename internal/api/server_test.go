package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/internal/geo"
	"github.com/newspulse/newspulse/internal/news"
	"github.com/newspulse/newspulse/internal/pipeline"
)

type fakeRunner struct {
	result  news.Result
	err     error
	gotReq  pipeline.Request
	panicky bool
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (news.Result, error) {
	if f.panicky {
		panic("boom")
	}
	f.gotReq = req
	return f.result, f.err
}

func newTestServer(runner Runner) *Server {
	return NewServer(runner, nil, Config{RequestTimeout: 5 * time.Second}, nil)
}

func TestGetNewsReturnsResult(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: news.Result{
		RunID:  "run-1",
		Query:  "India economy",
		Period: news.Period1d,
		Records: []news.EnrichedRecord{{
			ArticleRecord:  news.ArticleRecord{Title: "one"},
			SentimentLabel: news.SentimentNeutral,
		}},
		TopEntities: []news.EntityCount{{Text: "RBI", Type: news.EntityOrg, Count: 2}},
	}}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodGet, "/v1/news?query=India+economy&period=1d&min_articles=5", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "India economy", runner.gotReq.Query)
	require.Equal(t, news.Period1d, runner.gotReq.Period)
	require.Equal(t, 5, runner.gotReq.MinArticles)

	var got news.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Records, 1)
	require.Len(t, got.TopEntities, 1)
}

func TestGetNewsDefaultsPeriod(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodGet, "/v1/news", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, news.Period1d, runner.gotReq.Period)
}

func TestGetNewsRejectsInvalidPeriod(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRunner{})
	req := httptest.NewRequest(http.MethodGet, "/v1/news?period=14d", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNewsRejectsBadMinArticles(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRunner{})
	for _, raw := range []string{"zero", "-3", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/news?min_articles="+raw, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "min_articles=%s", raw)
	}
}

func TestGetNewsTimeoutMapsToGatewayTimeout(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRunner{err: context.DeadlineExceeded})
	req := httptest.NewRequest(http.MethodGet, "/v1/news", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRunner{})
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestMetricsEndpointServesPrometheus(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRunner{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}

func TestRequestIDHeaderSet(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRunner{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMarkersEndpoint(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: news.Result{
		RunID: "run-2",
		TopEntities: []news.EntityCount{
			{Text: "Mumbai", Type: news.EntityGPE, Count: 4},
		},
	}}
	mapper := geo.NewMapper(&stubGeocoder{}, nil)
	srv := NewServer(runner, mapper, Config{RequestTimeout: 5 * time.Second}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/news/markers?period=1d", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		RunID   string       `json:"run_id"`
		Markers []geo.Marker `json:"markers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "run-2", got.RunID)
	require.Len(t, got.Markers, 1)
	require.InDelta(t, 19.076, got.Markers[0].Lat, 1e-9)
}

func TestMarkersEndpointWithoutMapper(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRunner{})
	req := httptest.NewRequest(http.MethodGet, "/v1/news/markers", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(context.Context, string) (float64, float64, bool, error) {
	return 19.076, 72.8777, true, nil
}

func TestPanicRecovered(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRunner{panicky: true})
	req := httptest.NewRequest(http.MethodGet, "/v1/news", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
