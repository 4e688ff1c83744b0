package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChipPulse/internal/collector"
	"ChipPulse/internal/model"
	"ChipPulse/internal/pipeline"
	"ChipPulse/internal/refresh"
)

type mockRunner struct {
	RunFunc func(ctx context.Context, req pipeline.Request) (*model.Snapshot, error)
}

func (m *mockRunner) Run(ctx context.Context, req pipeline.Request) (*model.Snapshot, error) {
	return m.RunFunc(ctx, req)
}

var testDefaults = pipeline.Request{
	Tickers:      []string{"NVDA", "AMD"},
	Period:       model.Period1Y,
	IntervalDays: 2,
}

func newTestRouter(runner SnapshotRunner, profiles collector.ProfileFetcher) (*gin.Engine, *refresh.Service) {
	gin.SetMode(gin.TestMode)
	holder := refresh.NewService(context.Background(), nil, testDefaults)
	h := NewHandler(runner, holder, profiles, testDefaults)
	return h.SetupRoutes(), holder
}

func sampleSnapshot() *model.Snapshot {
	day := func(n int) time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}
	index := []time.Time{day(0), day(2), day(4)}
	symbols := []string{"NVDA", "AMD"}
	ma := 15.67
	rsi := 100.0
	return &model.Snapshot{
		Period:       model.Period1Y,
		IntervalDays: 2,
		GeneratedAt:  time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC),
		Symbols:      symbols,
		Prices: &model.Table{Index: index, Symbols: symbols, Values: map[string][]float64{
			"NVDA": {12, 15, 20},
			"AMD":  {math.NaN(), 30, 33},
		}},
		Volumes: &model.Table{Index: index, Symbols: symbols, Values: map[string][]float64{
			"NVDA": {300, 700, 500},
			"AMD":  {0, 900, 400},
		}},
		Normalized: &model.Table{Index: index, Symbols: symbols, Values: map[string][]float64{
			"NVDA": {100, 125, 166.67},
			"AMD":  {math.NaN(), 100, 110},
		}},
		Correlation: &model.CorrelationMatrix{
			Symbols: symbols,
			Matrix:  [][]float64{{1, 0.98}, {0.98, 1}},
		},
		Changes: map[string]model.PriceChange{
			"NVDA": {Initial: 10, Final: 20, Percent: 100},
			"AMD":  {Initial: 28, Final: 33, Percent: 17.86},
		},
		Indicators: map[string]model.IndicatorSnapshot{
			"NVDA": {MA20: &ma, RSI: &rsi},
			"AMD":  {},
		},
	}
}

func get(router *gin.Engine, url string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDashboard_ReturnsSnapshot(t *testing.T) {
	var got pipeline.Request
	runner := &mockRunner{RunFunc: func(_ context.Context, req pipeline.Request) (*model.Snapshot, error) {
		got = req
		return sampleSnapshot(), nil
	}}
	router, holder := newTestRouter(runner, nil)

	w := get(router, "/api/v1/dashboard?period=6mo&interval=3&tickers=nvda,%20amd", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Period6Mo, got.Period)
	assert.Equal(t, 3, got.IntervalDays)
	assert.Equal(t, []string{"NVDA", "AMD"}, got.Tickers)

	body := decode(t, w)
	assert.Equal(t, "1y", body["period"])
	assert.Equal(t, float64(2), body["interval_days"])
	assert.Equal(t, []interface{}{"NVDA", "AMD"}, body["symbols"])
	assert.Equal(t, []interface{}{"2024-01-01", "2024-01-03", "2024-01-05"}, body["dates"])

	prices := body["prices"].(map[string]interface{})
	amd := prices["AMD"].([]interface{})
	assert.Nil(t, amd[0], "missing bucket must cross the wire as null")
	assert.Equal(t, float64(30), amd[1])

	changes := body["changes"].(map[string]interface{})
	nvda := changes["NVDA"].(map[string]interface{})
	assert.Equal(t, float64(10), nvda["initial"])
	assert.Equal(t, float64(20), nvda["final"])
	assert.Equal(t, float64(100), nvda["percent"])

	corr := body["correlation"].(map[string]interface{})
	matrix := corr["matrix"].([]interface{})
	require.Len(t, matrix, 2)
	assert.Equal(t, float64(1), matrix[0].([]interface{})[0])

	indicators := body["indicators"].(map[string]interface{})
	nvdaInd := indicators["NVDA"].(map[string]interface{})
	assert.Equal(t, 15.67, nvdaInd["ma20"])
	assert.Nil(t, nvdaInd["ma50"])
	assert.Equal(t, float64(100), nvdaInd["rsi14"])

	// A successful dashboard run becomes the published snapshot.
	require.NotNil(t, holder.Latest())
	assert.Equal(t, model.Period6Mo, holder.Params().Period)
}

func TestDashboard_UsesConfiguredDefaults(t *testing.T) {
	var got pipeline.Request
	runner := &mockRunner{RunFunc: func(_ context.Context, req pipeline.Request) (*model.Snapshot, error) {
		got = req
		return sampleSnapshot(), nil
	}}
	router, _ := newTestRouter(runner, nil)

	w := get(router, "/api/v1/dashboard", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testDefaults.Tickers, got.Tickers)
	assert.Equal(t, testDefaults.Period, got.Period)
	assert.Equal(t, testDefaults.IntervalDays, got.IntervalDays)
}

func TestDashboard_InvalidPeriod(t *testing.T) {
	called := false
	runner := &mockRunner{RunFunc: func(_ context.Context, _ pipeline.Request) (*model.Snapshot, error) {
		called = true
		return nil, nil
	}}
	router, _ := newTestRouter(runner, nil)

	w := get(router, "/api/v1/dashboard?period=fortnight", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called, "runner must not run for a bad period")
	body := decode(t, w)
	assert.Contains(t, body["error"], "unsupported period")
	assert.NotEmpty(t, body["request_id"])
}

func TestDashboard_InvalidInterval(t *testing.T) {
	runner := &mockRunner{RunFunc: func(_ context.Context, _ pipeline.Request) (*model.Snapshot, error) {
		return sampleSnapshot(), nil
	}}
	router, _ := newTestRouter(runner, nil)

	w := get(router, "/api/v1/dashboard?interval=two", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["error"], "interval must be an integer")
}

func TestDashboard_PipelineErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("%w: no tickers requested", model.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: all 2 tickers failed to load", model.ErrDataUnavailable), http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		runner := &mockRunner{RunFunc: func(_ context.Context, _ pipeline.Request) (*model.Snapshot, error) {
			return nil, tt.err
		}}
		router, holder := newTestRouter(runner, nil)

		w := get(router, "/api/v1/dashboard", nil)

		assert.Equal(t, tt.wantStatus, w.Code, "error %v", tt.err)
		assert.Nil(t, holder.Latest(), "failed runs must not publish")
	}
}

func TestDashboard_EchoesRequestID(t *testing.T) {
	runner := &mockRunner{RunFunc: func(_ context.Context, _ pipeline.Request) (*model.Snapshot, error) {
		return nil, fmt.Errorf("%w: nope", model.ErrDataUnavailable)
	}}
	router, _ := newTestRouter(runner, nil)

	w := get(router, "/api/v1/dashboard", map[string]string{RequestIDHeaderKey: "req-42"})

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeaderKey))
	body := decode(t, w)
	assert.Equal(t, "req-42", body["request_id"])
}

func TestSnapshot_NotFoundBeforeFirstPublish(t *testing.T) {
	runner := &mockRunner{RunFunc: func(_ context.Context, _ pipeline.Request) (*model.Snapshot, error) {
		return sampleSnapshot(), nil
	}}
	router, holder := newTestRouter(runner, nil)

	w := get(router, "/api/v1/snapshot", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	holder.Publish(holder.Begin(), sampleSnapshot(), testDefaults)

	w = get(router, "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "1y", body["period"])
	assert.Equal(t, []interface{}{"NVDA", "AMD"}, body["symbols"])
}

func TestTickers_DescribesBasket(t *testing.T) {
	router, _ := newTestRouter(&mockRunner{}, nil)

	w := get(router, "/api/v1/tickers", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tickers":["NVDA","AMD"],"default_period":"1y","interval_days":2}`, w.Body.String())
}

func TestCompany_ReturnsProfile(t *testing.T) {
	profiles := &collector.MockFetcher{Profiles: map[string]*model.CompanyProfile{
		"NVDA": {
			Symbol:    "NVDA",
			Name:      "NVIDIA Corporation",
			Sector:    "Technology",
			Industry:  "Semiconductors",
			MarketCap: 2200000000000,
		},
	}}
	router, _ := newTestRouter(&mockRunner{}, profiles)

	w := get(router, "/api/v1/company/nvda", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "NVDA", body["symbol"], "path symbol must be uppercased")
	assert.Equal(t, "NVIDIA Corporation", body["name"])
	assert.Equal(t, "Semiconductors", body["industry"])
}

func TestCompany_NotAvailableWithoutProfileSource(t *testing.T) {
	router, _ := newTestRouter(&mockRunner{}, nil)

	w := get(router, "/api/v1/company/NVDA", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompany_UpstreamFailure(t *testing.T) {
	profiles := &collector.MockFetcher{Errors: map[string]error{
		"GONE": errors.New("no data"),
	}}
	router, _ := newTestRouter(&mockRunner{}, profiles)

	w := get(router, "/api/v1/company/gone", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Equal(t, "company profile unavailable", body["error"])
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(&mockRunner{}, nil)

	w := get(router, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, ServiceName, body["service"])
	assert.Equal(t, ServiceVersion, body["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	router, _ := newTestRouter(&mockRunner{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/api/v1/dashboard", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
