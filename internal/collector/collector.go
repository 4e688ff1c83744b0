package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"ChipPulse/internal/model"
)

const defaultMaxInFlight = 4

// BatchResult holds the per-ticker daily series of one basket fetch.
type BatchResult struct {
	Period    model.Period
	FetchedAt time.Time
	// Order preserves the requested ticker order for symbols that loaded.
	Order  []string
	Series map[string][]model.PricePoint
	// Skipped lists tickers that returned no data or failed to load.
	Skipped []string
}

// Collector fetches daily series for a basket of tickers concurrently.
type Collector struct {
	Fetcher     Fetcher
	MaxInFlight int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, MaxInFlight: defaultMaxInFlight}
}

// Collect fetches the daily series for every ticker in the basket. Tickers
// that fail or come back empty are skipped with a warning; the batch only
// fails when no ticker loads at all.
func (c *Collector) Collect(ctx context.Context, tickers []string, period model.Period) (*BatchResult, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", model.ErrInvalidInput)
	}

	// Dedupe while preserving request order.
	seen := make(map[string]bool, len(tickers))
	unique := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}
	if len(unique) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", model.ErrInvalidInput)
	}

	maxInFlight := c.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		sem    = make(chan struct{}, maxInFlight)
		series = make(map[string][]model.PricePoint, len(unique))
		failed = make(map[string]bool)
	)

	for _, symbol := range unique {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			points, err := c.Fetcher.FetchDailySeries(ctx, symbol, period)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[WARN] skipping %s: fetch failed: %v", symbol, err)
				failed[symbol] = true
				return
			}
			if len(points) == 0 {
				log.Printf("[WARN] skipping %s: no price history", symbol)
				failed[symbol] = true
				return
			}
			series[symbol] = points
		}(symbol)
	}
	wg.Wait()

	result := &BatchResult{
		Period:    period,
		FetchedAt: time.Now().UTC(),
		Series:    series,
	}
	for _, symbol := range unique {
		if failed[symbol] {
			result.Skipped = append(result.Skipped, symbol)
			continue
		}
		result.Order = append(result.Order, symbol)
	}

	if len(result.Order) == 0 {
		return nil, fmt.Errorf("%w: all %d tickers failed to load", model.ErrDataUnavailable, len(unique))
	}
	if len(result.Skipped) > 0 {
		log.Printf("[WARN] partial batch: %d of %d tickers loaded (skipped %v)", len(result.Order), len(unique), result.Skipped)
	}
	return result, nil
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	SeriesBySymbol map[string][]model.PricePoint
	Errors         map[string]error
	Profiles       map[string]*model.CompanyProfile
	BasePrice      float64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailySeries(_ context.Context, symbol string, period model.Period) ([]model.PricePoint, error) {
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if points, ok := m.SeriesBySymbol[symbol]; ok {
		return points, nil
	}
	base := m.BasePrice
	if base == 0 {
		base = 100
	}
	return generateMockSeries(base, period.TradingDays()), nil
}

func (m *MockFetcher) FetchCompanyProfile(_ context.Context, symbol string) (*model.CompanyProfile, error) {
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	if p, ok := m.Profiles[symbol]; ok {
		return p, nil
	}
	return &model.CompanyProfile{Symbol: symbol, Name: symbol + " Inc."}, nil
}

func generateMockSeries(basePrice float64, count int) []model.PricePoint {
	start := time.Now().UTC().AddDate(0, 0, -count)
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Time:   start.AddDate(0, 0, i),
			Close:  basePrice * (1 + float64(i-count/2)*0.001),
			Volume: 1000000,
		}
	}
	return points
}
