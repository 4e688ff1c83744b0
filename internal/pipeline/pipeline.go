// Package pipeline runs the fetch, resample, and statistics chain for one
// dashboard request.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ChipPulse/internal/calculator"
	"ChipPulse/internal/collector"
	"ChipPulse/internal/model"
	"ChipPulse/internal/recorder"
	"ChipPulse/internal/resample"
)

const defaultIntervalDays = 2

// Request describes one dashboard computation.
type Request struct {
	Tickers      []string
	Period       model.Period
	IntervalDays int
}

// Runner wires the collector, resampler, and calculators into a stateless
// pipeline. Each Run is an independent computation over freshly fetched
// data, so a Runner is safe to share across goroutines.
type Runner struct {
	Collector *collector.Collector
	Recorder  recorder.Recorder
}

// NewRunner creates a Runner. rec may be nil to skip run recording.
func NewRunner(c *collector.Collector, rec recorder.Recorder) *Runner {
	return &Runner{Collector: c, Recorder: rec}
}

// Run executes the pipeline and returns a complete snapshot.
func (r *Runner) Run(ctx context.Context, req Request) (*model.Snapshot, error) {
	if req.IntervalDays == 0 {
		req.IntervalDays = defaultIntervalDays
	}

	start := time.Now()
	snap, err := r.run(ctx, req)

	if r.Recorder != nil {
		rec := &recorder.RunRecord{
			At:           start.UTC(),
			Period:       string(req.Period),
			IntervalDays: req.IntervalDays,
			Requested:    len(req.Tickers),
			DurationMs:   time.Since(start).Milliseconds(),
		}
		if snap != nil {
			rec.Fetched = len(snap.Symbols)
			rec.Skipped = strings.Join(snap.Skipped, ",")
			rec.Rows = snap.Prices.Rows()
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if recErr := r.Recorder.RecordRun(rec); recErr != nil {
			log.Printf("[WARN] record run: %v", recErr)
		}
	}
	return snap, err
}

func (r *Runner) run(ctx context.Context, req Request) (*model.Snapshot, error) {
	if req.IntervalDays < 1 {
		return nil, fmt.Errorf("%w: interval must be at least 1 day, got %d", model.ErrInvalidInput, req.IntervalDays)
	}
	if _, err := model.ParsePeriod(string(req.Period)); err != nil {
		return nil, err
	}

	batch, err := r.Collector.Collect(ctx, req.Tickers, req.Period)
	if err != nil {
		return nil, err
	}

	prices, volumes, err := resample.Resample(batch.Series, batch.Order, req.IntervalDays)
	if err != nil {
		return nil, err
	}

	correlation, err := calculator.CalculateCorrelation(prices)
	if err != nil {
		return nil, err
	}
	changes, err := calculator.CalculatePriceChanges(batch.Series, batch.Order)
	if err != nil {
		return nil, err
	}
	indicators, err := calculator.CalculateIndicators(prices)
	if err != nil {
		return nil, err
	}
	normalized, err := calculator.Normalize(prices)
	if err != nil {
		return nil, err
	}

	return &model.Snapshot{
		Period:       req.Period,
		IntervalDays: req.IntervalDays,
		GeneratedAt:  time.Now().UTC(),
		Symbols:      prices.Symbols,
		Skipped:      batch.Skipped,
		Prices:       prices,
		Volumes:      volumes,
		Normalized:   normalized,
		Correlation:  correlation,
		Changes:      changes,
		Indicators:   indicators,
	}, nil
}
