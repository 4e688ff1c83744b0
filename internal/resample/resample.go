// Package resample converts daily price series into fixed-interval buckets
// aligned on a shared time index.
package resample

import (
	"fmt"
	"math"
	"sort"
	"time"

	"ChipPulse/internal/model"
)

type bucket struct {
	lastClose float64
	volume    float64
}

// Resample aggregates each ticker's daily series into intervalDays-wide
// buckets and aligns all tickers on the union of bucket start days.
//
// Buckets are left-closed and rooted at each ticker's own first sample day:
// a sample on day d lands in the bucket starting at
// first + floor((d-first)/intervalDays)*intervalDays. Each ticker's bucket
// grid runs contiguously from its first to its last sample, so a bucket
// covering only missing days still occupies a row. Within a bucket the price
// is the last close and the volume is the sum. On the joint index, price
// gaps carry the prior bucket's value forward (gaps before a ticker's first
// bucket stay NaN) and volume gaps are zero.
func Resample(seriesBySymbol map[string][]model.PricePoint, order []string, intervalDays int) (*model.Table, *model.Table, error) {
	if intervalDays < 1 {
		return nil, nil, fmt.Errorf("%w: interval must be at least 1 day, got %d", model.ErrInvalidInput, intervalDays)
	}
	if len(order) == 0 {
		order = make([]string, 0, len(seriesBySymbol))
		for symbol := range seriesBySymbol {
			order = append(order, symbol)
		}
		sort.Strings(order)
	}

	type symbolBuckets struct {
		symbol  string
		byStart map[time.Time]*bucket
	}

	union := make(map[time.Time]bool)
	kept := make([]symbolBuckets, 0, len(order))
	for _, symbol := range order {
		points := seriesBySymbol[symbol]
		if len(points) == 0 {
			continue
		}

		origin := dayOf(points[0].Time)
		last := origin
		for _, p := range points {
			day := dayOf(p.Time)
			if day.Before(origin) {
				origin = day
			}
			if day.After(last) {
				last = day
			}
		}

		byStart := make(map[time.Time]*bucket)
		for _, p := range points {
			day := dayOf(p.Time)
			idx := daysBetween(origin, day) / intervalDays
			start := origin.AddDate(0, 0, idx*intervalDays)
			b, ok := byStart[start]
			if !ok {
				b = &bucket{}
				byStart[start] = b
			}
			b.lastClose = p.Close
			b.volume += p.Volume
		}

		// The full grid joins the index, empty buckets included.
		for start := origin; !start.After(last); start = start.AddDate(0, 0, intervalDays) {
			union[start] = true
		}
		kept = append(kept, symbolBuckets{symbol: symbol, byStart: byStart})
	}
	if len(kept) == 0 {
		return nil, nil, fmt.Errorf("%w: no price series to resample", model.ErrEmptyInput)
	}

	index := make([]time.Time, 0, len(union))
	for start := range union {
		index = append(index, start)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	symbols := make([]string, len(kept))
	prices := &model.Table{Index: index, Values: make(map[string][]float64, len(kept))}
	volumes := &model.Table{Index: index, Values: make(map[string][]float64, len(kept))}
	for i, sb := range kept {
		symbols[i] = sb.symbol
		closeCol := make([]float64, len(index))
		volCol := make([]float64, len(index))
		carry := math.NaN()
		for row, start := range index {
			if b, ok := sb.byStart[start]; ok {
				carry = b.lastClose
				volCol[row] = b.volume
			}
			closeCol[row] = carry
		}
		prices.Values[sb.symbol] = closeCol
		volumes.Values[sb.symbol] = volCol
	}
	prices.Symbols = symbols
	volumes.Symbols = symbols
	return prices, volumes, nil
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
