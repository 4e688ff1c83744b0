package model

import (
	"fmt"
	"time"
)

// Period is a provider lookback window for daily history.
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
)

// ParsePeriod validates a period string from config or query parameters.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Period1Mo, Period3Mo, Period6Mo, Period1Y, Period2Y, Period5Y:
		return p, nil
	}
	return "", fmt.Errorf("%w: unsupported period %q", ErrInvalidInput, s)
}

// TradingDays returns the approximate number of daily samples the period covers.
// Used by providers that page by sample count rather than by range string.
func (p Period) TradingDays() int {
	switch p {
	case Period1Mo:
		return 22
	case Period3Mo:
		return 66
	case Period6Mo:
		return 126
	case Period1Y:
		return 252
	case Period2Y:
		return 504
	case Period5Y:
		return 1260
	}
	return 252
}

// PricePoint is one daily close/volume sample.
type PricePoint struct {
	Time   time.Time
	Close  float64
	Volume float64
}
