package model

import "time"

// CorrelationMatrix is the pairwise Pearson correlation of table columns.
// Symmetric, values in [-1, 1], diagonal 1.0 for columns with non-zero
// variance. Row/column order follows Symbols.
type CorrelationMatrix struct {
	Symbols []string
	Matrix  [][]float64
}

// Value returns the coefficient for the (a, b) pair.
func (c *CorrelationMatrix) Value(a, b string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	ia, ib := -1, -1
	for i, s := range c.Symbols {
		if s == a {
			ia = i
		}
		if s == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return c.Matrix[ia][ib], true
}

// PriceChange summarizes one symbol's move over the full window.
// All three fields are rounded to 2 decimal places.
type PriceChange struct {
	Initial float64
	Final   float64
	Percent float64
}

// IndicatorSnapshot holds the most recent rolling-indicator values for one
// symbol. A nil field means the series is too short for that window.
type IndicatorSnapshot struct {
	MA20 *float64
	MA50 *float64
	RSI  *float64
}

// CompanyProfile describes one listed company.
type CompanyProfile struct {
	Symbol    string
	Name      string
	Sector    string
	Industry  string
	Website   string
	Summary   string
	MarketCap float64
}

// Snapshot is the complete output of one pipeline run. Everything in it is
// derived from that run's fetch; snapshots are never mutated after creation.
type Snapshot struct {
	Period       Period
	IntervalDays int
	GeneratedAt  time.Time
	Symbols      []string // symbols that produced data, basket order
	Skipped      []string // requested symbols dropped during the fetch
	Prices       *Table
	Volumes      *Table
	Normalized   *Table
	Correlation  *CorrelationMatrix
	Changes      map[string]PriceChange
	Indicators   map[string]IndicatorSnapshot
}
