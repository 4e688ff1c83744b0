package model

import (
	"math"
	"time"
)

// Table holds one series per symbol, all aligned on a shared time index.
// Every column has exactly len(Index) values. A column may start with a run
// of NaN when its symbol began trading after the index start; interior gaps
// are already filled by the resampler.
type Table struct {
	Index   []time.Time
	Symbols []string
	Values  map[string][]float64
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t == nil || len(t.Index) == 0 || len(t.Symbols) == 0
}

// Rows returns the length of the shared index.
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}

// Column returns the series for symbol, or nil if the symbol is not present.
func (t *Table) Column(symbol string) []float64 {
	if t == nil {
		return nil
	}
	return t.Values[symbol]
}

// FirstValid returns the first non-NaN value of the column and its row index.
// ok is false when the column is missing or entirely NaN.
func (t *Table) FirstValid(symbol string) (v float64, row int, ok bool) {
	for i, x := range t.Column(symbol) {
		if !math.IsNaN(x) {
			return x, i, true
		}
	}
	return 0, 0, false
}

// LastValid returns the last non-NaN value of the column and its row index.
func (t *Table) LastValid(symbol string) (v float64, row int, ok bool) {
	col := t.Column(symbol)
	for i := len(col) - 1; i >= 0; i-- {
		if !math.IsNaN(col[i]) {
			return col[i], i, true
		}
	}
	return 0, 0, false
}
