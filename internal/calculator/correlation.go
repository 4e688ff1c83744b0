package calculator

import (
	"fmt"
	"math"

	"ChipPulse/internal/model"
)

// CalculateCorrelation builds the pairwise Pearson correlation matrix over
// the table's columns, using only rows where both columns have values.
func CalculateCorrelation(t *model.Table) (*model.CorrelationMatrix, error) {
	if t.Empty() {
		return nil, fmt.Errorf("%w: correlation needs at least one series", model.ErrEmptyInput)
	}
	n := len(t.Symbols)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		// Exactly 1.0 on the diagonal, except for zero-variance columns.
		if col := t.Column(t.Symbols[i]); pearson(col, col) != 0 {
			matrix[i][i] = 1.0
		}
		for j := i + 1; j < n; j++ {
			r := pearson(t.Column(t.Symbols[i]), t.Column(t.Symbols[j]))
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return &model.CorrelationMatrix{
		Symbols: append([]string(nil), t.Symbols...),
		Matrix:  matrix,
	}, nil
}

// pearson computes the Pearson correlation of x and y over rows where both
// are present. Degenerate pairs (fewer than two shared rows, zero variance)
// yield 0.
func pearson(x, y []float64) float64 {
	var n int
	var sumX, sumY float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		n++
		sumX += x[i]
		sumY += y[i]
	}
	if n < 2 {
		return 0
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)
	var sxx, syy, sxy float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	r := sxy / math.Sqrt(sxx*syy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
