package calculator

import (
	"errors"
	"fmt"
	"math"

	"ChipPulse/internal/model"
)

// CalculateSMA computes the simple moving average of the trailing period values.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateRSI computes the Relative Strength Index from the trailing period
// deltas, using simple rolling means of gains and losses. A window with no
// losses clamps to 100, which also covers the flat-series case.
func CalculateRSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period+1 {
		return 0, errors.New("not enough data for RSI calculation")
	}
	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	meanGain := gains / float64(period)
	meanLoss := losses / float64(period)
	if meanLoss == 0 {
		return 100, nil
	}
	rs := meanGain / meanLoss
	return 100 - 100/(1+rs), nil
}

// CalculateIndicators takes the latest MA20, MA50, and RSI(14) value for
// every column. Indicators with too little history stay nil.
func CalculateIndicators(t *model.Table) (map[string]model.IndicatorSnapshot, error) {
	if t.Empty() {
		return nil, fmt.Errorf("%w: indicators need at least one series", model.ErrEmptyInput)
	}
	out := make(map[string]model.IndicatorSnapshot, len(t.Symbols))
	for _, symbol := range t.Symbols {
		values := validSuffix(t.Column(symbol))
		var snap model.IndicatorSnapshot
		if ma, err := CalculateSMA(values, 20); err == nil {
			snap.MA20 = ptr(round2(ma))
		}
		if ma, err := CalculateSMA(values, 50); err == nil {
			snap.MA50 = ptr(round2(ma))
		}
		if rsi, err := CalculateRSI(values, 14); err == nil {
			snap.RSI = ptr(round2(rsi))
		}
		out[symbol] = snap
	}
	return out, nil
}

// validSuffix returns the run of present values at the end of the column.
// Carried-forward columns only have gaps at the front.
func validSuffix(col []float64) []float64 {
	for i := len(col) - 1; i >= 0; i-- {
		if math.IsNaN(col[i]) {
			return col[i+1:]
		}
	}
	return col
}

func ptr(v float64) *float64 { return &v }
