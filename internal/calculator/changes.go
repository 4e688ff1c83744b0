package calculator

import (
	"fmt"
	"log"
	"math"
	"sort"

	"ChipPulse/internal/model"
)

// CalculatePriceChanges summarizes each ticker's movement across its full
// daily series: first and last closes plus percent change, all rounded to
// two decimals. The summary reads the daily series rather than the bucketed
// table so the reported starting price is the true first close of the
// period. Tickers with no usable starting price are skipped.
func CalculatePriceChanges(seriesBySymbol map[string][]model.PricePoint, order []string) (map[string]model.PriceChange, error) {
	if len(seriesBySymbol) == 0 {
		return nil, fmt.Errorf("%w: price changes need at least one series", model.ErrEmptyInput)
	}
	if len(order) == 0 {
		for symbol := range seriesBySymbol {
			order = append(order, symbol)
		}
		sort.Strings(order)
	}
	changes := make(map[string]model.PriceChange, len(order))
	for _, symbol := range order {
		points := seriesBySymbol[symbol]
		if len(points) == 0 {
			continue
		}
		initial := points[0].Close
		final := points[len(points)-1].Close
		if initial == 0 {
			log.Printf("[WARN] %s: zero initial price, skipping change summary", symbol)
			continue
		}
		changes[symbol] = model.PriceChange{
			Initial: round2(initial),
			Final:   round2(final),
			Percent: round2((final - initial) / initial * 100),
		}
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no usable series for price changes", model.ErrEmptyInput)
	}
	return changes, nil
}

// round2 rounds to two decimals, halves away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
