package calculator

import (
	"fmt"
	"log"
	"math"
	"time"

	"ChipPulse/internal/model"
)

// Normalize rescales every column so its first present value becomes 100 and
// later values keep their proportion to it. Leading gaps stay missing. A zero
// base cannot be scaled, so that column comes back all-missing.
func Normalize(t *model.Table) (*model.Table, error) {
	if t.Empty() {
		return nil, fmt.Errorf("%w: normalization needs at least one series", model.ErrEmptyInput)
	}
	out := &model.Table{
		Index:   append([]time.Time(nil), t.Index...),
		Symbols: append([]string(nil), t.Symbols...),
		Values:  make(map[string][]float64, len(t.Symbols)),
	}
	for _, symbol := range t.Symbols {
		col := t.Column(symbol)
		norm := make([]float64, len(col))
		base, _, ok := t.FirstValid(symbol)
		if !ok || base == 0 {
			log.Printf("[WARN] %s: no usable base price, normalized series omitted", symbol)
			for i := range norm {
				norm[i] = math.NaN()
			}
			out.Values[symbol] = norm
			continue
		}
		for i, v := range col {
			norm[i] = v / base * 100
		}
		out.Values[symbol] = norm
	}
	return out, nil
}
