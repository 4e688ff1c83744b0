package api

import (
	"math"
	"time"

	"ChipPulse/internal/model"
)

// JSON cannot carry NaN, so missing values cross the wire as nulls via
// *float64 columns.

type snapshotDTO struct {
	Period       string                  `json:"period"`
	IntervalDays int                     `json:"interval_days"`
	GeneratedAt  string                  `json:"generated_at"`
	Symbols      []string                `json:"symbols"`
	Skipped      []string                `json:"skipped,omitempty"`
	Dates        []string                `json:"dates"`
	Prices       map[string][]*float64   `json:"prices"`
	Volumes      map[string][]float64    `json:"volumes"`
	Normalized   map[string][]*float64   `json:"normalized"`
	Correlation  correlationDTO          `json:"correlation"`
	Changes      map[string]changeDTO    `json:"changes"`
	Indicators   map[string]indicatorDTO `json:"indicators"`
}

type correlationDTO struct {
	Symbols []string    `json:"symbols"`
	Matrix  [][]float64 `json:"matrix"`
}

type changeDTO struct {
	Initial float64 `json:"initial"`
	Final   float64 `json:"final"`
	Percent float64 `json:"percent"`
}

type indicatorDTO struct {
	MA20 *float64 `json:"ma20"`
	MA50 *float64 `json:"ma50"`
	RSI  *float64 `json:"rsi14"`
}

type companyDTO struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Sector    string  `json:"sector,omitempty"`
	Industry  string  `json:"industry,omitempty"`
	Website   string  `json:"website,omitempty"`
	Summary   string  `json:"summary,omitempty"`
	MarketCap float64 `json:"market_cap,omitempty"`
}

func toSnapshotDTO(snap *model.Snapshot) snapshotDTO {
	dto := snapshotDTO{
		Period:       string(snap.Period),
		IntervalDays: snap.IntervalDays,
		GeneratedAt:  snap.GeneratedAt.Format(time.RFC3339),
		Symbols:      snap.Symbols,
		Skipped:      snap.Skipped,
		Dates:        make([]string, 0, snap.Prices.Rows()),
		Prices:       make(map[string][]*float64, len(snap.Symbols)),
		Volumes:      make(map[string][]float64, len(snap.Symbols)),
		Normalized:   make(map[string][]*float64, len(snap.Symbols)),
		Changes:      make(map[string]changeDTO, len(snap.Changes)),
		Indicators:   make(map[string]indicatorDTO, len(snap.Indicators)),
	}
	for _, t := range snap.Prices.Index {
		dto.Dates = append(dto.Dates, t.Format("2006-01-02"))
	}
	for _, symbol := range snap.Symbols {
		dto.Prices[symbol] = toNullableColumn(snap.Prices.Column(symbol))
		dto.Volumes[symbol] = snap.Volumes.Column(symbol)
		dto.Normalized[symbol] = toNullableColumn(snap.Normalized.Column(symbol))
	}
	if snap.Correlation != nil {
		dto.Correlation = correlationDTO{
			Symbols: snap.Correlation.Symbols,
			Matrix:  snap.Correlation.Matrix,
		}
	}
	for symbol, ch := range snap.Changes {
		dto.Changes[symbol] = changeDTO(ch)
	}
	for symbol, ind := range snap.Indicators {
		dto.Indicators[symbol] = indicatorDTO{MA20: ind.MA20, MA50: ind.MA50, RSI: ind.RSI}
	}
	return dto
}

func toNullableColumn(col []float64) []*float64 {
	out := make([]*float64, len(col))
	for i, v := range col {
		if math.IsNaN(v) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}

func toCompanyDTO(p *model.CompanyProfile) companyDTO {
	return companyDTO{
		Symbol:    p.Symbol,
		Name:      p.Name,
		Sector:    p.Sector,
		Industry:  p.Industry,
		Website:   p.Website,
		Summary:   p.Summary,
		MarketCap: p.MarketCap,
	}
}
