package collector

import (
	"context"

	"ChipPulse/internal/model"
)

// Fetcher retrieves daily close/volume history from a market data provider.
type Fetcher interface {
	FetchDailySeries(ctx context.Context, symbol string, period model.Period) ([]model.PricePoint, error)
	Name() string
}

// ProfileFetcher is implemented by providers that can also serve company
// reference data.
type ProfileFetcher interface {
	FetchCompanyProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error)
}
