package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"ChipPulse/internal/model"
)

// TwelveDataFetcher implements Fetcher using the Twelve Data REST API. It is
// selected when a data_source base URL is configured, for deployments that
// hold an API key instead of relying on the public Yahoo endpoint.
type TwelveDataFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewTwelveDataFetcher creates a new fetcher with optional proxy support.
func NewTwelveDataFetcher(baseURL, apiKey, proxyURL string) *TwelveDataFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TwelveDataFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *TwelveDataFetcher) Name() string { return "twelvedata" }

// timeSeriesResponse is the expected JSON shape of /time_series. All numeric
// fields arrive as strings.
type timeSeriesResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

// FetchDailySeries requests daily close/volume history. Twelve Data pages by
// sample count, so the period is translated to an outputsize.
func (f *TwelveDataFetcher) FetchDailySeries(ctx context.Context, symbol string, period model.Period) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("outputsize", strconv.Itoa(period.TradingDays()))
	q.Set("apikey", f.APIKey)

	u := fmt.Sprintf("%s/time_series?%s", f.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata: status %d", resp.StatusCode)
	}

	var body timeSeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("twelvedata decode: %w", err)
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata api error: %s", body.Message)
	}
	if len(body.Values) == 0 {
		return nil, nil // no history for this symbol
	}

	points := make([]model.PricePoint, 0, len(body.Values))
	for _, v := range body.Values {
		tm, err := time.Parse("2006-01-02", v.Datetime)
		if err != nil {
			tm, err = time.Parse("2006-01-02 15:04:05", v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("twelvedata parse time %q: %w", v.Datetime, err)
			}
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("twelvedata parse close %q: %w", v.Close, err)
		}
		var vol float64
		if v.Volume != "" {
			vol, err = strconv.ParseFloat(v.Volume, 64)
			if err != nil {
				return nil, fmt.Errorf("twelvedata parse volume %q: %w", v.Volume, err)
			}
		}
		points = append(points, model.PricePoint{Time: tm.UTC(), Close: c, Volume: vol})
	}

	// Twelve Data returns newest first.
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

// profileResponse is the expected JSON shape of /profile.
type profileResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

// FetchCompanyProfile requests company reference data for one symbol.
func (f *TwelveDataFetcher) FetchCompanyProfile(ctx context.Context, symbol string) (*model.CompanyProfile, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", f.APIKey)

	u := fmt.Sprintf("%s/profile?%s", f.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata profile fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata profile: status %d", resp.StatusCode)
	}

	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("twelvedata profile decode: %w", err)
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata profile api error: %s", body.Message)
	}

	return &model.CompanyProfile{
		Symbol:   symbol,
		Name:     body.Name,
		Sector:   body.Sector,
		Industry: body.Industry,
		Website:  body.Website,
		Summary:  body.Description,
	}, nil
}
