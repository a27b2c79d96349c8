package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

var _ RateProvider = (*FrankfurterProvider)(nil)

// FrankfurterProvider fetches rates from the Frankfurter API.
type FrankfurterProvider struct {
	baseURL string
	client  *http.Client
}

// NewFrankfurterProvider creates a new FrankfurterProvider.
func NewFrankfurterProvider(baseURL string, timeoutSec int) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = "https://api.frankfurter.app"
	}
	return &FrankfurterProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

type frankfurterLatestResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

type frankfurterHistoricalResponse struct {
	Base      string                                `json:"base"`
	StartDate string                                `json:"start_date"`
	EndDate   string                                `json:"end_date"`
	Rates     map[string]map[string]decimal.Decimal `json:"rates"`
}

// FetchLatest retrieves the current rates for all targets of the base currency.
func (p *FrankfurterProvider) FetchLatest(ctx context.Context, base string) (*RateSnapshot, error) {
	reqURL := fmt.Sprintf("%s/latest?from=%s", p.baseURL, base)

	var result frankfurterLatestResponse
	if err := p.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}

	return &RateSnapshot{
		Base:  result.Base,
		Date:  result.Date,
		Rates: result.Rates,
	}, nil
}

// FetchHistorical retrieves per-date rates over the inclusive date range.
// The range endpoint uses the "start..end" path form.
func (p *FrankfurterProvider) FetchHistorical(ctx context.Context, base, startDate, endDate string) (*HistoricalRateSet, error) {
	reqURL := fmt.Sprintf("%s/%s..%s?from=%s", p.baseURL, startDate, endDate, base)

	var result frankfurterHistoricalResponse
	if err := p.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}

	return &HistoricalRateSet{
		Base:      result.Base,
		StartDate: result.StartDate,
		EndDate:   result.EndDate,
		Rates:     result.Rates,
	}, nil
}

func (p *FrankfurterProvider) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("frankfurter API request creation failed: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: frankfurter API request failed: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: frankfurter API returned status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode frankfurter API response: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}
