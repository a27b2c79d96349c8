package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var _ RateProvider = (*ExchangeRateHostProvider)(nil)

// ExchangeRateHostProvider fetches rates from the exchangerate.host API.
type ExchangeRateHostProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewExchangeRateHostProvider creates a new ExchangeRateHostProvider with the given configuration.
func NewExchangeRateHostProvider(baseURL, apiKey string, timeoutSec int) *ExchangeRateHostProvider {
	if baseURL == "" {
		baseURL = "https://api.exchangerate.host"
	}
	return &ExchangeRateHostProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

// exchangerate.host live API response structure
type erHostLiveResponse struct {
	Success bool                       `json:"success"`
	Source  string                     `json:"source"`
	Date    string                     `json:"date"`
	Quotes  map[string]decimal.Decimal `json:"quotes"`
}

// exchangerate.host timeframe API response structure
type erHostTimeframeResponse struct {
	Success   bool                                  `json:"success"`
	Source    string                                `json:"source"`
	StartDate string                                `json:"start_date"`
	EndDate   string                                `json:"end_date"`
	Quotes    map[string]map[string]decimal.Decimal `json:"quotes"`
}

// FetchLatest fetches the current full quote map for the base currency.
func (p *ExchangeRateHostProvider) FetchLatest(ctx context.Context, base string) (*RateSnapshot, error) {
	reqURL := fmt.Sprintf("%s/live?access_key=%s&source=%s", p.baseURL, p.apiKey, base)

	var result erHostLiveResponse
	if err := p.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: external API returned success=false for %s", ErrUpstreamUnavailable, base)
	}

	return &RateSnapshot{
		Base:  result.Source,
		Date:  result.Date,
		Rates: unprefixQuotes(result.Quotes, base),
	}, nil
}

// FetchHistorical fetches per-date quote maps over the inclusive date range.
func (p *ExchangeRateHostProvider) FetchHistorical(ctx context.Context, base, startDate, endDate string) (*HistoricalRateSet, error) {
	reqURL := fmt.Sprintf("%s/timeframe?access_key=%s&source=%s&start_date=%s&end_date=%s",
		p.baseURL, p.apiKey, base, startDate, endDate)

	var result erHostTimeframeResponse
	if err := p.getJSON(ctx, reqURL, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: external API returned success=false for %s", ErrUpstreamUnavailable, base)
	}

	rates := make(map[string]map[string]decimal.Decimal, len(result.Quotes))
	for date, quotes := range result.Quotes {
		rates[date] = unprefixQuotes(quotes, base)
	}

	return &HistoricalRateSet{
		Base:      result.Source,
		StartDate: result.StartDate,
		EndDate:   result.EndDate,
		Rates:     rates,
	}, nil
}

// The API returns quotes keyed as "BASEQUOTE", e.g. "EURMXN"; strip the
// base prefix to get plain target currency codes.
func unprefixQuotes(quotes map[string]decimal.Decimal, base string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(quotes))
	for key, val := range quotes {
		target := strings.TrimPrefix(key, strings.ToUpper(base))
		if target == key || target == "" {
			continue
		}
		out[target] = val
	}
	return out
}

func (p *ExchangeRateHostProvider) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("external API request creation failed: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: external API request failed: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: external API returned status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode external API response: %v", ErrUpstreamUnavailable, err)
	}
	return nil
}
