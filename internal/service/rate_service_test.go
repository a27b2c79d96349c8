package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ratesvc/internal/cache"
	"ratesvc/internal/config"
	"ratesvc/internal/provider"
)

type stubProvider struct {
	latestCalls     int
	historicalCalls int
	snap            *provider.RateSnapshot
	set             *provider.HistoricalRateSet
	err             error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) FetchLatest(_ context.Context, _ string) (*provider.RateSnapshot, error) {
	p.latestCalls++
	return p.snap, p.err
}

func (p *stubProvider) FetchHistorical(_ context.Context, _, _, _ string) (*provider.HistoricalRateSet, error) {
	p.historicalCalls++
	return p.set, p.err
}

type stubArchiver struct {
	records []FetchRecord
}

func (a *stubArchiver) ArchiveFetch(_ context.Context, rec FetchRecord) error {
	a.records = append(a.records, rec)
	return nil
}

func newTestService(t *testing.T, prov provider.RateProvider) *RateService {
	t.Helper()
	return NewRateService(
		prov,
		"stub",
		nil,
		cache.NewMemoryCache(),
		NewExcludedSet([]string{"TRY", "PLN", "THB", "MXN"}),
		nil,
		zap.NewNop().Sugar(),
		nil,
		config.CacheConfig{LatestTTLSec: 3600, HistoricalTTLSec: 3600, ConversionTTLSec: 86400},
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetLatestRatesFiltersExcludedCurrencies(t *testing.T) {
	prov := &stubProvider{snap: &provider.RateSnapshot{
		Base:  "EUR",
		Date:  "2026-08-30",
		Rates: map[string]decimal.Decimal{"USD": dec("1.1"), "TRY": dec("7.0")},
	}}
	svc := newTestService(t, prov)

	resp := svc.GetLatestRates(context.Background(), "EUR")

	require.True(t, resp.Success)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "EUR", resp.Result.Base)
	require.Len(t, resp.Result.Rates, 1)
	assert.True(t, resp.Result.Rates["USD"].Equal(dec("1.1")))
	assert.NotContains(t, resp.Result.Rates, "TRY")
}

func TestGetLatestRatesRejectsExcludedBase(t *testing.T) {
	prov := &stubProvider{}
	svc := newTestService(t, prov)

	resp := svc.GetLatestRates(context.Background(), "try")

	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Errors[0], "TRY")
	assert.Zero(t, prov.latestCalls, "excluded base must not reach the provider")
}

func TestGetLatestRatesRejectsInvalidBase(t *testing.T) {
	prov := &stubProvider{}
	svc := newTestService(t, prov)

	for _, base := range []string{"", "EU", "EURO", "E1R"} {
		resp := svc.GetLatestRates(context.Background(), base)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "base %q", base)
		assert.False(t, resp.Success)
	}
	assert.Zero(t, prov.latestCalls)
}

func TestGetLatestRatesServesSecondCallFromCache(t *testing.T) {
	prov := &stubProvider{snap: &provider.RateSnapshot{
		Base:  "EUR",
		Rates: map[string]decimal.Decimal{"USD": dec("1.1")},
	}}
	svc := newTestService(t, prov)

	first := svc.GetLatestRates(context.Background(), "EUR")
	second := svc.GetLatestRates(context.Background(), "EUR")

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, 1, prov.latestCalls)
	assert.Equal(t, "Rates retrieved from cache.", second.Message)
	assert.True(t, second.Result.Rates["USD"].Equal(dec("1.1")))
}

func TestGetLatestRatesEmptyRatesIsFailure(t *testing.T) {
	prov := &stubProvider{snap: &provider.RateSnapshot{Base: "EUR", Rates: map[string]decimal.Decimal{}}}
	svc := newTestService(t, prov)

	resp := svc.GetLatestRates(context.Background(), "EUR")

	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Nil(t, resp.Result)
}

func TestGetLatestRatesProviderFailure(t *testing.T) {
	prov := &stubProvider{err: provider.ErrUpstreamUnavailable}
	svc := newTestService(t, prov)

	resp := svc.GetLatestRates(context.Background(), "EUR")

	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0], "Failed to fetch exchange rates")
}

func TestGetHistoricalRatesPaginatesEarliestFirst(t *testing.T) {
	prov := &stubProvider{set: &provider.HistoricalRateSet{
		Base:      "EUR",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-03",
		Rates: map[string]map[string]decimal.Decimal{
			"2024-01-03": {"USD": dec("1.3")},
			"2024-01-01": {"USD": dec("1.1")},
			"2024-01-02": {"USD": dec("1.2")},
		},
	}}
	svc := newTestService(t, prov)

	q := HistoricalQuery{Base: "EUR", StartDate: "2024-01-01", EndDate: "2024-01-03", PageNumber: 1, PageSize: 2, OrderBy: "date", Ascending: true}
	resp := svc.GetHistoricalRates(context.Background(), q)

	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 3, resp.Result.TotalDates)
	require.Len(t, resp.Result.Rates, 2)
	assert.Equal(t, "2024-01-01", resp.Result.Rates[0].Date)
	assert.Equal(t, "2024-01-02", resp.Result.Rates[1].Date)

	q.PageNumber = 2
	resp = svc.GetHistoricalRates(context.Background(), q)
	require.Len(t, resp.Result.Rates, 1)
	assert.Equal(t, "2024-01-03", resp.Result.Rates[0].Date)

	assert.Equal(t, 1, prov.historicalCalls, "second page must be served from cache")
}

func TestGetHistoricalRatesFiltersExcludedPerDate(t *testing.T) {
	prov := &stubProvider{set: &provider.HistoricalRateSet{
		Base: "EUR",
		Rates: map[string]map[string]decimal.Decimal{
			"2024-01-01": {"USD": dec("1.1"), "PLN": dec("4.5")},
		},
	}}
	svc := newTestService(t, prov)

	q := HistoricalQuery{Base: "EUR", StartDate: "2024-01-01", EndDate: "2024-01-01", PageNumber: 1, PageSize: 10, Ascending: true}
	resp := svc.GetHistoricalRates(context.Background(), q)

	require.True(t, resp.Success)
	require.Len(t, resp.Result.Rates, 1)
	assert.NotContains(t, resp.Result.Rates[0].Rates, "PLN")
	assert.Contains(t, resp.Result.Rates[0].Rates, "USD")
}

func TestGetHistoricalRatesHugePageNumberReturnsEmptyPage(t *testing.T) {
	prov := &stubProvider{set: &provider.HistoricalRateSet{
		Base: "EUR",
		Rates: map[string]map[string]decimal.Decimal{
			"2024-01-01": {"USD": dec("1.1")},
			"2024-01-02": {"USD": dec("1.2")},
		},
	}}
	svc := newTestService(t, prov)

	// Positive but extreme page params pass validation and must yield an
	// empty page, not a slice-bounds panic from an overflowed skip count.
	q := HistoricalQuery{Base: "EUR", StartDate: "2024-01-01", EndDate: "2024-01-02", PageNumber: math.MaxInt/2 + 2, PageSize: 4, OrderBy: "date", Ascending: true}
	resp := svc.GetHistoricalRates(context.Background(), q)

	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 2, resp.Result.TotalDates)
	assert.Empty(t, resp.Result.Rates)
}

func TestGetHistoricalRatesValidation(t *testing.T) {
	prov := &stubProvider{}
	svc := newTestService(t, prov)

	tests := []struct {
		name string
		q    HistoricalQuery
	}{
		{"start after end", HistoricalQuery{Base: "EUR", StartDate: "2024-02-01", EndDate: "2024-01-01", PageNumber: 1, PageSize: 10}},
		{"malformed start date", HistoricalQuery{Base: "EUR", StartDate: "01-01-2024", EndDate: "2024-01-31", PageNumber: 1, PageSize: 10}},
		{"malformed end date", HistoricalQuery{Base: "EUR", StartDate: "2024-01-01", EndDate: "soon", PageNumber: 1, PageSize: 10}},
		{"zero page number", HistoricalQuery{Base: "EUR", StartDate: "2024-01-01", EndDate: "2024-01-31", PageNumber: 0, PageSize: 10}},
		{"zero page size", HistoricalQuery{Base: "EUR", StartDate: "2024-01-01", EndDate: "2024-01-31", PageNumber: 1, PageSize: 0}},
		{"excluded base", HistoricalQuery{Base: "MXN", StartDate: "2024-01-01", EndDate: "2024-01-31", PageNumber: 1, PageSize: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := svc.GetHistoricalRates(context.Background(), tt.q)
			assert.False(t, resp.Success)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Zero(t, prov.historicalCalls)
}

func TestConvertMultipliesByFetchedRate(t *testing.T) {
	prov := &stubProvider{snap: &provider.RateSnapshot{
		Base:  "EUR",
		Rates: map[string]decimal.Decimal{"USD": dec("1.5")},
	}}
	svc := newTestService(t, prov)

	resp := svc.Convert(context.Background(), "EUR", "USD", dec("10"))

	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.ConvertedAmount.Equal(dec("15")), "got %s", resp.Result.ConvertedAmount)
	assert.Equal(t, "EUR", resp.Result.FromCurrency)
	assert.Equal(t, "USD", resp.Result.ToCurrency)
}

func TestConvertReusesCachedRateAcrossAmounts(t *testing.T) {
	prov := &stubProvider{snap: &provider.RateSnapshot{
		Base:  "EUR",
		Rates: map[string]decimal.Decimal{"USD": dec("1.5")},
	}}
	svc := newTestService(t, prov)
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	first := svc.Convert(context.Background(), "EUR", "USD", dec("10"))
	second := svc.Convert(context.Background(), "EUR", "USD", dec("20"))

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, 1, prov.latestCalls)
	assert.Equal(t, "Conversion result retrieved from cache.", second.Message)
	assert.True(t, second.Result.ConvertedAmount.Equal(dec("30")))
}

func TestConvertTargetRateMissing(t *testing.T) {
	prov := &stubProvider{snap: &provider.RateSnapshot{
		Base:  "EUR",
		Rates: map[string]decimal.Decimal{"GBP": dec("0.85")},
	}}
	svc := newTestService(t, prov)

	resp := svc.Convert(context.Background(), "EUR", "USD", dec("10"))

	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0], "EUR")
	assert.Contains(t, resp.Errors[0], "USD")
}

func TestConvertRejectsExcludedCurrencies(t *testing.T) {
	prov := &stubProvider{}
	svc := newTestService(t, prov)

	for _, pair := range [][2]string{{"TRY", "USD"}, {"EUR", "THB"}} {
		resp := svc.Convert(context.Background(), pair[0], pair[1], dec("1"))
		assert.False(t, resp.Success)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	assert.Zero(t, prov.latestCalls)
}

func TestConvertUpstreamFailure(t *testing.T) {
	prov := &stubProvider{err: errors.New("connection refused")}
	svc := newTestService(t, prov)

	resp := svc.Convert(context.Background(), "EUR", "USD", dec("10"))

	assert.False(t, resp.Success)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRecordFetchReachesArchiver(t *testing.T) {
	prov := &stubProvider{snap: &provider.RateSnapshot{
		Base:  "EUR",
		Rates: map[string]decimal.Decimal{"USD": dec("1.1")},
	}}
	svc := newTestService(t, prov)
	arch := &stubArchiver{}
	svc.archiver = arch

	resp := svc.GetLatestRates(context.Background(), "EUR")

	require.True(t, resp.Success)
	require.Len(t, arch.records, 1)
	assert.Equal(t, "latest", arch.records[0].Operation)
	assert.Equal(t, "success", arch.records[0].Outcome)
	assert.Equal(t, "EUR", arch.records[0].Base)
}
