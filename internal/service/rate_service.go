// Package service implements the core business logic for exchange rate
// lookup, history pagination, and currency conversion.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ratesvc/internal/cache"
	"ratesvc/internal/config"
	"ratesvc/internal/metrics"
	"ratesvc/internal/provider"
	"ratesvc/internal/resilience"
)

// LatestRates is the result payload for a latest-rates lookup.
type LatestRates struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// HistoricalRates is the result payload for a paginated historical lookup.
type HistoricalRates struct {
	Base       string       `json:"base"`
	StartDate  string       `json:"start_date"`
	EndDate    string       `json:"end_date"`
	PageNumber int          `json:"page_number"`
	PageSize   int          `json:"page_size"`
	TotalDates int          `json:"total_dates"`
	Rates      []DatedRates `json:"rates"`
}

// Conversion is the result payload for a currency conversion.
type Conversion struct {
	FromCurrency    string          `json:"from_currency"`
	ToCurrency      string          `json:"to_currency"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
}

// HistoricalQuery holds the parameters of a historical-rates request.
type HistoricalQuery struct {
	Base       string
	StartDate  string
	EndDate    string
	PageNumber int
	PageSize   int
	OrderBy    string
	Ascending  bool
}

// ExchangeRateService defines the operations exposed to the transport layer.
type ExchangeRateService interface {
	GetLatestRates(ctx context.Context, base string) Response[LatestRates]
	GetHistoricalRates(ctx context.Context, q HistoricalQuery) Response[HistoricalRates]
	Convert(ctx context.Context, from, to string, amount decimal.Decimal) Response[Conversion]
}

// RateService orchestrates validation, caching, resilient fetching, and
// result shaping for all rate operations.
type RateService struct {
	provider      provider.RateProvider
	providerName  string
	invoker       *resilience.Invoker
	cache         cache.RateCache
	excluded      ExcludedSet
	archiver      Archiver
	log           *zap.SugaredLogger
	metrics       *metrics.Metrics
	latestTTL     time.Duration
	historicalTTL time.Duration
	conversionTTL time.Duration
	now           func() time.Time
}

var _ ExchangeRateService = (*RateService)(nil)

// NewRateService creates a RateService. The archiver and metrics arguments
// may be nil.
func NewRateService(
	prov provider.RateProvider,
	providerName string,
	invoker *resilience.Invoker,
	rateCache cache.RateCache,
	excluded ExcludedSet,
	archiver Archiver,
	logger *zap.SugaredLogger,
	m *metrics.Metrics,
	cacheCfg config.CacheConfig,
) *RateService {
	return &RateService{
		provider:      prov,
		providerName:  providerName,
		invoker:       invoker,
		cache:         rateCache,
		excluded:      excluded,
		archiver:      archiver,
		log:           logger,
		metrics:       m,
		latestTTL:     time.Duration(cacheCfg.LatestTTLSec) * time.Second,
		historicalTTL: time.Duration(cacheCfg.HistoricalTTLSec) * time.Second,
		conversionTTL: time.Duration(cacheCfg.ConversionTTLSec) * time.Second,
		now:           time.Now,
	}
}

// GetLatestRates returns the current rates for the base currency, serving
// from cache within the TTL window and filtering excluded currencies.
func (s *RateService) GetLatestRates(ctx context.Context, base string) Response[LatestRates] {
	resp := newResponse[LatestRates]()
	defer s.observe("latest", s.now())

	base, err := NormalizeCurrencyCode(base)
	if err != nil {
		resp.fail(http.StatusBadRequest, "Base currency is not a valid 3-letter code.")
		return resp
	}
	if s.excluded.Contains(base) {
		s.log.Warnw("Rejected excluded base currency", "base", base, "error", ErrCurrencyExcluded)
		resp.fail(http.StatusBadRequest, fmt.Sprintf("Base currency %s is not allowed.", base))
		return resp
	}

	key := cache.LatestKey(base)
	var cached map[string]decimal.Decimal
	if s.cacheGet(ctx, "latest", key, &cached) {
		resp.Result = &LatestRates{Base: base, Rates: cached}
		resp.Message = "Rates retrieved from cache."
		return resp
	}

	snap, err := s.fetchLatest(ctx, base, "latest")
	if err != nil {
		resp.fail(http.StatusInternalServerError, "Failed to fetch exchange rates from provider: "+err.Error())
		return resp
	}
	if snap == nil || len(snap.Rates) == 0 {
		resp.fail(http.StatusInternalServerError, "Failed to fetch exchange rates from provider.")
		return resp
	}

	// Strip excluded currencies even though upstream should not return them.
	rates := s.filterExcluded(snap.Rates)

	s.cacheSet(ctx, key, rates, s.latestTTL)

	resp.Result = &LatestRates{Base: base, Rates: rates}
	resp.Message = fmt.Sprintf("Latest exchange rates retrieved successfully for %s.", base)
	return resp
}

// GetHistoricalRates returns one page of the historical rates for the base
// currency over an inclusive date range. The full filtered range is cached;
// pagination is recomputed on every read.
func (s *RateService) GetHistoricalRates(ctx context.Context, q HistoricalQuery) Response[HistoricalRates] {
	resp := newResponse[HistoricalRates]()
	defer s.observe("historical", s.now())

	base, err := NormalizeCurrencyCode(q.Base)
	if err != nil {
		resp.fail(http.StatusBadRequest, "Base currency is not a valid 3-letter code.")
		return resp
	}
	if s.excluded.Contains(base) {
		resp.fail(http.StatusBadRequest, fmt.Sprintf("Base currency %s is not allowed.", base))
		return resp
	}

	start, err := parseDate(q.StartDate)
	if err != nil {
		resp.fail(http.StatusBadRequest, fmt.Sprintf("Start date %q is not a valid ISO date.", q.StartDate))
		return resp
	}
	end, err := parseDate(q.EndDate)
	if err != nil {
		resp.fail(http.StatusBadRequest, fmt.Sprintf("End date %q is not a valid ISO date.", q.EndDate))
		return resp
	}
	if start.After(end) {
		s.log.Warnw("Rejected inverted date range", "start", q.StartDate, "end", q.EndDate, "error", ErrInvalidDateRange)
		resp.fail(http.StatusBadRequest, "Start date must not be after end date.")
		return resp
	}
	if q.PageNumber < 1 || q.PageSize < 1 {
		s.log.Warnw("Rejected pagination parameters", "page_number", q.PageNumber, "page_size", q.PageSize, "error", ErrInvalidPagination)
		resp.fail(http.StatusBadRequest, "Page number and page size must be positive.")
		return resp
	}

	key := cache.HistoricalKey(base, q.StartDate, q.EndDate)
	var rates map[string]map[string]decimal.Decimal
	if !s.cacheGet(ctx, "historical", key, &rates) {
		set, err := s.fetchHistorical(ctx, base, q.StartDate, q.EndDate)
		if err != nil {
			resp.fail(http.StatusInternalServerError, "Failed to fetch historical exchange rates: "+err.Error())
			return resp
		}
		if set == nil || set.Rates == nil {
			resp.fail(http.StatusInternalServerError, "Failed to fetch historical exchange rates.")
			return resp
		}

		rates = make(map[string]map[string]decimal.Decimal, len(set.Rates))
		for date, dayRates := range set.Rates {
			rates[date] = s.filterExcluded(dayRates)
		}

		// The cache always holds the full, unpaginated range.
		s.cacheSet(ctx, key, rates, s.historicalTTL)
	}

	page := paginateByDate(rates, q.OrderBy, q.Ascending, q.PageNumber, q.PageSize)

	resp.Result = &HistoricalRates{
		Base:       base,
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
		PageNumber: q.PageNumber,
		PageSize:   q.PageSize,
		TotalDates: len(rates),
		Rates:      page,
	}
	resp.Message = fmt.Sprintf("Historical exchange rates retrieved successfully for %s.", base)
	return resp
}

// Convert converts amount from one currency to another using today's rate.
// The scalar rate (not the product) is cached under the UTC day, so repeat
// conversions for the same pair reuse the identical rate until day expiry.
func (s *RateService) Convert(ctx context.Context, from, to string, amount decimal.Decimal) Response[Conversion] {
	resp := newResponse[Conversion]()
	defer s.observe("convert", s.now())

	from, fromErr := NormalizeCurrencyCode(from)
	to, toErr := NormalizeCurrencyCode(to)
	if fromErr != nil || toErr != nil {
		resp.fail(http.StatusBadRequest, "Currency codes must be valid 3-letter codes.")
		return resp
	}
	if s.excluded.Contains(from) || s.excluded.Contains(to) {
		resp.fail(http.StatusBadRequest, fmt.Sprintf("Conversion involving %s or %s is not allowed.", from, to))
		return resp
	}

	today := s.now().UTC().Format(dateLayout)
	key := cache.ConversionKey(from, to, today)

	var cachedRate decimal.Decimal
	if s.cacheGet(ctx, "convert", key, &cachedRate) {
		resp.Result = &Conversion{
			FromCurrency:    from,
			ToCurrency:      to,
			OriginalAmount:  amount,
			ConvertedAmount: amount.Mul(cachedRate),
		}
		resp.Message = "Conversion result retrieved from cache."
		return resp
	}

	snap, err := s.fetchLatest(ctx, from, "convert")
	if err != nil {
		resp.fail(http.StatusInternalServerError, fmt.Sprintf("Unable to convert from %s to %s: %s", from, to, err.Error()))
		return resp
	}
	rate, ok := decimal.Decimal{}, false
	if snap != nil {
		rate, ok = snap.Rates[to]
	}
	if !ok {
		s.log.Errorw("Conversion rate missing", "from", from, "to", to, "error", ErrConversionUnavailable)
		resp.fail(http.StatusInternalServerError, fmt.Sprintf("Unable to convert from %s to %s.", from, to))
		return resp
	}

	// Cache the rate itself rather than the product so any amount can reuse
	// it for the rest of the day.
	s.cacheSet(ctx, key, rate, s.conversionTTL)

	converted := amount.Mul(rate)
	resp.Result = &Conversion{
		FromCurrency:    from,
		ToCurrency:      to,
		OriginalAmount:  amount,
		ConvertedAmount: converted,
	}
	resp.Message = fmt.Sprintf("Successfully converted %s %s to %s %s.", amount, from, converted, to)
	return resp
}

func (s *RateService) fetchLatest(ctx context.Context, base, operation string) (*provider.RateSnapshot, error) {
	started := s.now()
	var snap *provider.RateSnapshot
	err := s.doResilient(ctx, func(ctx context.Context) error {
		var fetchErr error
		snap, fetchErr = s.provider.FetchLatest(ctx, base)
		return fetchErr
	})
	s.recordFetch(ctx, operation, base, "", "", started, err)
	if err != nil {
		s.log.Errorw("Latest rates fetch failed", "base", base, "operation", operation, "error", err)
		return nil, err
	}
	return snap, nil
}

func (s *RateService) fetchHistorical(ctx context.Context, base, startDate, endDate string) (*provider.HistoricalRateSet, error) {
	started := s.now()
	var set *provider.HistoricalRateSet
	err := s.doResilient(ctx, func(ctx context.Context) error {
		var fetchErr error
		set, fetchErr = s.provider.FetchHistorical(ctx, base, startDate, endDate)
		return fetchErr
	})
	s.recordFetch(ctx, "historical", base, startDate, endDate, started, err)
	if err != nil {
		s.log.Errorw("Historical rates fetch failed", "base", base, "start", startDate, "end", endDate, "error", err)
		return nil, err
	}
	return set, nil
}

func (s *RateService) doResilient(ctx context.Context, op func(context.Context) error) error {
	if s.invoker == nil {
		return op(ctx)
	}
	return s.invoker.Do(ctx, op)
}

func (s *RateService) filterExcluded(rates map[string]decimal.Decimal) map[string]decimal.Decimal {
	filtered := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		if s.excluded.Contains(code) {
			continue
		}
		filtered[code] = rate
	}
	return filtered
}

// cacheGet unmarshals the cached JSON value into out, reporting hits and
// misses. Cache errors degrade to misses.
func (s *RateService) cacheGet(ctx context.Context, operation, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warnw("Cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		s.log.Infow("Cache miss", "key", key)
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.WithLabelValues(operation).Inc()
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warnw("Cache entry corrupt, refetching", "key", key, "error", err)
		return false
	}
	s.log.Infow("Cache hit", "key", key)
	if s.metrics != nil {
		s.metrics.CacheHitsTotal.WithLabelValues(operation).Inc()
	}
	return true
}

func (s *RateService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warnw("Cache value marshal failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.log.Warnw("Cache write failed", "key", key, "error", err)
	}
}

func (s *RateService) observe(operation string, started time.Time) {
	elapsed := time.Since(started)
	s.log.Infow("Operation completed", "operation", operation, "duration_ms", elapsed.Milliseconds())
	if s.metrics != nil {
		s.metrics.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}
