// Package provider implements external rate providers for fetching currency exchange rates.
package provider

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUpstreamUnavailable indicates a transport or protocol failure while
// talking to an upstream rate source. Errors wrapping it are treated as
// transient by the resilience layer.
var ErrUpstreamUnavailable = errors.New("upstream rate source unavailable")

// RateSnapshot holds the rates for one base currency as of a single date.
// Rates maps target currency codes to the value of one unit of the base.
type RateSnapshot struct {
	Base  string
	Date  string
	Rates map[string]decimal.Decimal
}

// HistoricalRateSet holds per-date rate maps for one base currency over an
// inclusive date range. Only dates the upstream returned are present.
type HistoricalRateSet struct {
	Base      string
	StartDate string
	EndDate   string
	Rates     map[string]map[string]decimal.Decimal
}

// RateProvider fetches raw rate data from one upstream source. Each call is a
// single network request with no retry or caching; resilience sits above.
type RateProvider interface {
	FetchLatest(ctx context.Context, base string) (*RateSnapshot, error)
	FetchHistorical(ctx context.Context, base, startDate, endDate string) (*HistoricalRateSet, error)
}
