// Package cache provides the time-bounded key-value store that sits in front
// of the rate providers, with in-memory and Redis backends.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RateCache is a TTL key-value store for serialized rate data. Values are
// JSON blobs owned by the caller. Implementations are safe for concurrent
// use; concurrent writes to the same key are last-write-wins.
type RateCache interface {
	// Get returns the value for key, or ok=false on a miss or expired entry.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key, overwriting unconditionally.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builders. The operation prefix keeps keys collision-free across
// operation types.

// LatestKey returns the cache key for latest rates of a base currency.
func LatestKey(base string) string {
	return "latest:" + strings.ToUpper(base)
}

// HistoricalKey returns the cache key for a historical range fetch.
func HistoricalKey(base, startDate, endDate string) string {
	return fmt.Sprintf("historical:%s:%s:%s", strings.ToUpper(base), startDate, endDate)
}

// ConversionKey returns the cache key for a conversion rate on the given day.
func ConversionKey(from, to, day string) string {
	return fmt.Sprintf("convert:%s:%s:%s", strings.ToUpper(from), strings.ToUpper(to), day)
}
