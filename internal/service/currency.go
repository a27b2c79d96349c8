package service

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidCurrencyCode indicates a currency code is not a 3-letter code.
var ErrInvalidCurrencyCode = errors.New("invalid currency code format")

// ErrCurrencyExcluded indicates a currency is barred by the exclusion policy.
var ErrCurrencyExcluded = errors.New("currency is not allowed")

// ErrInvalidDateRange indicates a malformed or inverted date range.
var ErrInvalidDateRange = errors.New("invalid date range")

// ErrInvalidPagination indicates non-positive page number or page size.
var ErrInvalidPagination = errors.New("invalid pagination parameters")

// ErrConversionUnavailable indicates the target currency was missing from
// the fetched rates.
var ErrConversionUnavailable = errors.New("conversion unavailable")

// IsValidCurrencyCode checks whether a string is a valid 3-letter currency code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// NormalizeCurrencyCode validates and uppercases a currency code.
func NormalizeCurrencyCode(code string) (string, error) {
	if !IsValidCurrencyCode(code) {
		return "", ErrInvalidCurrencyCode
	}
	return strings.ToUpper(code), nil
}

// ExcludedSet is the fixed set of currencies that can never appear as a base,
// target, or conversion endpoint. It is immutable after construction.
type ExcludedSet struct {
	codes map[string]struct{}
}

// NewExcludedSet builds an ExcludedSet from the configured codes,
// normalizing to uppercase.
func NewExcludedSet(codes []string) ExcludedSet {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[strings.ToUpper(code)] = struct{}{}
	}
	return ExcludedSet{codes: set}
}

// Contains reports whether code is excluded (case-insensitive).
func (s ExcludedSet) Contains(code string) bool {
	_, ok := s.codes[strings.ToUpper(code)]
	return ok
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
