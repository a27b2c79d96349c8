package service

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// DatedRates pairs one date with its rate map. Historical results carry an
// ordered slice of these so pagination order survives JSON encoding.
type DatedRates struct {
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// paginateByDate sorts the date-keyed rate maps and returns the requested
// page. Dates sort ascending by default; orderBy "date" with ascending=false
// flips the order. Pages are 1-based, and every read re-paginates the full
// set so concurrent requests with different page params stay consistent.
func paginateByDate(rates map[string]map[string]decimal.Decimal, orderBy string, ascending bool, pageNumber, pageSize int) []DatedRates {
	dates := make([]string, 0, len(rates))
	for date := range rates {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	if strings.EqualFold(orderBy, "date") && !ascending {
		for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
			dates[i], dates[j] = dates[j], dates[i]
		}
	}

	// The skip count can overflow int for large page params, so bound the
	// page number before multiplying.
	if pageNumber-1 > len(dates)/pageSize {
		return []DatedRates{}
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(dates) {
		return []DatedRates{}
	}
	end := start + pageSize
	if end > len(dates) {
		end = len(dates)
	}

	page := make([]DatedRates, 0, end-start)
	for _, date := range dates[start:end] {
		page = append(page, DatedRates{Date: date, Rates: rates[date]})
	}
	return page
}
