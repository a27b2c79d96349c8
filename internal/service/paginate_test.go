package service

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRange(days int) map[string]map[string]decimal.Decimal {
	rates := make(map[string]map[string]decimal.Decimal, days)
	for i := 1; i <= days; i++ {
		date := fmt.Sprintf("2024-01-%02d", i)
		rates[date] = map[string]decimal.Decimal{"USD": decimal.NewFromInt(int64(i))}
	}
	return rates
}

func TestPaginateByDateAscending(t *testing.T) {
	rates := sampleRange(5)

	page := paginateByDate(rates, "date", true, 1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, "2024-01-01", page[0].Date)
	assert.Equal(t, "2024-01-02", page[1].Date)

	page = paginateByDate(rates, "date", true, 3, 2)
	require.Len(t, page, 1)
	assert.Equal(t, "2024-01-05", page[0].Date)
}

func TestPaginateByDateDescending(t *testing.T) {
	rates := sampleRange(3)

	page := paginateByDate(rates, "date", false, 1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, "2024-01-03", page[0].Date)
	assert.Equal(t, "2024-01-02", page[1].Date)
}

func TestPaginateByDateCoversEveryDateExactlyOnce(t *testing.T) {
	rates := sampleRange(7)
	seen := make(map[string]int)

	for pageNum := 1; ; pageNum++ {
		page := paginateByDate(rates, "date", true, pageNum, 3)
		if len(page) == 0 {
			break
		}
		for _, d := range page {
			seen[d.Date]++
		}
	}

	require.Len(t, seen, 7)
	for date, count := range seen {
		assert.Equal(t, 1, count, "date %s appeared %d times", date, count)
	}
}

func TestPaginateByDatePastEnd(t *testing.T) {
	rates := sampleRange(2)

	page := paginateByDate(rates, "date", true, 5, 10)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestPaginateByDateHugePageNumber(t *testing.T) {
	rates := sampleRange(2)

	// (pageNumber-1)*pageSize would overflow int here; the page is simply
	// past the end of the data.
	page := paginateByDate(rates, "date", true, math.MaxInt/2+2, 4)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	page = paginateByDate(rates, "date", true, math.MaxInt, math.MaxInt)
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestPaginateByDateUnknownOrderKeyStaysAscending(t *testing.T) {
	rates := sampleRange(2)

	page := paginateByDate(rates, "rate", false, 1, 10)
	require.Len(t, page, 2)
	assert.Equal(t, "2024-01-01", page[0].Date)
}
