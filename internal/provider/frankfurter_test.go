package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrankfurterFetchLatest(t *testing.T) {
	t.Run("decodes rate map", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/latest", r.URL.Path)
			assert.Equal(t, "EUR", r.URL.Query().Get("from"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"amount":1.0,"base":"EUR","date":"2025-08-29","rates":{"USD":1.1,"TRY":7.0}}`))
		}))
		defer srv.Close()

		p := NewFrankfurterProvider(srv.URL, 5)
		snap, err := p.FetchLatest(context.Background(), "EUR")
		require.NoError(t, err)
		assert.Equal(t, "EUR", snap.Base)
		assert.Equal(t, "2025-08-29", snap.Date)
		assert.True(t, snap.Rates["USD"].Equal(decimal.RequireFromString("1.1")))
		assert.True(t, snap.Rates["TRY"].Equal(decimal.RequireFromString("7.0")))
	})

	t.Run("non-200 is upstream unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		p := NewFrankfurterProvider(srv.URL, 5)
		_, err := p.FetchLatest(context.Background(), "EUR")
		assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	})

	t.Run("connection refused is upstream unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		p := NewFrankfurterProvider(srv.URL, 1)
		_, err := p.FetchLatest(context.Background(), "EUR")
		assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	})
}

func TestFrankfurterFetchHistorical(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2020-01-01..2020-01-03", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("from"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"amount":1.0,"base":"EUR","start_date":"2020-01-01","end_date":"2020-01-03",
			"rates":{
				"2020-01-01":{"USD":1.12},
				"2020-01-02":{"USD":1.13},
				"2020-01-03":{"USD":1.11}
			}}`))
	}))
	defer srv.Close()

	p := NewFrankfurterProvider(srv.URL, 5)
	set, err := p.FetchHistorical(context.Background(), "EUR", "2020-01-01", "2020-01-03")
	require.NoError(t, err)
	assert.Equal(t, "EUR", set.Base)
	assert.Equal(t, "2020-01-01", set.StartDate)
	assert.Equal(t, "2020-01-03", set.EndDate)
	require.Len(t, set.Rates, 3)
	assert.True(t, set.Rates["2020-01-02"]["USD"].Equal(decimal.RequireFromString("1.13")))
}

func TestExchangeRateHostFetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/live", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("source"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"source":"EUR","date":"2025-08-29","quotes":{"EURUSD":1.1,"EURGBP":0.85}}`))
	}))
	defer srv.Close()

	p := NewExchangeRateHostProvider(srv.URL, "test-key", 5)
	snap, err := p.FetchLatest(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", snap.Base)
	// quote keys are unprefixed to plain target codes
	assert.True(t, snap.Rates["USD"].Equal(decimal.RequireFromString("1.1")))
	assert.True(t, snap.Rates["GBP"].Equal(decimal.RequireFromString("0.85")))
}

func TestExchangeRateHostSuccessFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	p := NewExchangeRateHostProvider(srv.URL, "test-key", 5)
	_, err := p.FetchLatest(context.Background(), "EUR")
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}
