package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ratesvc/internal/auth"
	"ratesvc/internal/repository"
	"ratesvc/internal/service"
)

// LoginRequest represents the request body for authentication
type LoginRequest struct {
	Username string `json:"username" example:"client"`
	Password string `json:"password" example:"secret"`
}

// LoginResponse represents a successful authentication response
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at" example:"2026-08-30T12:00:00Z"`
}

// ConvertRequest represents the request body for currency conversion
type ConvertRequest struct {
	From   string          `json:"from" example:"EUR"`
	To     string          `json:"to" example:"USD"`
	Amount decimal.Decimal `json:"amount" swaggertype:"number" example:"10"`
}

// FetchLogResponse represents the operational fetch audit listing
type FetchLogResponse struct {
	Entries []repository.FetchLogEntry `json:"entries"`
}

func badRequest[T any](w http.ResponseWriter, msg string) {
	resp := service.Response[T]{
		Success:    false,
		Message:    "Failure",
		Errors:     []string{msg},
		StatusCode: http.StatusBadRequest,
	}
	writeJSON(w, resp.StatusCode, resp)
}

// HandleLatestRates godoc
// @Summary Get latest exchange rates
// @Description Returns the latest exchange rates for a base currency, served from cache when fresh. Excluded currencies are rejected and never appear in results.
// @Tags rates
// @Produce json
// @Security BearerAuth
// @Param base query string true "Base currency code" example(EUR)
// @Success 200 {object} service.Response[service.LatestRates]
// @Failure 400 {object} service.Response[service.LatestRates] "Invalid or excluded base currency"
// @Failure 500 {object} service.Response[service.LatestRates] "Upstream fetch failed"
// @Router /currency/latest [get]
func HandleLatestRates(svc service.ExchangeRateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := strings.TrimSpace(r.URL.Query().Get("base"))
		resp := svc.GetLatestRates(r.Context(), base)
		writeJSON(w, resp.StatusCode, resp)
	}
}

// HandleHistoricalRates godoc
// @Summary Get paginated historical exchange rates
// @Description Returns one page of historical rates for a base currency over an inclusive date range. The date list is re-paginated on every request.
// @Tags rates
// @Produce json
// @Security BearerAuth
// @Param base query string true "Base currency code" example(EUR)
// @Param start_date query string true "Range start (YYYY-MM-DD)" example(2024-01-01)
// @Param end_date query string true "Range end (YYYY-MM-DD)" example(2024-01-31)
// @Param page_number query int false "1-based page number" default(1)
// @Param page_size query int false "Dates per page" default(10)
// @Param order_by query string false "Sort key" default(date)
// @Param ascending query bool false "Sort direction" default(true)
// @Success 200 {object} service.Response[service.HistoricalRates]
// @Failure 400 {object} service.Response[service.HistoricalRates] "Invalid parameters"
// @Failure 500 {object} service.Response[service.HistoricalRates] "Upstream fetch failed"
// @Router /currency/historical [get]
func HandleHistoricalRates(svc service.ExchangeRateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		q := service.HistoricalQuery{
			Base:       strings.TrimSpace(query.Get("base")),
			StartDate:  strings.TrimSpace(query.Get("start_date")),
			EndDate:    strings.TrimSpace(query.Get("end_date")),
			PageNumber: 1,
			PageSize:   10,
			OrderBy:    "date",
			Ascending:  true,
		}
		// Malformed numbers become zero so validation rejects them uniformly.
		if raw := query.Get("page_number"); raw != "" {
			q.PageNumber, _ = strconv.Atoi(raw)
		}
		if raw := query.Get("page_size"); raw != "" {
			q.PageSize, _ = strconv.Atoi(raw)
		}
		if raw := query.Get("order_by"); raw != "" {
			q.OrderBy = raw
		}
		if raw := query.Get("ascending"); raw != "" {
			asc, err := strconv.ParseBool(raw)
			if err != nil {
				badRequest[service.HistoricalRates](w, "ascending must be true or false")
				return
			}
			q.Ascending = asc
		}

		resp := svc.GetHistoricalRates(r.Context(), q)
		writeJSON(w, resp.StatusCode, resp)
	}
}

// HandleConvert godoc
// @Summary Convert an amount between currencies
// @Description Converts an amount using today's rate for the currency pair. The pair's rate is cached for the rest of the UTC day, so repeated conversions reuse the same rate.
// @Tags rates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConvertRequest true "Conversion request"
// @Success 200 {object} service.Response[service.Conversion]
// @Failure 400 {object} service.Response[service.Conversion] "Invalid or excluded currency"
// @Failure 500 {object} service.Response[service.Conversion] "Rate unavailable"
// @Router /currency/convert [post]
func HandleConvert(svc service.ExchangeRateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConvertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest[service.Conversion](w, "invalid JSON body")
			return
		}
		if req.Amount.IsNegative() {
			badRequest[service.Conversion](w, "amount must not be negative")
			return
		}

		resp := svc.Convert(r.Context(), req.From, req.To, req.Amount)
		writeJSON(w, resp.StatusCode, resp)
	}
}

// HandleLogin godoc
// @Summary Authenticate and obtain a bearer token
// @Description Verifies the seeded credentials and returns a signed JWT for use on the rate endpoints.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid JSON body"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func HandleLogin(issuer *auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
			return
		}

		token, expiresAt, err := issuer.Authenticate(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid username or password"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		})
	}
}

// HandleListFetches godoc
// @Summary List recent upstream fetches
// @Description Returns the most recent archived upstream fetch attempts, newest first. Admin only.
// @Tags ops
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} FetchLogResponse
// @Failure 500 {object} ErrorResponse "Storage error"
// @Router /ops/fetches [get]
func HandleListFetches(repo *repository.FetchLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		entries, err := repo.ListRecent(r.Context(), limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to read fetch log"})
			return
		}
		writeJSON(w, http.StatusOK, FetchLogResponse{Entries: entries})
	}
}
