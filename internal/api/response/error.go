package response

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wonny/marketlens/internal/domain/market"
	"github.com/wonny/marketlens/internal/pkg/reqctx"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrCodeInternalServer    = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter  = "INVALID_PARAMETER"
	ErrCodeInvalidPeriod     = "INVALID_PERIOD"
	ErrCodeInvalidTickerSet  = "INVALID_TICKER_SET"
	ErrCodeInvalidDate       = "INVALID_DATE"
	ErrCodeUnsupportedMarket = "UNSUPPORTED_MARKET"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestCancelled  = "REQUEST_CANCELLED"
	ErrCodeRequestTimeout    = "REQUEST_TIMEOUT"

	ErrCodeDataSourceUnavailable = "DATA_SOURCE_UNAVAILABLE"
)

// Error sends an error response
func Error(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: reqctx.RequestID(r.Context()),
			Timestamp: time.Now(),
		},
	}

	event := log.Warn()
	if statusCode >= 500 {
		event = log.Error()
	}
	event.
		Str("request_id", resp.Error.RequestID).
		Str("error_code", code).
		Str("message", message).
		Int("status", statusCode).
		Msg("API error response")

	JSON(w, statusCode, resp)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, message)
}

// NotFound sends a 404 Not Found error
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusNotFound, ErrCodeNotFound, message)
}

// RateLimitExceeded sends a rate limit exceeded error
func RateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusTooManyRequests, ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

// FromError maps a domain error onto status and code. Client errors echo
// their message; server-side failures never leak internal details.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, market.ErrInvalidPeriod):
		Error(w, r, http.StatusBadRequest, ErrCodeInvalidPeriod, err.Error())
	case errors.Is(err, market.ErrInvalidTickerSet):
		Error(w, r, http.StatusBadRequest, ErrCodeInvalidTickerSet, err.Error())
	case errors.Is(err, market.ErrInvalidDate):
		Error(w, r, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
	case errors.Is(err, market.ErrUnknownMarket):
		Error(w, r, http.StatusBadRequest, ErrCodeUnsupportedMarket, "Unsupported market")
	case errors.Is(err, market.ErrInvalidParameter):
		Error(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
	case errors.Is(err, market.ErrNotFound):
		Error(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		Error(w, r, http.StatusGatewayTimeout, ErrCodeRequestTimeout, "Request timed out")
	case errors.Is(err, context.Canceled):
		Error(w, r, http.StatusServiceUnavailable, ErrCodeRequestCancelled, "Request cancelled")
	case errors.Is(err, market.ErrDataSourceUnavailable):
		log.Error().Err(err).Str("request_id", reqctx.RequestID(r.Context())).Msg("Data source unavailable")
		Error(w, r, http.StatusServiceUnavailable, ErrCodeDataSourceUnavailable, "Data source unavailable")
	default:
		log.Error().Err(err).Str("request_id", reqctx.RequestID(r.Context())).Msg("Internal server error")
		Error(w, r, http.StatusInternalServerError, ErrCodeInternalServer, "An unexpected error occurred")
	}
}
