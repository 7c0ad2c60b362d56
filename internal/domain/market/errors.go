package market

import "errors"

// Domain errors
var (
	// Input errors (4xx)
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidTickerSet = errors.New("invalid ticker set")
	ErrInvalidDate      = errors.New("invalid date")
	ErrUnknownMarket    = errors.New("unsupported market")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Lookup errors
	ErrNotFound = errors.New("not found")

	// Per-ticker data gap. Never surfaced to callers; the ticker is dropped from screen output.
	ErrInsufficientData = errors.New("insufficient data")

	// Store cannot serve the request
	ErrDataSourceUnavailable = errors.New("data source unavailable")
)

// IsClientError reports whether err is caused by malformed user input
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidTickerSet) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrUnknownMarket) ||
		errors.Is(err, ErrInvalidParameter)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
