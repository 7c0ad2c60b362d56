package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wonny/marketlens/internal/domain/market"
)

// wrapQueryError classifies a driver error. Context errors pass through so
// callers can tell cancellation from an outage; connection-level failures map
// to ErrDataSourceUnavailable; anything else is a plain query error.
func wrapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isContextErr(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", market.ErrDataSourceUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func isUnavailable(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case strings.HasPrefix(pgErr.Code, "53"): // insufficient resources
			return true
		case strings.HasPrefix(pgErr.Code, "57P"): // operator intervention / shutdown
			return true
		}
		return false
	}

	if pgconn.Timeout(err) {
		return true
	}
	return pgconn.SafeToRetry(err)
}
