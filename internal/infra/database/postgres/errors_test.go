package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/marketlens/internal/domain/market"
)

func TestWrapQueryError(t *testing.T) {
	assert.NoError(t, wrapQueryError("op", nil))

	err := wrapQueryError("op", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, market.ErrDataSourceUnavailable)

	err = wrapQueryError("op", &pgconn.PgError{Code: "08006", Message: "connection failure"})
	assert.ErrorIs(t, err, market.ErrDataSourceUnavailable)

	err = wrapQueryError("op", &pgconn.PgError{Code: "57P01", Message: "admin shutdown"})
	assert.ErrorIs(t, err, market.ErrDataSourceUnavailable)

	// syntax errors are query bugs, not outages
	syntax := &pgconn.PgError{Code: "42601", Message: "syntax error"}
	err = wrapQueryError("op", syntax)
	assert.NotErrorIs(t, err, market.ErrDataSourceUnavailable)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}

func TestWrapAcquireError(t *testing.T) {
	assert.ErrorIs(t, wrapAcquireError(errors.New("dial tcp: refused")), market.ErrDataSourceUnavailable)
	assert.ErrorIs(t, wrapAcquireError(context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestReturnsSQL(t *testing.T) {
	for _, h := range returnHorizons {
		assert.Contains(t, returnsSQL, "INTERVAL '"+h+"'")
	}
	assert.Equal(t, 5, strings.Count(returnsSQL, "LEFT JOIN LATERAL"))
	assert.NotContains(t, returnsSQL, "%s")
}

func TestTraceLevel(t *testing.T) {
	assert.Equal(t, tracelog.LogLevelInfo, traceLevel("info"))
	assert.Equal(t, tracelog.LogLevelWarn, traceLevel("warn"))
	assert.Equal(t, tracelog.LogLevelError, traceLevel("error"))
	assert.Equal(t, tracelog.LogLevelDebug, traceLevel("debug"))
}
