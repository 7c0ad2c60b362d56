package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/marketlens/internal/domain/market"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestParsePeriodStart(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	// 2024-03-15 12:00 in New York
	ref := time.Date(2024, time.March, 15, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		token string
		now   time.Time
		want  string
	}{
		{"1y", ref, "2023-03-15"},
		{"ytd", ref, "2024-01-01"},
		{"YTD", ref, "2024-01-01"},
		{"max", ref, "1900-01-01"},
		{" 20D ", ref, "2024-02-24"},
		{"6m", ref, "2023-09-15"},
		{"4w", ref, "2024-02-16"},
		// 52 weeks = 364 days
		{"52w", time.Date(2024, time.January, 1, 17, 0, 0, 0, time.UTC), "2023-01-02"},
		// calendar months, overflow normalised (Feb 31 -> Mar 2)
		{"1m", time.Date(2024, time.March, 31, 16, 0, 0, 0, time.UTC), "2024-03-02"},
		{"12m", ref, "2023-03-15"},
		{"0d", ref, "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParsePeriodStart(tt.token, tt.now, ny)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParsePeriodStart_UsesReferenceTimezone(t *testing.T) {
	// 02:00 UTC on Jan 1 is still Dec 31 in New York
	now := time.Date(2024, time.January, 1, 2, 0, 0, 0, time.UTC)

	got, err := ParsePeriodStart("ytd", now, mustLoad(t, "America/New_York"))
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", got.String())

	got, err = ParsePeriodStart("ytd", now, mustLoad(t, "Asia/Seoul"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.String())

	got, err = ParsePeriodStart("1d", now, mustLoad(t, "America/New_York"))
	require.NoError(t, err)
	assert.Equal(t, "2023-12-30", got.String())
}

func TestParsePeriodStart_Invalid(t *testing.T) {
	for _, token := range []string{"abc", "", "1", "d", "1q", "-1d", "1.5y", "1 y"} {
		t.Run(token, func(t *testing.T) {
			_, err := ParsePeriodStart(token, time.Now(), time.UTC)
			assert.ErrorIs(t, err, market.ErrInvalidPeriod)
			assert.False(t, IsValidPeriod(token))
		})
	}
}
