package indicators

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/marketlens/internal/domain/market"
)

// EpochStart is the "no lower bound" start used by the max period
var EpochStart = market.NewDate(1900, time.January, 1)

var periodPattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParsePeriodStart converts a period token (20d, 6m, 52w, 1y, ytd, max) into the
// calendar start date, relative to today's wall date in loc at instant now.
func ParsePeriodStart(token string, now time.Time, loc *time.Location) (market.Date, error) {
	p := strings.ToLower(strings.TrimSpace(token))
	if loc == nil {
		loc = time.UTC
	}

	// today 00:00 as a timezone-less anchor, so DST and server tz cannot shift the result
	today := market.DateOf(now.In(loc))

	switch p {
	case "max":
		return EpochStart, nil
	case "ytd":
		return market.NewDate(today.Year(), time.January, 1), nil
	}

	m := periodPattern.FindStringSubmatch(p)
	if m == nil {
		return market.Date{}, fmt.Errorf("%w: %s", market.ErrInvalidPeriod, token)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return market.Date{}, fmt.Errorf("%w: %s", market.ErrInvalidPeriod, token)
	}

	switch m[2] {
	case "d":
		return today.AddDate(0, 0, -n), nil
	case "w":
		return today.AddDate(0, 0, -n*7), nil // 52w = 364 days
	case "m":
		return today.AddDate(0, -n, 0), nil
	default: // "y"
		return today.AddDate(-n, 0, 0), nil
	}
}

// IsValidPeriod reports whether token matches the period grammar
func IsValidPeriod(token string) bool {
	p := strings.ToLower(strings.TrimSpace(token))
	return p == "max" || p == "ytd" || periodPattern.MatchString(p)
}
