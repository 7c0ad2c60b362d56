package market

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)

	for _, raw := range []string{"", "2024-13-01", "2023-02-29", "06/28/2024"} {
		_, err := ParseDate(raw)
		assert.ErrorIs(t, err, ErrInvalidDate, raw)
	}
}

func TestDateOf_KeepsWallDate(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// 2024-06-28 23:30 UTC is already 06-29 in Seoul
	instant := time.Date(2024, time.June, 28, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-29", DateOf(instant.In(seoul)).String())
	assert.Equal(t, "2024-06-28", DateOf(instant).String())
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Date `json:"a"`
		B Date `json:"b"`
	}{A: NewDate(2024, time.June, 28)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2024-06-28","b":null}`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2023-01-02"`), &d))
	assert.Equal(t, NewDate(2023, time.January, 2), d)
	assert.Error(t, json.Unmarshal([]byte(`"2023-1-2"`), &d))
}

func TestParseTickerList(t *testing.T) {
	assert.Nil(t, ParseTickerList("  "))
	assert.Equal(t, []string{"AAPL", "MSFT", "005930"}, ParseTickerList("aapl, msft,,AAPL ,005930"))
}

func TestParseSlug(t *testing.T) {
	s, err := ParseSlug("kosdaq150")
	require.NoError(t, err)
	assert.Equal(t, SlugKosdaq150, s)

	_, err = ParseSlug("NASDAQ100")
	assert.ErrorIs(t, err, ErrUnknownMarket)
	assert.True(t, IsClientError(err))
}

func TestMarket_Location(t *testing.T) {
	_, err := Market{Slug: SlugKospi50, Timezone: "Asia/Seoul"}.Location()
	assert.NoError(t, err)

	_, err = Market{Slug: SlugKospi50, Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
