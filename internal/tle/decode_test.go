package tle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandYear(t *testing.T) {
	t.Parallel()

	tests := map[int]int{
		0:  2000,
		15: 2015,
		56: 2056,
		57: 1957,
		98: 1998,
		99: 1999,
	}
	for in, want := range tests {
		assert.Equal(t, want, ExpandYear(in), "year %02d", in)
	}
}

func TestEpochTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		year int
		doy  float64
		want string
	}{
		{"iss", 2015, 310.90801927, "2015-11-06T21:47:32.864928Z"},
		{"galaxy 11", 2015, 310.22169616, "2015-11-06T05:19:14.548224Z"},
		{"navstar 34", 2015, 311.29545418, "2015-11-07T07:05:27.241152Z"},
		{"elektron 3", 2015, 310.88362162, "2015-11-06T21:12:24.907968Z"},
		{"day one is january first", 2020, 1.0, "2020-01-01T00:00:00.000000Z"},
		{"leap day end of year", 2020, 366.5, "2020-12-31T12:00:00.000000Z"},
		{"microsecond rounding carries", 2020, 1.9999999999999, "2020-01-02T00:00:00.000000Z"},
		{"whole second keeps six digits", 1999, 32.5, "1999-02-01T12:00:00.000000Z"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EpochTimestamp(tc.year, tc.doy))
		})
	}
}

func TestEpochTime(t *testing.T) {
	t.Parallel()

	got := EpochTime(2015, 310.90801927)
	want := time.Date(2015, time.November, 6, 21, 47, 32, 864928000, time.UTC)
	assert.True(t, want.Equal(got), "got %s", got)
	assert.Equal(t, "2015-11-06T21:47:32.864928Z", FormatEpoch(got))
}

func TestEpochTimeLargeDayCount(t *testing.T) {
	t.Parallel()

	// Day counts far past a year must not wrap around time.Duration.
	got := EpochTime(2015, 120000.5)
	want := time.Date(2343, time.July, 20, 12, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(got), "got %s", got)

	got = EpochTime(2015, 999999999.5)
	assert.True(t, got.After(time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)), "got %s", got)
	assert.Equal(t, 12, got.Hour())
}

func TestDecodeExponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		decimal bool
		want    float64
	}{
		{"13975-3", true, 0.00013975},
		{" 13975-3", true, 0.00013975},
		{"+20588-3", true, 0.00020588},
		{"-11606-4", true, -0.000011606},
		{"00000-0", true, 0},
		{" 00000-0", true, 0},
		{"+00000+0", true, 0},
		{"12345 1", true, 1.2345},
		{"12345-2", false, 123.45},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := DecodeExponent(tc.raw, tc.decimal)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeExponentErrors(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "-3", "abcde-3", "1.345-3", "13975x3", "     -3"} {
		_, err := DecodeExponent(raw, true)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestDecodeEccentricity(t *testing.T) {
	t.Parallel()

	got, err := DecodeEccentricity("0006748")
	require.NoError(t, err)
	assert.Equal(t, 0.0006748, got)

	got, err = DecodeEccentricity("2988688")
	require.NoError(t, err)
	assert.Equal(t, 0.2988688, got)

	for _, raw := range []string{"", "00 6748", "-006748", "0.06748"} {
		_, err := DecodeEccentricity(raw)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestIntlDesignator(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1998-067A", IntlDesignator(98, 67, "A  "))
	assert.Equal(t, "1964-038A", IntlDesignator(64, 38, "A  "))
	assert.Equal(t, "2005-001ABC", IntlDesignator(5, 1, "ABC"))
	assert.Equal(t, "2056-123", IntlDesignator(56, 123, "   "))
}
