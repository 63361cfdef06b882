package tle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// yearPivot splits two-digit years: below it is 20xx, at or above is 19xx.
const yearPivot = 57

// ExpandYear turns a two-digit year into a four-digit one. 00-56 map to
// 2000-2056 and 57-99 map to 1957-1999.
func ExpandYear(yy int) int {
	if yy < yearPivot {
		return 2000 + yy
	}
	return 1900 + yy
}

const epochLayout = "2006-01-02T15:04:05"

// EpochTime converts a four-digit year and a fractional day of year into a
// UTC instant with microsecond resolution. Day 1.0 is midnight on January 1.
func EpochTime(year int, doy float64) time.Time {
	// Whole days go through AddDate; a Duration only spans about 292 years.
	days := math.Floor(doy)
	seconds := (doy - days) * 86400
	whole := math.Floor(seconds)
	micros := int64(math.Round((seconds - whole) * 1e6))

	// January 0 is December 31 of the previous year; time.Date normalizes it.
	t := time.Date(year, time.January, 0, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days))
	return t.Add(time.Duration(int64(whole))*time.Second + time.Duration(micros)*time.Microsecond)
}

// EpochTimestamp renders EpochTime as an ISO-8601 string that always carries
// exactly six fractional-second digits, e.g. 2015-11-06T21:47:32.864928Z.
func EpochTimestamp(year int, doy float64) string {
	return FormatEpoch(EpochTime(year, doy))
}

// FormatEpoch renders t in UTC with exactly six fractional-second digits.
func FormatEpoch(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s.%06dZ", t.Format(epochLayout), t.Nanosecond()/1000)
}

var errExponentForm = errors.New("expected [sign]ddddd±d")

// DecodeExponent reads NORAD's compact scientific notation: an optional sign
// column, five mantissa digits and a signed one-digit exponent, such as
// " 13975-3" or "-11606-4". When assumeDecimal is set the mantissa carries an
// implied leading decimal point, so "13975-3" is 0.13975e-3.
func DecodeExponent(raw string, assumeDecimal bool) (float64, error) {
	if len(raw) < 3 {
		return 0, errExponentForm
	}
	mantissa := raw[:len(raw)-2]
	exp := []byte(raw[len(raw)-2:])
	if exp[0] == ' ' {
		exp[0] = '+'
	}

	sign := ""
	switch mantissa[0] {
	case '+', '-':
		sign = mantissa[:1]
		mantissa = mantissa[1:]
	case ' ':
		mantissa = mantissa[1:]
	}
	mantissa = strings.TrimSpace(mantissa)
	if mantissa == "" || strings.ContainsAny(mantissa, ".eE+-") {
		return 0, errExponentForm
	}

	var b strings.Builder
	b.WriteString(sign)
	if assumeDecimal {
		b.WriteByte('.')
	}
	b.WriteString(mantissa)
	b.WriteByte('e')
	b.Write(exp)

	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// DecodeEccentricity reads the seven-digit eccentricity column, which has an
// assumed leading "0.".
func DecodeEccentricity(raw string) (float64, error) {
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("unexpected character %q", raw[i])
		}
	}
	if raw == "" {
		return 0, errors.New("empty eccentricity")
	}
	return strconv.ParseFloat("0."+raw, 64)
}

// IntlDesignator assembles the international designator, e.g. 1998-067A,
// from the two-digit launch year, the launch number and the piece letters.
func IntlDesignator(yy, launch int, piece string) string {
	return fmt.Sprintf("%d-%03d%s", ExpandYear(yy), launch, strings.TrimSpace(piece))
}
