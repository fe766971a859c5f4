// Package ddtime converts between time.Time and AMDA's DDTime string
// representation: a fixed-width, NUL-terminated "YYYYDDDHHMMSSmmm" field
// where DDD is the zero-based day of year and mmm the milliseconds.
package ddtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	amdago "github.com/amdalab/amdago"
)

// Length is the full width of a DDTime field including the NUL terminator
const Length = 17

// FromTime encodes a time as DDTime. The result is always Length bytes.
func FromTime(t time.Time) string {
	t = t.UTC()
	s := fmt.Sprintf("%04d%03d%02d%02d%02d%03d",
		t.Year(), t.YearDay()-1, t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/int(time.Millisecond))
	return s[:Length-1] + "\x00"
}

// FromUnixSeconds encodes fractional UTC epoch seconds as DDTime
func FromUnixSeconds(sec float64) (string, error) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return "", fmt.Errorf("%w: non-finite epoch seconds", amdago.ErrBadDDTime)
	}
	return FromTime(time.Unix(0, int64(sec*float64(time.Second)))), nil
}

// ToTime decodes a DDTime string, with or without its NUL terminator
func ToTime(dd string) (time.Time, error) {
	dd = strings.TrimRight(dd, "\x00")
	if len(dd) < Length-1 {
		return time.Time{}, fmt.Errorf("%w: %q is too short", amdago.ErrBadDDTime, dd)
	}

	fields := []struct {
		name string
		span string
	}{
		{"year", dd[0:4]},
		{"day", dd[4:7]},
		{"hour", dd[7:9]},
		{"minute", dd[9:11]},
		{"second", dd[11:13]},
		{"millisecond", dd[13:16]},
	}

	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f.span)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: bad %s field %q", amdago.ErrBadDDTime, f.name, f.span)
		}
		values[i] = v
	}

	year, doy, hour, minute, second, milli := values[0], values[1], values[2], values[3], values[4], values[5]

	t := time.Date(year, time.January, 1, hour, minute, second, milli*int(time.Millisecond), time.UTC)
	return t.AddDate(0, 0, doy), nil
}
