package ddtime

import (
	"math"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	amdago "github.com/amdalab/amdago"
)

func TestFromTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "new year midnight",
			in:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "2020000000000000\x00",
		},
		{
			name: "with clock and milliseconds",
			in:   time.Date(2020, 2, 1, 13, 5, 59, 250e6, time.UTC),
			want: "2020031130559250\x00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromTime(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Length, len(got))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	in := time.Date(2021, 7, 14, 8, 30, 12, 500e6, time.UTC)

	back, err := ToTime(FromTime(in))
	assert.NoError(t, err)
	assert.True(t, back.Equal(in))
}

func TestFromUnixSeconds(t *testing.T) {
	// 2020-01-01T00:00:00Z
	dd, err := FromUnixSeconds(1577836800.0)
	assert.NoError(t, err)
	assert.Equal(t, "2020000000000000\x00", dd)

	_, err = FromUnixSeconds(math.NaN())
	assert.IsError(t, err, amdago.ErrBadDDTime)
}

func TestToTimeMalformed(t *testing.T) {
	for _, dd := range []string{"", "2020", "yyyy000000000000"} {
		_, err := ToTime(dd)
		assert.IsError(t, err, amdago.ErrBadDDTime)
	}
}
