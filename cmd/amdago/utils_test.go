package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func writeFixturePair(t *testing.T, dir string) string {
	t.Helper()

	base := filepath.Join(dir, "swe")
	label := "OBJECT = TABLE\n" +
		"  OBJECT = COLUMN\n    NAME = Time\n    DATA_TYPE = TIME\n  END_OBJECT = COLUMN\n" +
		"  OBJECT = COLUMN\n    NAME = Density\n    DATA_TYPE = ASCII_REAL\n  END_OBJECT = COLUMN\n" +
		"END_OBJECT = TABLE\nEND\n"
	table := "2020-01-01T00:00:00.000Z 4.5\n2020-01-01T00:01:00.000Z 5.0\n"

	assert.NoError(t, os.WriteFile(base+".LBL", []byte(label), 0o644))
	assert.NoError(t, os.WriteFile(base+".TAB", []byte(table), 0o644))

	return base
}

func TestResolveDatasetPaths(t *testing.T) {
	base := writeFixturePair(t, t.TempDir())

	tests := []struct {
		name  string
		input string
		label string
		table string
		bad   error
	}{
		{name: "base name", input: base},
		{name: "label path", input: base + ".LBL"},
		{name: "table path", input: base + ".TAB"},
		{name: "explicit flags", label: base + ".LBL", table: base + ".TAB"},
		{name: "no input", bad: ErrNoInput},
		{name: "missing file", input: filepath.Join(t.TempDir(), "nope"), bad: ErrInputNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labelPath, tablePath, err := resolveDatasetPaths(tt.input, tt.label, tt.table)
			if tt.bad != nil {
				assert.IsError(t, err, tt.bad)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, base+".LBL", labelPath)
			assert.Equal(t, base+".TAB", tablePath)
		})
	}
}

func TestParseUserTime(t *testing.T) {
	got, err := parseUserTime("2020-01-01T06:30:00")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 6, 30, 0, 0, time.UTC), got)

	got, err = parseUserTime("2020-01-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseUserTime("01/02/2020")
	assert.IsError(t, err, ErrBadTimeFormat)
}

func TestFormatEpoch(t *testing.T) {
	assert.Equal(t, "2020-01-01T00:00:00Z", formatEpoch(1577836800.0))
}
