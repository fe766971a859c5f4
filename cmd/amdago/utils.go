package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	amdago "github.com/amdalab/amdago"
	"github.com/amdalab/amdago/ws"
)

// Sentinel errors
var (
	ErrNoInput       = errors.New("no input dataset given, pass a path or --label/--table")
	ErrInputNotExist = errors.New("input file does not exist")
	ErrBadTimeFormat = errors.New("time must be YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")
)

// resolveDatasetPaths turns the positional input into a label/table file
// pair. A bare base name gets .LBL/.TAB appended; a label path gets its
// extension swapped for the table. Explicit flags win over both.
func resolveDatasetPaths(input, labelFlag, tableFlag string) (string, string, error) {
	labelPath := labelFlag
	tablePath := tableFlag

	if input != "" {
		base := input
		ext := filepath.Ext(input)
		if strings.EqualFold(ext, ".lbl") || strings.EqualFold(ext, ".tab") {
			base = strings.TrimSuffix(input, ext)
		}
		if labelPath == "" {
			labelPath = base + ".LBL"
		}
		if tablePath == "" {
			tablePath = base + ".TAB"
		}
	}

	if labelPath == "" || tablePath == "" {
		return "", "", ErrNoInput
	}

	if _, err := os.Stat(labelPath); err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInputNotExist, labelPath)
	}

	return labelPath, tablePath, nil
}

// newServiceClient builds an AMDA client from the configuration
func newServiceClient(config *amdago.Config) *ws.Client {
	opts := []ws.Option{
		ws.WithHTTPClient(&http.Client{Timeout: config.HTTPTimeout()}),
	}
	if config.Service.UserID != "" {
		opts = append(opts, ws.WithUserID(config.Service.UserID))
	}
	return ws.NewClient(config.Service.EntryPoint, opts...)
}

// parseUserTime accepts a date or a full date-time
func parseUserTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
}

// formatEpoch renders an epoch-seconds value for CLI output
func formatEpoch(epoch float64) string {
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC().Format("2006-01-02T15:04:05Z")
}
