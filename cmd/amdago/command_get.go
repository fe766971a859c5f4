package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/fatih/color"

	amdago "github.com/amdalab/amdago"
	"github.com/amdalab/amdago/ws"
)

// GetCmd represents the get command
type GetCmd struct {
	ID       string `arg:"" help:"Dataset id, e.g. tao-ura-sw"`
	Start    string `help:"Slice start time" required:""`
	Stop     string `help:"Slice stop time" required:""`
	Sampling string `help:"Resampling interval in seconds"`
	Format   string `help:"Output format (ASCII, VOTable, CDF)" default:"ASCII"`
	Dir      string `help:"Directory for downloaded files" default:"." type:"path"`
}

// Run executes the get command
func (cmd *GetCmd) Run(ctx *Context) error {
	config, err := amdago.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	start, err := parseUserTime(cmd.Start)
	if err != nil {
		return err
	}
	stop, err := parseUserTime(cmd.Stop)
	if err != nil {
		return err
	}

	client := newServiceClient(config)
	reqCtx := context.Background()

	token, err := client.Auth(reqCtx)
	if err != nil {
		return fmt.Errorf("failed to obtain service token: %w", err)
	}

	if ctx.Verbose {
		color.Blue("Requesting %s from %s to %s", cmd.ID, cmd.Start, cmd.Stop)
	}

	fileURL, err := client.GetDataset(reqCtx, ws.DatasetRequest{
		Token:     token,
		DatasetID: cmd.ID,
		Start:     start,
		Stop:      stop,
		Sampling:  cmd.Sampling,
		Format:    ws.OutputFormat(cmd.Format),
	})
	if err != nil {
		return err
	}

	text, err := client.FetchText(reqCtx, fileURL)
	if err != nil {
		return err
	}

	outPath, err := downloadPath(cmd.Dir, cmd.ID, fileURL)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write downloaded file: %w", err)
	}

	if !ctx.Quiet {
		color.Green("Wrote %s", outPath)
	}

	return nil
}

// downloadPath names the local file after the remote one, falling back to
// the dataset id when the URL carries no usable base name
func downloadPath(dir, datasetID, fileURL string) (string, error) {
	name := datasetID + ".txt"
	if u, err := url.Parse(fileURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "." && base != "/" {
			name = base
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	return filepath.Join(dir, name), nil
}
