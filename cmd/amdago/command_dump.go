package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	amdago "github.com/amdalab/amdago"
	"github.com/amdalab/amdago/pds"
)

// DumpCmd represents the dump command
type DumpCmd struct {
	Input     string `arg:"" optional:"" help:"Dataset path (base name, .LBL or .TAB file)"`
	Label     string `help:"Explicit label file path" type:"path"`
	Table     string `help:"Explicit table file path" type:"path"`
	Separator string `help:"Table field separator" short:"s"`
	LabelOnly bool   `help:"Print only the label structure, skip the table"`
}

// Run executes the dump command
func (cmd *DumpCmd) Run(ctx *Context) error {
	config, err := amdago.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sep := cmd.Separator
	if sep == "" {
		sep = config.Table.Separator
	}

	labelPath, tablePath, err := resolveDatasetPaths(cmd.Input, cmd.Label, cmd.Table)
	if err != nil {
		return err
	}

	if cmd.LabelOnly {
		label, err := pds.LoadLabel(labelPath, pds.DefaultSchema())
		if err != nil {
			return err
		}
		label.Summary(os.Stdout)
		if !ctx.Quiet && label.Skipped() > 0 {
			color.Yellow("%d label spans could not be parsed and were skipped", label.Skipped())
		}
		return nil
	}

	ds, err := pds.OpenDataset(labelPath, tablePath, sep, pds.DefaultSchema())
	if err != nil {
		return err
	}

	ds.Summary(os.Stdout)

	if !ctx.Quiet && ds.Label().Skipped() > 0 {
		color.Yellow("%d label spans could not be parsed and were skipped", ds.Label().Skipped())
	}

	return nil
}
