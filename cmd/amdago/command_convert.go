package main

import (
	"fmt"

	"github.com/fatih/color"

	amdago "github.com/amdalab/amdago"
	"github.com/amdalab/amdago/netcdfout"
	"github.com/amdalab/amdago/pds"
)

// ConvertCmd represents the convert command
type ConvertCmd struct {
	Input     string `arg:"" optional:"" help:"Dataset path (base name, .LBL or .TAB file)"`
	Label     string `help:"Explicit label file path" type:"path"`
	Table     string `help:"Explicit table file path" type:"path"`
	Separator string `help:"Table field separator" short:"s"`
	NameMap   string `help:"Variable mapping hint, e.g. Time:Epoch;B:Bx,By,Bz"`
	Prefix    string `help:"Output file name prefix" short:"p"`
	Output    string `help:"Explicit output file path" short:"o" type:"path"`
}

// Run executes the convert command
func (cmd *ConvertCmd) Run(ctx *Context) error {
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

	ds, err := pds.OpenDataset(labelPath, tablePath, sep, pds.DefaultSchema())
	if err != nil {
		return err
	}

	opts := netcdfout.Options{
		Output: cmd.Output,
		Prefix: cmd.Prefix,
		Dir:    config.Export.Dir,
	}
	if opts.Prefix == "" {
		opts.Prefix = config.Export.Prefix
	}
	if !ctx.Quiet {
		opts.Warn = func(format string, args ...any) {
			color.Yellow(format, args...)
		}
	}

	if cmd.NameMap != "" {
		nameMap, err := netcdfout.ParseNameMapHint(cmd.NameMap)
		if err != nil {
			return err
		}
		opts.NameMap = nameMap
	} else {
		nameMap := netcdfout.DefaultNameMap(ds)
		timeColumn, _ := ds.TimeColumnName()
		for _, col := range ds.Columns() {
			if col.Name == timeColumn {
				continue
			}
			if _, ok := nameMap[col.Name]; !ok {
				nameMap[col.Name] = []string{col.Name}
			}
		}
		opts.NameMap = nameMap
	}

	if ctx.Verbose {
		color.Blue("Converting %s + %s", labelPath, tablePath)
	}

	path, err := netcdfout.Export(ds, opts)
	if err != nil {
		return fmt.Errorf("failed to convert dataset: %w", err)
	}

	if !ctx.Quiet {
		color.Green("Wrote %s", path)
	}

	return nil
}
