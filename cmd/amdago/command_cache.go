package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	amdago "github.com/amdalab/amdago"
	"github.com/amdalab/amdago/pds"
	"github.com/amdalab/amdago/session"
)

// CacheCmd groups the session cache subcommands
type CacheCmd struct {
	Add  CacheAddCmd  `cmd:"" help:"Cache a local PDS dataset in the session database"`
	List CacheListCmd `cmd:"" help:"List cached datasets and their timespans"`
}

// CacheAddCmd represents the cache add command
type CacheAddCmd struct {
	Input     string `arg:"" help:"Dataset path (base name, .LBL or .TAB file)"`
	ID        string `help:"Dataset id to cache under (defaults to the input base name)"`
	Separator string `help:"Table field separator" short:"s"`
}

// Run executes the cache add command
func (cmd *CacheAddCmd) Run(ctx *Context) error {
	config, err := amdago.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sep := cmd.Separator
	if sep == "" {
		sep = config.Table.Separator
	}

	labelPath, tablePath, err := resolveDatasetPaths(cmd.Input, "", "")
	if err != nil {
		return err
	}

	ds, err := pds.OpenDataset(labelPath, tablePath, sep, pds.DefaultSchema())
	if err != nil {
		return err
	}

	id := cmd.ID
	if id == "" {
		base := filepath.Base(labelPath)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}

	times, values, err := cacheRows(ds)
	if err != nil {
		return err
	}

	sess, err := session.Open(config.Session.Path)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Add(id, times, values); err != nil {
		return err
	}

	if !ctx.Quiet {
		color.Green("Cached %s (%d rows) in %s", id, len(times), sess.Path())
	}

	return nil
}

// cacheRows flattens the dataset's numeric columns into one value row per
// time sample. Unknown-datatype columns are left out.
func cacheRows(ds *pds.Dataset) ([]float64, [][]float64, error) {
	timeData, err := ds.TimeData()
	if err != nil {
		return nil, nil, err
	}
	if len(timeData.Floats) == 0 {
		return nil, nil, amdago.ErrNoTimeColumn
	}

	timeColumn, _ := ds.TimeColumnName()

	var columns []*pds.ColumnArray
	for _, col := range ds.Columns() {
		if col.Name == timeColumn {
			continue
		}
		data, err := ds.ColumnData(col.Name)
		if err != nil {
			return nil, nil, err
		}
		if data.Datatype != pds.DatatypeFloat64 {
			continue
		}
		columns = append(columns, data)
	}

	rows := timeData.Rows()
	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		var row []float64
		for _, col := range columns {
			row = append(row, col.FloatRow(i)...)
		}
		values[i] = row
	}

	return timeData.Floats, values, nil
}

// CacheListCmd represents the cache list command
type CacheListCmd struct{}

// Run executes the cache list command
func (cmd *CacheListCmd) Run(ctx *Context) error {
	config, err := amdago.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sess, err := session.Open(config.Session.Path)
	if err != nil {
		return err
	}
	defer sess.Close()

	ids, err := sess.Datasets()
	if err != nil {
		return err
	}

	for _, id := range ids {
		start, stop, err := sess.Timespan(id)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s .. %s\n", id, formatEpoch(start), formatEpoch(stop))
	}

	if !ctx.Quiet {
		color.Green("%d cached datasets in %s", len(ids), sess.Path())
	}

	return nil
}
