package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	amdago "github.com/amdalab/amdago"
	"github.com/amdalab/amdago/obstree"
)

// TreeCmd represents the tree command
type TreeCmd struct {
	Input      string `arg:"" optional:"" help:"Local observatory XML file (fetched from AMDA when omitted)" type:"path"`
	Mission    string `help:"Show only this mission" short:"m"`
	Instrument string `help:"Show only this instrument" short:"i"`
	Datasets   bool   `help:"List datasets under each instrument" short:"d"`
}

// Run executes the tree command
func (cmd *TreeCmd) Run(ctx *Context) error {
	config, err := amdago.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var tree *obstree.Tree
	if cmd.Input != "" {
		tree, err = obstree.Load(cmd.Input)
	} else {
		client := newServiceClient(config)
		if ctx.Verbose {
			color.Blue("Fetching observatory tree from %s", config.Service.EntryPoint)
		}
		tree, err = client.GetObsDataTree(context.Background())
	}
	if err != nil {
		return fmt.Errorf("failed to load observatory tree: %w", err)
	}

	shown := 0
	for _, mission := range tree.Missions {
		if cmd.Mission != "" && mission.Name != cmd.Mission {
			continue
		}

		color.Cyan("%s (%s)", mission.Name, mission.Target)
		for _, instrument := range mission.Instruments {
			if cmd.Instrument != "" && instrument.Name != cmd.Instrument {
				continue
			}

			fmt.Printf("  %s\n", instrument.Name)
			if !cmd.Datasets {
				continue
			}
			for _, ds := range instrument.Datasets {
				start, stop := ds.Timespan()
				span := "mission dependent"
				if !start.IsZero() {
					span = fmt.Sprintf("%s .. %s",
						start.Format("2006-01-02"), stop.Format("2006-01-02"))
				}
				fmt.Printf("    %s [%s] %s\n", ds.ID, span, parameterNames(ds))
			}
		}
		shown++
	}

	if !ctx.Quiet {
		color.Green("%d missions, %d datasets", shown, tree.DatasetCount())
	}

	return nil
}

func parameterNames(ds obstree.Dataset) string {
	names := make([]string, 0, len(ds.Parameters))
	for i := range ds.Parameters {
		names = append(names, ds.Parameters[i].Name)
	}
	return strings.Join(names, ", ")
}
