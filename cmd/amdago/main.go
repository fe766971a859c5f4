package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

// CLI represents the command-line interface
var CLI struct {
	Config  string `help:"Configuration file path" default:"amdago.yaml"`
	Verbose bool   `help:"Enable verbose output" short:"v"`
	Quiet   bool   `help:"Suppress output" short:"q"`

	Dump    DumpCmd    `cmd:"" help:"Print the structure and contents of a PDS dataset"`
	Convert ConvertCmd `cmd:"" help:"Convert a PDS dataset to NetCDF"`
	Tree    TreeCmd    `cmd:"" help:"Show the AMDA observatory tree"`
	Get     GetCmd     `cmd:"" help:"Download a dataset slice from the AMDA web service"`
	Cache   CacheCmd   `cmd:"" help:"Manage the local session cache"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("amdago v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
