package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fixview/internal/prepare"
	"fixview/internal/ui"
)

// PrepareCommand handles the prepare command
type PrepareCommand struct {
	app *App
}

// Execute runs the command
func (pc *PrepareCommand) Execute(cmd *cobra.Command, args []string) error {
	v := args[0]
	cfg := pc.app.Config

	preparer := prepare.NewPreparer(cfg, pc.app.Storage, nil, pc.app.Logger)
	bar := ui.NewDownloadBar(-1, fmt.Sprintf("Downloading %s: ", v))
	preparer.SetMeter(bar)

	res, err := preparer.Prepare(cmd.Context(), v)
	bar.Finish()
	if err != nil {
		return err
	}

	pc.app.Formatter.PrintManifestStats(res.Index.Manifest, res.Index.Skipped)
	color.Green("✓ Registered %s (%d version(s) available)", v, len(res.Versions.Versions))
	return nil
}

// IndexCommand handles the index command
type IndexCommand struct {
	app *App
}

// Execute runs the command
func (ic *IndexCommand) Execute(cmd *cobra.Command, args []string) error {
	indexer := prepare.NewIndexer(ic.app.Config, ic.app.Storage, ic.app.Logger)
	res, err := indexer.Index(args[0])
	if err != nil {
		return err
	}
	ic.app.Formatter.PrintManifestStats(res.Manifest, res.Skipped)
	return nil
}
