package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"fixview/internal/loader"
	"fixview/internal/ui"
)

// BrowseCommand handles the browse command
type BrowseCommand struct {
	app *App
}

// Execute runs the interactive viewer
func (bc *BrowseCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := bc.app.Config

	var src loader.Source
	switch source := cfg.Flags.Source; {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		src = loader.NewHTTPSource(source, nil)
	case source != "":
		src = loader.NewDirSource(source)
	default:
		src = loader.NewDirSource(cfg.GetDataDir())
	}

	ld, err := loader.New(src, cfg.CacheSize, bc.app.Logger)
	if err != nil {
		return err
	}

	v := ""
	if len(args) > 0 {
		v = args[0]
	}
	var viewer ui.Viewer = ui.NewBrowser(cfg, ld, bc.app.Logger)
	return viewer.Browse(cmd.Context(), v)
}
