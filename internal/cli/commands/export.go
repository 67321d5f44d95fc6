package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fixview/internal/catalog"
	"fixview/internal/domain"
)

// ExportDBCommand handles the export-db command
type ExportDBCommand struct {
	app *App
}

// Execute runs the command
func (ec *ExportDBCommand) Execute(cmd *cobra.Command, args []string) error {
	v := args[0]
	m, err := ec.app.Storage.LoadManifest(v)
	if err != nil {
		return domain.Setupf(err, "no manifest for %s, run prepare or index first", v)
	}

	c, err := catalog.Open(cmd.Context(), ec.app.Config, ec.app.Logger)
	if err != nil {
		return err
	}
	defer c.Close()

	rows, err := c.Export(cmd.Context(), m)
	if err != nil {
		return err
	}
	color.Green("✓ Exported %d test case(s) of %s to %s", rows, v, ec.app.Config.DBDriver)
	return nil
}
