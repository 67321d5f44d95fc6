package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fixview/internal/domain"
)

// VersionsCommand handles the versions command
type VersionsCommand struct {
	app *App
}

// Execute lists the registry
func (vc *VersionsCommand) Execute(cmd *cobra.Command, args []string) error {
	reg, err := vc.app.Storage.LoadVersions()
	if err != nil {
		return err
	}
	vc.app.Formatter.PrintVersions(reg)
	return nil
}

// Add merges one version into the registry
func (vc *VersionsCommand) Add(cmd *cobra.Command, args []string) error {
	reg, err := vc.app.Storage.RegisterVersion(args[0])
	if err != nil {
		return domain.Setupf(err, "cannot register %s", args[0])
	}
	color.Green("✓ Registered %s", args[0])
	vc.app.Formatter.PrintVersions(reg)
	return nil
}
