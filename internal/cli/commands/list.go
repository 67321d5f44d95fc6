package commands

import (
	"github.com/spf13/cobra"

	"fixview/internal/domain"
	"fixview/internal/filter"
	"fixview/internal/tree"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	v, err := resolveVersion(lc.app, args)
	if err != nil {
		return err
	}
	m, err := lc.app.Storage.LoadManifest(v)
	if err != nil {
		return domain.Setupf(err, "no manifest for %s, run prepare or index first", v)
	}

	flags := lc.app.Config.Flags
	state := filter.State{Search: flags.Search}
	if flags.Preset != "" {
		state.Preset = filter.Some(flags.Preset)
	}
	if flags.Fork != "" {
		state.Fork = filter.Some(flags.Fork)
	}
	if flags.Runner != "" {
		state.Runner = filter.Some(flags.Runner)
	}

	ix := tree.Build(m)
	filter.Apply(ix, state)
	lc.app.Formatter.PrintTree(ix, flags.Cases)
	return nil
}

// resolveVersion returns the version argument, or the newest registered version.
func resolveVersion(app *App, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	reg, err := app.Storage.LoadVersions()
	if err != nil {
		return "", err
	}
	if len(reg.Versions) == 0 {
		return "", domain.Setupf(nil, "no versions prepared yet")
	}
	return reg.Latest(), nil
}
