package main

import (
	"context"
	"fmt"
	"os"

	"fixview/internal/cli"
	"fixview/internal/cli/commands"
	"fixview/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "fixview",
		Short: "Consensus test fixture indexer and browser",
		Long: `Download consensus-spec test fixture releases, index them into per-version manifests,
decode binary fixtures into readable companions, and browse the result by preset, fork and runner.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
