package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fixview/internal/cli"
	"fixview/internal/config"
	"fixview/internal/storage"
	"fixview/internal/ui"
)

// App is shared by every command. Config and Logger are filled in once flags are parsed.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Storage   storage.Storage
	Formatter *ui.Formatter
}

// Commands holds all CLI commands
type Commands struct {
	app      *App
	Prepare  *PrepareCommand
	Index    *IndexCommand
	Decode   *DecodeCommand
	Versions *VersionsCommand
	List     *ListCommand
	Serve    *ServeCommand
	Browse   *BrowseCommand
	ExportDB *ExportDBCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	app := &App{
		Config:    cfg,
		Logger:    zap.NewNop(),
		Storage:   storage.NewJSONStorage(cfg),
		Formatter: ui.NewFormatter(cfg),
	}

	return &Commands{
		app:      app,
		Prepare:  &PrepareCommand{app: app},
		Index:    &IndexCommand{app: app},
		Decode:   &DecodeCommand{app: app},
		Versions: &VersionsCommand{app: app},
		List:     &ListCommand{app: app},
		Serve:    &ServeCommand{app: app},
		Browse:   &BrowseCommand{app: app},
		ExportDB: &ExportDBCommand{app: app},
	}
}

// newLogger builds the production logger; verbose lowers the level to debug.
// A non-empty path sends output to that file instead of stderr.
func newLogger(verbose bool, path string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if path != "" {
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVar(&flags.ProjectPath, "project", config.DefaultProjectPath, "Project directory holding fixview.yaml and .env")
	rootCmd.PersistentFlags().StringVarP(&flags.DataDir, "data-dir", "d", "", "Data directory (default \"data\")")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ProjectPath)
		if err != nil {
			return err
		}
		*cfg = *loaded

		logPath := ""
		if cmd.Name() == "browse" {
			// the terminal belongs to the browser
			logPath = filepath.Join(cfg.ProjectPath, "fixview-browse.log")
		}
		logger, err := newLogger(flags.Verbose, logPath)
		if err != nil {
			return err
		}
		c.app.Logger = logger
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = c.app.Logger.Sync()
	}

	applyFlags := func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		cfg.ApplyFlags(flags.ToConfigFlags())
		return nil
	}

	// Prepare command
	prepareCmd := &cobra.Command{
		Use:     "prepare <version>",
		Short:   "Download, extract and index a fixture release",
		Long:    "Download every configured preset archive of a release, extract it under data/<version>/tests, write manifest.json and register the version",
		Args:    cobra.ExactArgs(1),
		PreRunE: applyFlags,
		RunE:    c.Prepare.Execute,
	}
	rootCmd.AddCommand(prepareCmd)

	// Index command
	indexCmd := &cobra.Command{
		Use:     "index <version>",
		Short:   "Rebuild manifest.json from an extracted release",
		Args:    cobra.ExactArgs(1),
		PreRunE: applyFlags,
		RunE:    c.Index.Execute,
	}
	rootCmd.AddCommand(indexCmd)

	// Decode command
	decodeCmd := &cobra.Command{
		Use:     "decode <version>",
		Short:   "Generate decoded companions for binary fixtures",
		Long:    "Run the external decoder on every fixture that has no companion yet, in parallel",
		Args:    cobra.ExactArgs(1),
		PreRunE: applyFlags,
		RunE:    c.Decode.Execute,
	}
	decodeCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of parallel decoders (default: number of CPUs)")
	decodeCmd.Flags().StringVar(&flags.Decoder, "decoder", "", "Decoder command, invoked as <decoder> <input> <output>")
	decodeCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Timeout for a single decode (default 60s)")
	decodeCmd.Flags().StringVarP(&flags.Pattern, "filter", "f", "", "Only decode fixtures matching a path pattern (supports wildcards, e.g., '*ssz_static*')")
	rootCmd.AddCommand(decodeCmd)

	// Versions command
	versionsCmd := &cobra.Command{
		Use:     "versions",
		Short:   "List prepared versions",
		Args:    cobra.NoArgs,
		PreRunE: applyFlags,
		RunE:    c.Versions.Execute,
	}
	versionsAddCmd := &cobra.Command{
		Use:     "add <version>",
		Short:   "Register a version without downloading it",
		Args:    cobra.ExactArgs(1),
		PreRunE: applyFlags,
		RunE:    c.Versions.Add,
	}
	versionsCmd.AddCommand(versionsAddCmd)
	rootCmd.AddCommand(versionsCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list [version]",
		Short:   "Print the test case hierarchy of a version",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: applyFlags,
		RunE:    c.List.Execute,
	}
	listCmd.Flags().StringVar(&flags.Preset, "preset", "", "Only show one preset")
	listCmd.Flags().StringVar(&flags.Fork, "fork", "", "Only show one fork")
	listCmd.Flags().StringVar(&flags.Runner, "runner", "", "Only show one runner (test type)")
	listCmd.Flags().StringVarP(&flags.Search, "search", "s", "", "Only show test cases whose name contains this text")
	listCmd.Flags().BoolVarP(&flags.Cases, "test-cases", "c", false, "List test cases, not just suites and configs")
	rootCmd.AddCommand(listCmd)

	// Serve command
	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the data directory over HTTP",
		Args:    cobra.NoArgs,
		PreRunE: applyFlags,
		RunE:    c.Serve.Execute,
	}
	serveCmd.Flags().StringVarP(&flags.Addr, "addr", "a", "", "Listen address (default \":8080\")")
	rootCmd.AddCommand(serveCmd)

	// Browse command
	browseCmd := &cobra.Command{
		Use:     "browse [version]",
		Short:   "Browse fixtures interactively",
		Long:    "Open an interactive viewer over a local data directory or a served one (--source http://host:8080/data)",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: applyFlags,
		RunE:    c.Browse.Execute,
	}
	browseCmd.Flags().StringVar(&flags.Source, "source", "", "Data directory or base URL to read from (default: the data directory)")
	rootCmd.AddCommand(browseCmd)

	// Export command
	exportCmd := &cobra.Command{
		Use:     "export-db <version>",
		Short:   "Export a manifest into the test_cases table",
		Args:    cobra.ExactArgs(1),
		PreRunE: applyFlags,
		RunE:    c.ExportDB.Execute,
	}
	exportCmd.Flags().StringVar(&flags.DBDriver, "db-driver", "", "Database driver: sqlite or mysql (default sqlite)")
	exportCmd.Flags().StringVar(&flags.DBDSN, "db-dsn", "", "Data source name (default: data/catalog.db for sqlite, DB_* variables for mysql)")
	rootCmd.AddCommand(exportCmd)
}
