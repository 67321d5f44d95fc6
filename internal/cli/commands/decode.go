package commands

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fixview/internal/companion"
	"fixview/internal/discovery"
	"fixview/internal/domain"
	"fixview/internal/execution"
	"fixview/internal/storage"
	"fixview/internal/ui"
	"fixview/internal/version"
)

// DecodeCommand handles the decode command
type DecodeCommand struct {
	app *App
}

// Execute runs the command
func (dc *DecodeCommand) Execute(cmd *cobra.Command, args []string) error {
	v := args[0]
	cfg := dc.app.Config
	if err := version.Validate(v); err != nil {
		return domain.Setupf(err, "cannot decode %s", v)
	}
	if program, _ := cfg.GetDecoderCommand(); program == "" {
		return domain.Setupf(nil, "no decoder configured")
	}

	pool := execution.NewWorkerPool(cfg.Processors)
	resolver := companion.NewResolver(
		discovery.NewScanner(nil),
		execution.NewRunner(cfg),
		pool,
		cfg.GeneralCategory,
		cfg.TestsMarker,
		dc.app.Logger,
	)

	plan, err := resolver.Plan(cfg.GetTestsDir(v), cfg.Flags.Pattern)
	if err != nil {
		return err
	}
	dc.app.Logger.Info("decode plan",
		zap.String("version", v),
		zap.Int("discovered", len(plan.Discovered)),
		zap.Int("excluded", len(plan.Excluded)),
		zap.Int("satisfied", len(plan.Satisfied)),
		zap.Int("work", len(plan.Work)))

	if len(plan.Work) == 0 {
		color.Yellow("Nothing to decode")
	} else {
		pool.SetProgress(ui.NewProgressBar(len(plan.Work)))
	}

	report := resolver.Resolve(cmd.Context(), plan)
	if err := dc.app.Storage.SaveDecodeReport(v, &storage.DecodeReport{
		Meta: storage.DecodeMeta{
			DecodeStats:     report.Stats,
			Duration:        report.Duration.String(),
			DurationSeconds: report.Duration.Seconds(),
			Workers:         pool.Workers(),
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
		},
		Failures: report.Failures,
	}); err != nil {
		dc.app.Logger.Warn("failed to save decode report", zap.Error(err))
	}

	dc.app.Formatter.PrintDecodeSummary(report, pool.Workers())
	return nil
}
