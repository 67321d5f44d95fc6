package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fixview/internal/domain"
	"fixview/internal/server"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	app *App
}

// Execute serves until interrupted
func (sc *ServeCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := sc.app.Config
	dataDir := cfg.GetDataDir()
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		return domain.Setupf(err, "data directory %s does not exist", dataDir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Addr, dataDir, sc.app.Logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	color.Cyan("Serving %s on http://localhost%s/data/", dataDir, cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
