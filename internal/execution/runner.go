package execution

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"fixview/internal/config"
)

// SkipExitCode is the decoder's exit status for fixtures it intentionally does not decode
const SkipExitCode = 2

// Runner invokes the external decoder for a single fixture
type Runner struct {
	program string
	args    []string
	dir     string
	timeout time.Duration
}

// NewRunner creates a new Runner from the configured decoder command
func NewRunner(cfg *config.Config) *Runner {
	program, args := cfg.GetDecoderCommand()
	return &Runner{
		program: program,
		args:    args,
		dir:     cfg.ProjectPath,
		timeout: cfg.DecodeTimeout,
	}
}

// Decode runs `<decoder> <input> <output>` and classifies its exit status.
// Exit 0 is success, exit 2 is an intentional skip, anything else or a timeout is a failure.
func (r *Runner) Decode(ctx context.Context, input, output string) Outcome {
	if r.program == "" {
		return Outcome{Status: StatusFailed, Reason: "no decoder configured"}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// The decoder runs in the project directory
	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	if abs, err := filepath.Abs(output); err == nil {
		output = abs
	}

	args := append(append([]string{}, r.args...), input, output)
	cmd := exec.CommandContext(ctx, r.program, args...)
	cmd.Dir = r.dir
	// Children that inherit the output pipe must not hold Wait past the deadline
	cmd.WaitDelay = time.Second

	out, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(out))

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Outcome{Status: StatusFailed, Reason: fmt.Sprintf("timed out after %s", r.timeout), Output: text}
	}
	if err == nil {
		return Outcome{Status: StatusSucceeded, Output: text}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == SkipExitCode {
		return Outcome{Status: StatusSkipped, Output: text}
	}
	return Outcome{Status: StatusFailed, Reason: err.Error(), Output: text}
}
