package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar reports decode progress; it satisfies execution.Progress
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

func describe(succeeded, skipped, failed int) string {
	return color.CyanString("Decoding fixtures: ") +
		color.GreenString("[succeeded: %d", succeeded) +
		" | " +
		color.YellowString("skipped: %d", skipped) +
		" | " +
		color.RedString("errors: %d]", failed)
}

// NewProgressBar creates a new progress bar
func NewProgressBar(count int) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

// Update updates the progress bar with the running totals
func (p *ProgressBar) Update(succeeded, skipped, failed int) {
	p.bar.Set(succeeded + skipped + failed)
	p.bar.Describe(describe(succeeded, skipped, failed))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

// DownloadBar counts bytes written by concurrent archive downloads.
type DownloadBar struct {
	bar *progressbar.ProgressBar
}

// NewDownloadBar creates a byte counter; total may be -1 when sizes are unknown.
func NewDownloadBar(total int64, label string) *DownloadBar {
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(color.CyanString(label)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100 * time.Millisecond),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
	)
	return &DownloadBar{bar: bar}
}

// Wrap returns a reader that advances the bar as r is consumed.
func (d *DownloadBar) Wrap(r io.Reader) io.Reader {
	return io.TeeReader(r, d.bar)
}

// Finish completes the bar
func (d *DownloadBar) Finish() {
	d.bar.Finish()
}
