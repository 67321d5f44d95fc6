package ui

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/fatih/color"

	"fixview/internal/companion"
	"fixview/internal/config"
	"fixview/internal/domain"
	"fixview/internal/manifest"
	"fixview/internal/tree"
	"fixview/internal/version"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to color.Output
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{config: cfg, out: color.Output}
}

const (
	tableTop    = "┌─────────────────────────────────┬─────────────────────────────┐"
	tableMiddle = "├─────────────────────────────────┼─────────────────────────────┤"
	tableBottom = "└─────────────────────────────────┴─────────────────────────────┘"
)

type row struct {
	label string
	value string
	paint func(format string, a ...interface{}) string
}

func (f *Formatter) header(title string) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.CyanString("╔═══════════════════════════════════════════════════════════════╗"))
	fmt.Fprintln(f.out, color.CyanString("║ %-61s ║", centered(title, 61)))
	fmt.Fprintln(f.out, color.CyanString("╚═══════════════════════════════════════════════════════════════╝"))
	fmt.Fprintln(f.out)
}

func centered(s string, width int) string {
	pad := (width - len([]rune(s))) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func (f *Formatter) table(rows []row) {
	fmt.Fprintln(f.out, tableTop)
	for i, r := range rows {
		paint := r.paint
		if paint == nil {
			paint = color.WhiteString
		}
		fmt.Fprintf(f.out, "│ %-31s │ %s │\n", r.label, paint("%-27s", r.value))
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, tableMiddle)
		}
	}
	fmt.Fprintln(f.out, tableBottom)
}

// PrintManifestStats prints what an index run produced
func (f *Formatter) PrintManifestStats(m *manifest.Manifest, skipped int) {
	f.header("Manifest " + m.Version)

	rows := []row{
		{label: "Presets", value: fmt.Sprint(m.Presets.Len())},
		{label: "Test cases", value: fmt.Sprint(m.Stats.TotalTests), paint: color.GreenString},
		{label: "Skipped directories", value: fmt.Sprint(skipped), paint: color.YellowString},
		{label: "Generated at", value: m.Stats.GeneratedAt},
	}
	f.table(rows)

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.GreenString("✓ Manifest written to %s", f.config.GetManifestPath(m.Version)))
}

// PrintDecodeSummary prints the totals of a backfill run and lists every error with its diagnostic output
func (f *Formatter) PrintDecodeSummary(report *companion.Report, workers int) {
	f.header("Companion Decoding")

	s := report.Stats
	f.table([]row{
		{label: "Fixtures discovered", value: fmt.Sprint(s.Discovered)},
		{label: "Excluded (" + f.config.GeneralCategory + ")", value: fmt.Sprint(s.ExcludedCategory), paint: color.HiBlackString},
		{label: "Already decoded", value: fmt.Sprint(s.AlreadySatisfied)},
		{label: "Succeeded", value: fmt.Sprint(s.Succeeded), paint: color.GreenString},
		{label: "Skipped by decoder", value: fmt.Sprint(s.Skipped), paint: color.YellowString},
		{label: "Errors", value: fmt.Sprint(s.ErrorCount), paint: color.RedString},
		{label: "Duration", value: fmt.Sprintf("%.2fs", report.Duration.Seconds())},
		{label: "Workers", value: fmt.Sprint(workers)},
	})

	fmt.Fprintln(f.out)
	if s.ErrorCount == 0 {
		fmt.Fprintln(f.out, color.GreenString("✓ No decode errors"))
		return
	}
	fmt.Fprintln(f.out, color.RedString("✗ %d fixture(s) could not be decoded", s.ErrorCount))
	fmt.Fprintln(f.out)
	f.printFailures(report.Failures)
}

// printFailures groups failures by directory
func (f *Formatter) printFailures(failures []domain.DecodeFailure) {
	byDir := make(map[string][]domain.DecodeFailure)
	for _, failure := range failures {
		dir := path.Dir(failure.Path)
		byDir[dir] = append(byDir[dir], failure)
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		fmt.Fprintln(f.out, color.CyanString(dir))
		list := byDir[dir]
		for i, failure := range list {
			connector, indent := "├── ", "│   "
			if i == len(list)-1 {
				connector, indent = "└── ", "    "
			}
			fmt.Fprintf(f.out, "%s%s %s\n", connector, color.YellowString(path.Base(failure.Path)), color.RedString("(%s)", failure.Reason))
			for _, line := range strings.Split(strings.TrimSpace(failure.Output), "\n") {
				if line != "" {
					fmt.Fprintf(f.out, "%s  %s\n", indent, color.HiBlackString(line))
				}
			}
		}
	}
}

// PrintVersions prints the registry, newest first
func (f *Formatter) PrintVersions(reg *version.Registry) {
	if len(reg.Versions) == 0 {
		fmt.Fprintln(f.out, color.YellowString("No versions prepared yet"))
		return
	}
	color.New(color.FgGreen).Fprintf(f.out, "Found %d version(s):\n\n", len(reg.Versions))
	for i, v := range reg.Versions {
		connector := "├── "
		if i == len(reg.Versions)-1 {
			connector = "└── "
		}
		marker := ""
		if i == 0 {
			marker = " " + color.GreenString("(latest)")
		}
		fmt.Fprintf(f.out, "%s%s%s\n", connector, color.CyanString(v), marker)
	}
}

// PrintTree prints the visible part of a tree; test cases are printed only when showCases is set
func (f *Formatter) PrintTree(ix *tree.Index, showCases bool) {
	var visible []*tree.Node
	for _, n := range ix.Roots {
		if n.Visible {
			visible = append(visible, n)
		}
	}
	if len(visible) == 0 {
		fmt.Fprintln(f.out, color.YellowString("No test cases match"))
		return
	}
	f.printNodes(visible, "", showCases)
}

func (f *Formatter) printNodes(nodes []*tree.Node, prefix string, showCases bool) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}

		switch n.Level {
		case tree.LevelTestCase:
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, color.YellowString(n.Label))
			continue
		case tree.LevelTestSuite:
			fmt.Fprintf(f.out, "%s%s%s %s\n", prefix, connector, color.CyanString(n.Label), color.HiBlackString("(%d)", visibleLeaves(n)))
		default:
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, color.CyanString(n.Label))
		}

		if n.Level == tree.LevelConfig && !showCases {
			continue
		}
		var children []*tree.Node
		for _, c := range n.Children {
			if c.Visible {
				children = append(children, c)
			}
		}
		f.printNodes(children, prefix+next, showCases)
	}
}

func visibleLeaves(n *tree.Node) int {
	if n.IsLeaf() {
		if n.Visible {
			return 1
		}
		return 0
	}
	total := 0
	for _, c := range n.Children {
		total += visibleLeaves(c)
	}
	return total
}

// Errorf prints an error line to stderr
func Errorf(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString("Error: "+format, a...))
}
