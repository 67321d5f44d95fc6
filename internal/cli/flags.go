package cli

import (
	"time"

	"fixview/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	Processors  int
	DataDir     string
	Decoder     string
	Timeout     time.Duration
	Pattern     string
	Addr        string
	Source      string
	Preset      string
	Fork        string
	Runner      string
	Search      string
	Cases       bool
	DBDriver    string
	DBDSN       string
	Verbose     bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath: f.ProjectPath,
		Processors:  f.Processors,
		DataDir:     f.DataDir,
		Decoder:     f.Decoder,
		Timeout:     f.Timeout,
		Pattern:     f.Pattern,
		Addr:        f.Addr,
		Source:      f.Source,
		Preset:      f.Preset,
		Fork:        f.Fork,
		Runner:      f.Runner,
		Search:      f.Search,
		Cases:       f.Cases,
		DBDriver:    f.DBDriver,
		DBDSN:       f.DBDSN,
		Verbose:     f.Verbose,
	}
}
