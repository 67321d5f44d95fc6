package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	DataDir     string

	// Prepare settings
	ReleaseURL  string
	Presets     []string
	TestsMarker string

	// Decode settings
	Decoder         string
	DecodeTimeout   time.Duration
	Processors      int
	GeneralCategory string

	// Serve and browse settings
	Addr           string
	SearchDebounce time.Duration
	CacheSize      int

	// Catalog settings
	DBDriver string
	DBDSN    string

	// Command flags
	Flags Flags
}

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

// fileConfig is the shape of fixview.yaml
type fileConfig struct {
	DataDir         string   `yaml:"dataDir"`
	ReleaseURL      string   `yaml:"releaseURL"`
	Presets         []string `yaml:"presets"`
	Decoder         string   `yaml:"decoder"`
	DecodeTimeout   string   `yaml:"decodeTimeout"`
	Processors      int      `yaml:"processors"`
	Addr            string   `yaml:"addr"`
	GeneralCategory string   `yaml:"generalCategory"`
	DBDriver        string   `yaml:"dbDriver"`
	DBDSN           string   `yaml:"dbDSN"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:     DefaultProjectPath,
		DataDir:         DefaultDataDir,
		ReleaseURL:      DefaultReleaseURL,
		TestsMarker:     DefaultTestsMarker,
		Decoder:         DefaultDecoder,
		DecodeTimeout:   DefaultDecodeTimeout,
		Processors:      DefaultProcessors,
		GeneralCategory: DefaultGeneralCategory,
		Addr:            DefaultAddr,
		SearchDebounce:  DefaultSearchDebounce,
		CacheSize:       DefaultCacheSize,
		DBDriver:        DefaultDBDriver,
		Flags:           Flags{Processors: DefaultProcessors},
	}
	// Copy default presets
	cfg.Presets = make([]string, len(DefaultPresets))
	copy(cfg.Presets, DefaultPresets)
	return cfg
}

// Load builds a config from defaults, fixview.yaml, .env and the process environment, in that order.
func Load(projectPath string) (*Config, error) {
	cfg := New()
	if projectPath != "" {
		cfg.ProjectPath = projectPath
	}

	if err := cfg.loadFile(filepath.Join(cfg.ProjectPath, DefaultConfigFile)); err != nil {
		return nil, err
	}

	// .env is optional, the process environment still applies without it
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, ".env"))
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.DataDir != "" {
		c.DataDir = fc.DataDir
	}
	if fc.ReleaseURL != "" {
		c.ReleaseURL = fc.ReleaseURL
	}
	if len(fc.Presets) > 0 {
		c.Presets = fc.Presets
	}
	if fc.Decoder != "" {
		c.Decoder = fc.Decoder
	}
	if fc.DecodeTimeout != "" {
		d, err := time.ParseDuration(fc.DecodeTimeout)
		if err != nil {
			return fmt.Errorf("parse decodeTimeout: %w", err)
		}
		c.DecodeTimeout = d
	}
	if fc.Processors > 0 {
		c.Processors = fc.Processors
	}
	if fc.Addr != "" {
		c.Addr = fc.Addr
	}
	if fc.GeneralCategory != "" {
		c.GeneralCategory = fc.GeneralCategory
	}
	if fc.DBDriver != "" {
		c.DBDriver = fc.DBDriver
	}
	if fc.DBDSN != "" {
		c.DBDSN = fc.DBDSN
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FIXVIEW_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FIXVIEW_RELEASE_URL"); v != "" {
		c.ReleaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("FIXVIEW_DECODER"); v != "" {
		c.Decoder = v
	}
	if v := os.Getenv("FIXVIEW_DB_DRIVER"); v != "" {
		c.DBDriver = v
	}
	if v := os.Getenv("FIXVIEW_DB_DSN"); v != "" {
		c.DBDSN = v
	}
}

// ApplyFlags copies non-zero flag values over the loaded configuration
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.DataDir != "" {
		c.DataDir = flags.DataDir
	}
	if flags.Decoder != "" {
		c.Decoder = flags.Decoder
	}
	if flags.Timeout > 0 {
		c.DecodeTimeout = flags.Timeout
	}
	if flags.Addr != "" {
		c.Addr = flags.Addr
	}
	if flags.DBDriver != "" {
		c.DBDriver = flags.DBDriver
	}
	if flags.DBDSN != "" {
		c.DBDSN = flags.DBDSN
	}
}

// GetDataDir returns the data directory, relative to the project path unless absolute
func (c *Config) GetDataDir() string {
	if filepath.IsAbs(c.DataDir) {
		return c.DataDir
	}
	return filepath.Join(c.ProjectPath, c.DataDir)
}

// GetVersionDir returns the directory holding one version's manifest and fixtures
func (c *Config) GetVersionDir(version string) string {
	return filepath.Join(c.GetDataDir(), version)
}

// GetTestsDir returns the extraction target for a version's archives
func (c *Config) GetTestsDir(version string) string {
	return filepath.Join(c.GetVersionDir(version), "tests")
}

// GetManifestPath returns the path of a version's manifest.json
func (c *Config) GetManifestPath(version string) string {
	return filepath.Join(c.GetVersionDir(version), "manifest.json")
}

// GetVersionsPath returns the path of versions.json
func (c *Config) GetVersionsPath() string {
	return filepath.Join(c.GetDataDir(), "versions.json")
}

// GetArchiveURL returns the download location of one preset archive
func (c *Config) GetArchiveURL(version, preset string) string {
	return fmt.Sprintf("%s/%s/%s.tar.gz", strings.TrimRight(c.ReleaseURL, "/"), version, preset)
}

// GetDecoderCommand splits the decoder setting into a program and its leading arguments
func (c *Config) GetDecoderCommand() (string, []string) {
	fields := strings.Fields(c.Decoder)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}
