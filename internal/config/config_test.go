package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_GetDataDir(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				DataDir:     "data",
			},
			expected: "data",
		},
		{
			name: "relative to project",
			config: &Config{
				ProjectPath: "/project",
				DataDir:     "fixtures",
			},
			expected: "/project/fixtures",
		},
		{
			name: "absolute data dir",
			config: &Config{
				ProjectPath: "/project",
				DataDir:     "/absolute/path",
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetDataDir()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"

	if got := cfg.GetManifestPath("v1.5.0"); got != "/project/data/v1.5.0/manifest.json" {
		t.Errorf("unexpected manifest path %s", got)
	}
	if got := cfg.GetTestsDir("v1.5.0"); got != "/project/data/v1.5.0/tests" {
		t.Errorf("unexpected tests dir %s", got)
	}
	if got := cfg.GetVersionsPath(); got != "/project/data/versions.json" {
		t.Errorf("unexpected versions path %s", got)
	}

	cfg.ReleaseURL = "https://example.com/releases/"
	if got := cfg.GetArchiveURL("v1.5.0", "minimal"); got != "https://example.com/releases/v1.5.0/minimal.tar.gz" {
		t.Errorf("unexpected archive url %s", got)
	}
}

func TestConfig_GetDecoderCommand(t *testing.T) {
	cfg := New()
	cfg.Decoder = "python3 scripts/deserialize_ssz.py"

	prog, args := cfg.GetDecoderCommand()
	if prog != "python3" {
		t.Errorf("expected python3, got %s", prog)
	}
	if len(args) != 1 || args[0] != "scripts/deserialize_ssz.py" {
		t.Errorf("unexpected args %v", args)
	}

	cfg.Decoder = "   "
	if prog, _ := cfg.GetDecoderCommand(); prog != "" {
		t.Errorf("expected empty program, got %s", prog)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected Processors %d, got %d", DefaultProcessors, cfg.Processors)
	}

	if len(cfg.Presets) != len(DefaultPresets) {
		t.Errorf("expected %d presets, got %d", len(DefaultPresets), len(cfg.Presets))
	}

	cfg.Presets[0] = "changed"
	if DefaultPresets[0] == "changed" {
		t.Error("New must copy the default presets")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("FIXVIEW_DECODER", "")

	t.Run("missing files keep defaults", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DataDir != DefaultDataDir {
			t.Errorf("expected %s, got %s", DefaultDataDir, cfg.DataDir)
		}
	})

	t.Run("yaml file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := "dataDir: fixtures\npresets: [minimal]\ndecodeTimeout: 5s\nprocessors: 3\n"
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DataDir != "fixtures" {
			t.Errorf("expected fixtures, got %s", cfg.DataDir)
		}
		if len(cfg.Presets) != 1 || cfg.Presets[0] != "minimal" {
			t.Errorf("unexpected presets %v", cfg.Presets)
		}
		if cfg.DecodeTimeout != 5*time.Second {
			t.Errorf("expected 5s, got %s", cfg.DecodeTimeout)
		}
		if cfg.Processors != 3 {
			t.Errorf("expected 3 processors, got %d", cfg.Processors)
		}
	})

	t.Run("env file overrides yaml", func(t *testing.T) {
		os.Unsetenv("FIXVIEW_DB_DSN")
		t.Cleanup(func() { os.Unsetenv("FIXVIEW_DB_DSN") })

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("decoder: from-yaml\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FIXVIEW_DB_DSN=catalog.db\n"), 0644); err != nil {
			t.Fatalf("failed to write env: %v", err)
		}

		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Decoder != "from-yaml" {
			t.Errorf("expected from-yaml, got %s", cfg.Decoder)
		}
		if cfg.DBDSN != "catalog.db" {
			t.Errorf("expected catalog.db, got %s", cfg.DBDSN)
		}
	})

	t.Run("invalid yaml fails", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("presets: [unterminated\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := Load(dir); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{Processors: 8, Timeout: time.Second, DataDir: "other"})

	if cfg.Processors != 8 {
		t.Errorf("expected 8 processors, got %d", cfg.Processors)
	}
	if cfg.DecodeTimeout != time.Second {
		t.Errorf("expected 1s timeout, got %s", cfg.DecodeTimeout)
	}
	if cfg.DataDir != "other" {
		t.Errorf("expected other, got %s", cfg.DataDir)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("zero flags must not override, got addr %s", cfg.Addr)
	}
}
