package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, file := range files {
		fullPath := filepath.Join(root, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}
}

func TestIsTestCase(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected bool
	}{
		{name: "data descriptor", files: []string{"data.yaml"}, expected: true},
		{name: "metadata", files: []string{"README.md", "meta.yaml"}, expected: true},
		{name: "fixture suffix", files: []string{"pre.ssz_snappy"}, expected: true},
		{name: "companion only", files: []string{"pre.ssz_snappy.yaml"}, expected: false},
		{name: "unrelated files", files: []string{"notes.txt", "data.yml"}, expected: false},
		{name: "empty", files: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTestCase(tt.files); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	writeTree(t, tmpDir, []string{
		"tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/serialized.ssz_snappy",
		"tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/roots.yaml",
		"tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_1/serialized.ssz_snappy",
		"tests/general/phase0/bls/verify/small/case_0/data.yaml",
		"tests/minimal/altair/sanity/blocks/pyspec_tests/empty/meta.yaml",
		"tests/minimal/altair/sanity/blocks/pyspec_tests/empty/nested/data.yaml",
		"tests/minimal/altair/README.txt",
		"tests/.git/objects/data.yaml",
	})

	scanner := NewScanner(nil)

	t.Run("finds terminal directories", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(results) != 4 {
			t.Fatalf("expected 4 test case directories, got %d: %v", len(results), results)
		}

		first := results[0]
		if first.RelPath() != "tests/general/phase0/bls/verify/small/case_0" {
			t.Errorf("unexpected first path %s", first.RelPath())
		}
		if len(first.Files) != 1 || first.Files[0] != "data.yaml" {
			t.Errorf("unexpected files %v", first.Files)
		}
	})

	t.Run("does not descend into test cases", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, r := range results {
			if filepath.Base(r.RelPath()) == "nested" {
				t.Errorf("nested directory of a test case must not be recorded")
			}
		}
	})

	t.Run("keys match path segments", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		key, err := ParseKey(results[1].Segments)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key.Preset != "mainnet" || key.Fork != "phase0" || key.TestType != "ssz_static" ||
			key.TestSuite != "Validator" || key.Config != "ssz_random" || key.TestCase != "case_0" {
			t.Errorf("unexpected key %+v", key)
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "testfile.txt")
		os.WriteFile(testFile, []byte("test"), 0644)
		_, err := scanner.Scan(testFile)
		if err == nil {
			t.Error("expected error for file path")
		}
	})
}

func TestScanner_ScanFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/serialized.ssz_snappy",
		"tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/serialized.ssz_snappy.yaml",
		"tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/roots.yaml",
	})

	files, err := NewScanner(nil).ScanFiles(tmpDir, func(name string) bool {
		return filepath.Ext(name) == ".ssz_snappy"
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %v", files)
	}
	if files[0] != "tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/serialized.ssz_snappy" {
		t.Errorf("unexpected path %s", files[0])
	}
}
