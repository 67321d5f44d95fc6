package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fixview/internal/domain"
)

// Scanner walks an extracted fixture tree and collects test case directories
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// IsTestCase reports whether a directory holding the given file names is a terminal test case
func IsTestCase(files []string) bool {
	for _, name := range files {
		if name == domain.DataFile || name == domain.MetaFile || domain.IsFixture(name) {
			return true
		}
	}
	return false
}

// Scan finds all test case directories under root, depth-first in name order.
// Directories that are not test cases are never recorded; the walk descends into their subdirectories.
func (s *Scanner) Scan(root string) ([]domain.TestCaseDirectory, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.Setupf(err, "test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, domain.Setupf(nil, "test path is not a directory: %s", root)
	}

	var found []domain.TestCaseDirectory
	if err := s.walk(root, nil, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Scanner) walk(dir string, segments []string, found *[]domain.TestCaseDirectory) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	var files, subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}

	if len(segments) > 0 && IsTestCase(files) {
		*found = append(*found, domain.TestCaseDirectory{
			Segments: append([]string(nil), segments...),
			Files:    files,
		})
		return nil
	}

	for _, name := range subdirs {
		// Skip hidden directories (starting with .)
		if strings.HasPrefix(name, ".") || s.skipDirs[name] {
			continue
		}
		next := append(append([]string(nil), segments...), name)
		if err := s.walk(filepath.Join(dir, name), next, found); err != nil {
			return err
		}
	}
	return nil
}

// ScanFiles lists every file under root whose name passes match, as slash-separated relative paths
func (s *Scanner) ScanFiles(root string, match func(name string) bool) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.Setupf(err, "test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, domain.Setupf(nil, "test path is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || s.skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if match(d.Name()) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})

	return files, err
}
