package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultImageExtensions are the extensions a writer exists for.
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png"}

// ScanImageFiles scans input directory recursively for image files based on extensions.
// Unreadable entries below inputDir are logged and skipped; only a failure on
// inputDir itself is returned.
func ScanImageFiles(inputDir string, exts []string, logger *Logger) ([]string, error) {
	var files []string
	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == inputDir {
				return err
			}
			logger.Warn("skipping %s: %v", path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if hasExtension(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning files: %w", err)
	}
	return files, nil
}

// hasExtension matches the extension of path case-insensitively.
func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// checkRoot verifies that root exists and is a directory.
func checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}
	return abs, nil
}
