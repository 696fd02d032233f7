package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultImagePatterns select the formats the decoder accepts when a
// directory is scanned without include patterns.
var DefaultImagePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.tif", "*.tiff", "*.webp",
}

// DiscoverFiles expands args into a list of image files. Files named
// explicitly are kept unless excluded; directories contribute the files
// matching includePatterns (DefaultImagePatterns when empty). Matching is
// on the base name and ignores case.
func DiscoverFiles(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			found, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		} else if !matchesAnyPattern(arg, excludePatterns) {
			files = append(files, arg)
		}
	}

	return files, nil
}

// discoverInDirectory lists matching files below dir in lexical order.
func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	if len(includePatterns) == 0 {
		includePatterns = DefaultImagePatterns
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return files, nil
}

// shouldIncludeFile reports whether path passes the exclude and include patterns.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}
	return len(includePatterns) == 0 || matchesAnyPattern(path, includePatterns)
}

// matchesAnyPattern checks the base name of path against the patterns.
func matchesAnyPattern(path string, patterns []string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(strings.ToLower(pattern), base); matched {
			return true
		}
	}
	return false
}
