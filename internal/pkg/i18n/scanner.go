package i18n

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// keyPatterns match translation calls in Go code and templates:
// T("key"), T(ctx, "key"), Trans("key"), __("key") and {{ t "key" }}
var keyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:T|Trans)\(\s*"([^"\\]+)"`),
	regexp.MustCompile(`\b(?:T|Trans)\(\s*[A-Za-z_][\w.]*\s*,\s*"([^"\\]+)"`),
	regexp.MustCompile("\\b(?:T|Trans)\\(\\s*`([^`]+)`"),
	regexp.MustCompile(`__\(\s*["']([^"'\\]+)["']`),
	regexp.MustCompile(`\{\{-?\s*t\s+"([^"\\]+)"`),
}

// scannedExtensions are the file types searched for keys
var scannedExtensions = map[string]bool{
	".go":     true,
	".html":   true,
	".tmpl":   true,
	".gohtml": true,
	".js":     true,
	".ts":     true,
	".vue":    true,
}

// Scanner extracts translation keys from source files
type Scanner struct {
	paths   []string
	exclude []string
}

// NewScanner creates a scanner over paths. Files whose path contains one of the
// exclude fragments are skipped.
func NewScanner(paths, exclude []string) *Scanner {
	return &Scanner{paths: paths, exclude: exclude}
}

// Scan returns the keys found, each with the files referencing it. Missing paths
// are skipped.
func (s *Scanner) Scan() (map[string][]string, error) {
	found := make(map[string][]string)

	for _, root := range s.paths {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); name != "." && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
					return filepath.SkipDir
				}
				return nil
			}
			if !scannedExtensions[filepath.Ext(path)] || s.excluded(path) {
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			for _, key := range ExtractKeys(string(data)) {
				found[key] = append(found[key], path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}
	return found, nil
}

func (s *Scanner) excluded(path string) bool {
	for _, fragment := range s.exclude {
		if fragment != "" && strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// ExtractKeys returns the distinct translation keys referenced in src, sorted
func ExtractKeys(src string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, pattern := range keyPatterns {
		for _, m := range pattern.FindAllStringSubmatch(src, -1) {
			key := strings.TrimSpace(m[1])
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// SortedKeys returns the keys of a Scan result in order
func SortedKeys(found map[string][]string) []string {
	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
