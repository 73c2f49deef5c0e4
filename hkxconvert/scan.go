// hkxconvert/scan.go

package hkxconvert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InputFilter restricts which file types a folder scan picks up.
type InputFilter int

const (
	FilterAll InputFilter = iota
	FilterHkx
	FilterXml
	FilterKf
)

// Label returns the human readable name shown in selectors.
func (f InputFilter) Label() string {
	switch f {
	case FilterHkx:
		return "HKX only"
	case FilterXml:
		return "XML only"
	case FilterKf:
		return "KF only"
	default:
		return "All (HKX, XML & KF)"
	}
}

// Matches reports whether a file extension (with leading dot) passes the
// filter. Comparison is case-insensitive.
func (f InputFilter) Matches(ext string) bool {
	ext = strings.ToLower(ext)
	switch f {
	case FilterHkx:
		return ext == ".hkx"
	case FilterXml:
		return ext == ".xml"
	case FilterKf:
		return ext == ".kf"
	default:
		return ext == ".hkx" || ext == ".xml" || ext == ".kf"
	}
}

// CollectInputs scans a folder for convertible files and appends them to the
// existing list, preserving insertion order and skipping paths already
// present. The non-recursive form only looks at the folder's direct entries.
func CollectInputs(dir string, filter InputFilter, recursive bool, existing []string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return existing, fmt.Errorf("failed to read folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return existing, fmt.Errorf("%s is not a folder", dir)
	}

	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p] = true
	}

	out := existing
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !filter.Matches(filepath.Ext(path)) {
			return nil
		}
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("failed to scan folder %s: %w", dir, err)
	}
	return out, nil
}

// AddInput appends a single file if it is not already in the list.
func AddInput(list []string, path string) []string {
	for _, p := range list {
		if p == path {
			return list
		}
	}
	return append(list, path)
}
