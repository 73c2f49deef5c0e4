// hkxconvert/paths.go

package hkxconvert

import (
	"path/filepath"
	"strings"
)

// OutputSpec describes where and under which names conversion outputs are
// written. A non-empty CustomExtension overrides any mode or format derived
// extension.
type OutputSpec struct {
	Root            string
	Suffix          string
	CustomExtension string
}

// DeriveOutputPath computes the destination path for one input file.
//
// The extension is the custom extension when set, otherwise the mode's
// default (KF and HKX for the animation modes, the format's canonical
// extension for regular conversions). The file name is the input's stem,
// "_suffix" appended when a suffix is configured.
//
// When the batch holds more than one file the input's directory relative to
// the common ancestor of all batch inputs is preserved under the output
// root. A single-file batch writes flat into the root. When no common
// ancestor exists (divergent roots) the relative part degrades to empty;
// that only flattens the layout and never fails the file.
func DeriveOutputPath(input string, out OutputSpec, batch []string, mode Mode, format Format) (string, error) {
	base := filepath.Base(filepath.Clean(input))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", &PathDerivationError{Input: input, Reason: "path has no file name"}
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "", &PathDerivationError{Input: input, Reason: "path has no file stem"}
	}

	ext := strings.TrimPrefix(out.CustomExtension, ".")
	if ext == "" {
		ext = mode.OutputExtension(format)
	}

	name := stem
	if out.Suffix != "" {
		name += "_" + out.Suffix
	}
	name += "." + ext

	relDir := ""
	if len(batch) > 1 {
		parents := make([]string, 0, len(batch))
		for _, p := range batch {
			parents = append(parents, filepath.Dir(filepath.Clean(p)))
		}
		if ancestor, ok := CommonAncestor(parents); ok {
			if rel, err := filepath.Rel(ancestor, filepath.Dir(filepath.Clean(input))); err == nil && rel != "." {
				relDir = rel
			}
		}
	}

	return filepath.Join(out.Root, relDir, name), nil
}

// CommonAncestor returns the longest common ancestor directory of the given
// paths. It walks each candidate upwards until it contains every path and
// reports ok=false for an empty set or when a path's ascent chain is
// exhausted without a match (different drives or mixed roots).
func CommonAncestor(paths []string) (string, bool) {
	if len(paths) == 0 {
		return "", false
	}
	common := filepath.Clean(paths[0])
	for _, p := range paths[1:] {
		p = filepath.Clean(p)
		for !isAncestor(common, p) {
			parent := filepath.Dir(common)
			if parent == common {
				return "", false
			}
			common = parent
		}
	}
	return common, true
}

// isAncestor reports whether path lies under dir (or equals it), judged
// lexically on cleaned paths.
func isAncestor(dir, path string) bool {
	if dir == path {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
