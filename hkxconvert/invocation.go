// hkxconvert/invocation.go

package hkxconvert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ProcessSpec is the fully resolved recipe for one converter invocation. It
// is pure data: building it touches no files and spawns nothing.
type ProcessSpec struct {
	Executable string
	Args       []string
	// Dir overrides the working directory of the process. Empty means the
	// caller's working directory.
	Dir string
	// ScratchDir is a private directory the task must create before the run
	// and remove afterwards. Set for staged tools only.
	ScratchDir string
	// StagedOutput is the absolute path of the fixed-name file a staged tool
	// leaves in its working directory; the task relocates it to the real
	// destination.
	StagedOutput string
	// InPlace marks a tool that overwrites the file it is given. The task
	// must populate the destination with a copy of the source first.
	InPlace bool
}

// BuildInvocation maps (tool, mode, format, paths) to a ProcessSpec.
// Unsupported combinations fail with a CapabilityError before anything is
// spawned. All paths handed to external tools are absolutized first: some
// converters treat any argument starting with "-" as a flag, so relative
// paths like "-dir/file.hkx" would be misparsed. That absolutization is
// load-bearing, not cosmetic.
func BuildInvocation(spec *ToolSpec, mode Mode, format Format, toolsDir, input, output, skeleton string) (*ProcessSpec, error) {
	template, ok := spec.ModeArgs[mode]
	if !ok {
		return nil, &CapabilityError{Tool: spec.Kind, Mode: mode, Format: format, Reason: "mode not supported"}
	}
	formatToken, ok := spec.Formats[format]
	if !ok {
		return nil, &CapabilityError{Tool: spec.Kind, Mode: mode, Format: format, Reason: "format not supported"}
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("failed to absolutize input path %q: %w", input, err)
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("failed to absolutize output path %q: %w", output, err)
	}
	absSkeleton := ""
	if skeleton != "" {
		absSkeleton, err = filepath.Abs(skeleton)
		if err != nil {
			return nil, fmt.Errorf("failed to absolutize skeleton path %q: %w", skeleton, err)
		}
	}
	if mode.RequiresSkeleton() && absSkeleton == "" {
		return nil, fmt.Errorf("%s requires a skeleton file", mode.Label())
	}

	ps := &ProcessSpec{Executable: ResolveExecutable(toolsDir, spec.Executable)}

	switch spec.Strategy {
	case StrategyStaged:
		// One scratch directory per invocation keeps concurrent tasks of the
		// same tool from clobbering each other's fixed-name outputs.
		scratch := filepath.Join(os.TempDir(), "hkxtoolbox-"+uuid.NewString())
		ps.Dir = scratch
		ps.ScratchDir = scratch
		ps.StagedOutput = filepath.Join(scratch, spec.StagedOutput)
	case StrategyInPlace:
		if absIn == absOut {
			return nil, fmt.Errorf("%s works in place and would overwrite its own input: %s", spec.Kind, absIn)
		}
		ps.InPlace = true
	}

	expand := strings.NewReplacer(
		"{input}", absIn,
		"{output}", absOut,
		"{skeleton}", absSkeleton,
		"{format}", formatToken,
	)
	ps.Args = make([]string, 0, len(template))
	for _, arg := range template {
		ps.Args = append(ps.Args, expand.Replace(arg))
	}

	return ps, nil
}
