// hkxconvert/errors.go

package hkxconvert

import "fmt"

// CapabilityError reports a (tool, mode, format) combination outside the
// tool's declared capability set. It is raised before any process is spawned.
type CapabilityError struct {
	Tool   ToolKind
	Mode   Mode
	Format Format
	Reason string
}

func (e *CapabilityError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s does not support %s/%s: %s", e.Tool, e.Mode, e.Format, e.Reason)
	}
	return fmt.Sprintf("%s does not support %s/%s", e.Tool, e.Mode, e.Format)
}

// PathDerivationError reports an input whose output path could not be
// computed (typically a path with no file stem). It fails that file only.
type PathDerivationError struct {
	Input  string
	Reason string
}

func (e *PathDerivationError) Error() string {
	return fmt.Sprintf("cannot derive output path for %q: %s", e.Input, e.Reason)
}

// ToolFailedError reports a converter process that exited with a non-zero
// status. Stderr is included verbatim.
type ToolFailedError struct {
	Tool     ToolKind
	ExitCode int
	Stderr   string
}

func (e *ToolFailedError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Stderr)
}

// OutputMissingError reports a tool that exited successfully without
// producing the expected output file.
type OutputMissingError struct {
	Path string
}

func (e *OutputMissingError) Error() string {
	return fmt.Sprintf("output file was not created: %s", e.Path)
}
