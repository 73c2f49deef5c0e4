// hkxconvert/tool.go

// Package hkxconvert implements the batch conversion engine: output path
// derivation, the converter tool registry, per-file conversion tasks and the
// concurrent batch orchestrator with its progress event stream. The actual
// file conversion is performed by external command-line tools; this package
// only knows their invocation conventions as data.
package hkxconvert

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Mode selects the kind of conversion a batch performs.
type Mode int

const (
	// ModeRegular converts between HKX and XML representations.
	ModeRegular Mode = iota
	// ModeKfToHkx converts KF animations to HKX. Requires a skeleton file.
	ModeKfToHkx
	// ModeHkxToKf converts HKX animations to KF. Requires a skeleton file.
	ModeHkxToKf
)

func (m Mode) String() string {
	switch m {
	case ModeKfToHkx:
		return "kf-to-hkx"
	case ModeHkxToKf:
		return "hkx-to-kf"
	default:
		return "regular"
	}
}

// Label returns the human readable name shown in selectors.
func (m Mode) Label() string {
	switch m {
	case ModeKfToHkx:
		return "KF -> HKX"
	case ModeHkxToKf:
		return "HKX -> KF"
	default:
		return "HKX <-> XML"
	}
}

// RequiresSkeleton reports whether the mode needs an auxiliary skeleton file.
func (m Mode) RequiresSkeleton() bool {
	return m == ModeKfToHkx || m == ModeHkxToKf
}

// OutputExtension returns the default output extension for the mode. Regular
// conversions take their extension from the output format.
func (m Mode) OutputExtension(f Format) string {
	switch m {
	case ModeKfToHkx:
		return "hkx"
	case ModeHkxToKf:
		return "kf"
	default:
		return f.Extension()
	}
}

// ParseMode converts a textual mode name as used by the CLI and tool files.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular", "convert":
		return ModeRegular, nil
	case "kf-to-hkx", "importkf":
		return ModeKfToHkx, nil
	case "hkx-to-kf", "exportkf":
		return ModeHkxToKf, nil
	}
	return ModeRegular, fmt.Errorf("unknown conversion mode: %q", s)
}

// Format selects the on-disk flavor of the conversion output.
type Format int

const (
	// FormatXML is the textual Havok representation.
	FormatXML Format = iota
	// FormatSkyrimLE is the 32-bit binary packfile format.
	FormatSkyrimLE
	// FormatSkyrimSE is the 64-bit binary packfile format.
	FormatSkyrimSE
)

func (f Format) String() string {
	switch f {
	case FormatSkyrimLE:
		return "skyrim-le"
	case FormatSkyrimSE:
		return "skyrim-se"
	default:
		return "xml"
	}
}

// Label returns the human readable name shown in selectors.
func (f Format) Label() string {
	switch f {
	case FormatSkyrimLE:
		return "Skyrim LE"
	case FormatSkyrimSE:
		return "Skyrim SE"
	default:
		return "XML"
	}
}

// Extension returns the canonical file extension for the format.
func (f Format) Extension() string {
	if f == FormatXML {
		return "xml"
	}
	return "hkx"
}

// ParseFormat converts a textual format name as used by the CLI and tool files.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xml":
		return FormatXML, nil
	case "skyrim-le", "le", "win32":
		return FormatSkyrimLE, nil
	case "skyrim-se", "se", "amd64":
		return FormatSkyrimSE, nil
	}
	return FormatXML, fmt.Errorf("unknown output format: %q", s)
}

// Strategy describes how a tool's output reaches the requested destination.
type Strategy int

const (
	// StrategyDirect tools accept an explicit output path argument.
	StrategyDirect Strategy = iota
	// StrategyStaged tools write a fixed-name file into their working
	// directory; the task runs them in a private scratch directory and
	// relocates the result afterwards.
	StrategyStaged
	// StrategyInPlace tools overwrite the file they are given. The task
	// copies the source to the destination first and points the tool at it.
	StrategyInPlace
)

// ToolKind identifies a converter in the registry.
type ToolKind string

// Built-in converters.
const (
	ToolHkxCmd      ToolKind = "hkxcmd"
	ToolHkxC        ToolKind = "hkxc"
	ToolHavokFilter ToolKind = "hctfilter"
	ToolHkx64to32   ToolKind = "hkx64to32"
)

// ToolSpec describes one external converter: which inputs it accepts, which
// mode/format combinations it supports and how its command line is built.
// Argument templates may reference {input}, {output}, {skeleton} and
// {format}; the format placeholder expands to the tool's own token for the
// selected format. Presence of a mode in ModeArgs and a format in Formats is
// the capability matrix.
type ToolSpec struct {
	Kind            ToolKind
	Label           string
	Executable      string
	InputExtensions []string
	ModeArgs        map[Mode][]string
	Formats         map[Format]string
	Strategy        Strategy
	// StagedOutput is the fixed file name a StrategyStaged tool writes into
	// its working directory.
	StagedOutput string
}

// SupportsMode reports whether the tool can run the given mode.
func (t *ToolSpec) SupportsMode(m Mode) bool {
	_, ok := t.ModeArgs[m]
	return ok
}

// SupportsFormat reports whether the tool can emit the given format.
func (t *ToolSpec) SupportsFormat(f Format) bool {
	_, ok := t.Formats[f]
	return ok
}

// DefaultFormat returns a format the tool supports, preferring the binary
// formats over XML. Used by front-ends to reset an unsupported selection.
func (t *ToolSpec) DefaultFormat() Format {
	for _, f := range []Format{FormatSkyrimSE, FormatSkyrimLE, FormatXML} {
		if t.SupportsFormat(f) {
			return f
		}
	}
	return FormatXML
}

// Registry holds the known converter tools. Adding a tool is a data change:
// register a ToolSpec (or load one from a tool file) and every front-end and
// the orchestrator pick it up without code changes.
type Registry struct {
	order []ToolKind
	specs map[ToolKind]*ToolSpec
}

// NewRegistry returns a registry populated with the built-in converters.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[ToolKind]*ToolSpec)}
	for _, spec := range builtinTools() {
		// Built-ins never collide.
		_ = r.Register(spec)
	}
	return r
}

// Register adds a tool definition. Registering an already known kind fails.
func (r *Registry) Register(spec *ToolSpec) error {
	if spec == nil || spec.Kind == "" {
		return fmt.Errorf("tool definition has no name")
	}
	if spec.Executable == "" {
		return fmt.Errorf("tool %q has no executable", spec.Kind)
	}
	if len(spec.ModeArgs) == 0 {
		return fmt.Errorf("tool %q supports no conversion mode", spec.Kind)
	}
	if len(spec.Formats) == 0 {
		return fmt.Errorf("tool %q supports no output format", spec.Kind)
	}
	if spec.Strategy == StrategyStaged && spec.StagedOutput == "" {
		return fmt.Errorf("staged tool %q has no output file name", spec.Kind)
	}
	if _, exists := r.specs[spec.Kind]; exists {
		return fmt.Errorf("tool %q is already registered", spec.Kind)
	}
	r.specs[spec.Kind] = spec
	r.order = append(r.order, spec.Kind)
	return nil
}

// Lookup returns the spec for a tool kind.
func (r *Registry) Lookup(kind ToolKind) (*ToolSpec, bool) {
	spec, ok := r.specs[kind]
	return spec, ok
}

// Kinds returns the registered tool kinds in registration order.
func (r *Registry) Kinds() []ToolKind {
	out := make([]ToolKind, len(r.order))
	copy(out, r.order)
	return out
}

// Supports verifies a (tool, mode, format) triple against the capability
// matrix and returns a CapabilityError when it is outside the tool's set.
func (r *Registry) Supports(kind ToolKind, mode Mode, format Format) error {
	spec, ok := r.specs[kind]
	if !ok {
		return &CapabilityError{Tool: kind, Mode: mode, Format: format, Reason: "unknown tool"}
	}
	if !spec.SupportsMode(mode) {
		return &CapabilityError{Tool: kind, Mode: mode, Format: format, Reason: "mode not supported"}
	}
	if !spec.SupportsFormat(format) {
		return &CapabilityError{Tool: kind, Mode: mode, Format: format, Reason: "format not supported"}
	}
	return nil
}

// ResolveExecutable turns a tool's executable name into the path handed to
// the OS. With a tools directory configured the executable is expected
// there; otherwise it is looked up on PATH by name.
func ResolveExecutable(toolsDir, executable string) string {
	name := executable
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	if toolsDir == "" {
		return name
	}
	return filepath.Join(toolsDir, name)
}

func builtinTools() []*ToolSpec {
	return []*ToolSpec{
		{
			Kind:            ToolHkxCmd,
			Label:           "hkxcmd",
			Executable:      "hkxcmd",
			InputExtensions: []string{".hkx", ".xml", ".kf"},
			ModeArgs: map[Mode][]string{
				ModeRegular: {"convert", "-i", "{input}", "-o", "{output}", "-v:{format}"},
				ModeKfToHkx: {"importkf", "{skeleton}", "{input}", "{output}"},
				ModeHkxToKf: {"exportkf", "{skeleton}", "{input}", "{output}"},
			},
			Formats: map[Format]string{
				FormatXML:      "XML",
				FormatSkyrimLE: "WIN32",
				FormatSkyrimSE: "AMD64",
			},
		},
		{
			Kind:            ToolHkxC,
			Label:           "hkxc",
			Executable:      "hkxc",
			InputExtensions: []string{".hkx", ".xml"},
			ModeArgs: map[Mode][]string{
				ModeRegular: {"convert", "--input", "{input}", "--output", "{output}", "--format", "{format}"},
			},
			Formats: map[Format]string{
				FormatXML:      "xml",
				FormatSkyrimLE: "win32",
				FormatSkyrimSE: "amd64",
			},
		},
		{
			Kind:            ToolHavokFilter,
			Label:           "Havok filter manager",
			Executable:      "hctStandAloneFilterManager",
			InputExtensions: []string{".hkx", ".xml"},
			ModeArgs: map[Mode][]string{
				ModeRegular: {"-s", "{format}", "{input}"},
			},
			Formats: map[Format]string{
				FormatSkyrimLE: "win32",
				FormatSkyrimSE: "amd64",
			},
			Strategy:     StrategyStaged,
			StagedOutput: "output.hkx",
		},
		{
			Kind:            ToolHkx64to32,
			Label:           "hkx64to32",
			Executable:      "hkx64to32",
			InputExtensions: []string{".hkx"},
			ModeArgs: map[Mode][]string{
				ModeRegular: {"{output}"},
			},
			Formats: map[Format]string{
				FormatSkyrimLE: "win32",
			},
			Strategy: StrategyInPlace,
		},
	}
}

// SortedExtensions returns the union of input extensions across registered
// tools, lower-cased and sorted. Used by front-ends for file filters.
func (r *Registry) SortedExtensions() []string {
	seen := make(map[string]bool)
	for _, kind := range r.order {
		for _, ext := range r.specs[kind].InputExtensions {
			seen[strings.ToLower(ext)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for ext := range seen {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
