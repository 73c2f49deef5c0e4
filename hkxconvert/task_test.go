// hkxconvert/task_test.go

package hkxconvert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// testRegistry returns a registry of fake converters backed by standard unix
// commands, one per execution strategy.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake converters use unix commands")
	}

	reg := &Registry{specs: make(map[ToolKind]*ToolSpec)}
	specs := []*ToolSpec{
		{
			Kind:            "copy",
			Label:           "copy",
			Executable:      "cp",
			InputExtensions: []string{".hkx"},
			ModeArgs:        map[Mode][]string{ModeRegular: {"{input}", "{output}"}},
			Formats:         map[Format]string{FormatXML: "xml"},
		},
		{
			Kind:       "fail",
			Executable: "sh",
			ModeArgs:   map[Mode][]string{ModeRegular: {"-c", "echo conversion exploded >&2; exit 3"}},
			Formats:    map[Format]string{FormatXML: "xml"},
		},
		{
			Kind:       "liar",
			Executable: "true",
			ModeArgs:   map[Mode][]string{ModeRegular: {"{output}"}},
			Formats:    map[Format]string{FormatXML: "xml"},
		},
		{
			Kind:         "staged",
			Executable:   "sh",
			ModeArgs:     map[Mode][]string{ModeRegular: {"-c", "cp {input} output.hkx"}},
			Formats:      map[Format]string{FormatSkyrimSE: "amd64"},
			Strategy:     StrategyStaged,
			StagedOutput: "output.hkx",
		},
		{
			Kind:       "grow",
			Executable: "sh",
			ModeArgs:   map[Mode][]string{ModeRegular: {"-c", "echo extra >> {output}"}},
			Formats:    map[Format]string{FormatSkyrimLE: "win32"},
			Strategy:   StrategyInPlace,
		},
		{
			Kind:       "idle",
			Executable: "true",
			ModeArgs:   map[Mode][]string{ModeRegular: {"{output}"}},
			Formats:    map[Format]string{FormatSkyrimLE: "win32"},
			Strategy:   StrategyInPlace,
		},
		{
			Kind:       "slow",
			Executable: "sleep",
			ModeArgs:   map[Mode][]string{ModeRegular: {"2"}},
			Formats:    map[Format]string{FormatXML: "xml"},
		},
	}
	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessTaskRunnerDirect(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "run.hkx", "havok payload")
	output := filepath.Join(dir, "out", "run.xml")

	runner := &ProcessTaskRunner{Registry: reg}
	res := runner.Run(context.Background(), &Task{Input: input, Output: output, Tool: "copy", Mode: ModeRegular, Format: FormatXML})

	if res.Err != nil {
		t.Fatalf("Run failed: %v", res.Err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output was not created: %v", err)
	}
	if string(data) != "havok payload" {
		t.Errorf("output content = %q", data)
	}
	if res.OutputSize != int64(len("havok payload")) {
		t.Errorf("OutputSize = %d", res.OutputSize)
	}
}

func TestProcessTaskRunnerNonZeroExit(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "run.hkx", "x")

	runner := &ProcessTaskRunner{Registry: reg}
	res := runner.Run(context.Background(), &Task{Input: input, Output: filepath.Join(dir, "run.xml"), Tool: "fail", Mode: ModeRegular, Format: FormatXML})

	var terr *ToolFailedError
	if !errors.As(res.Err, &terr) {
		t.Fatalf("got %v, want ToolFailedError", res.Err)
	}
	if terr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", terr.ExitCode)
	}
	if !strings.Contains(terr.Stderr, "conversion exploded") {
		t.Errorf("Stderr = %q, want the tool's diagnostics", terr.Stderr)
	}
}

func TestProcessTaskRunnerSilentFailure(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "run.hkx", "x")

	runner := &ProcessTaskRunner{Registry: reg}
	res := runner.Run(context.Background(), &Task{Input: input, Output: filepath.Join(dir, "run.xml"), Tool: "liar", Mode: ModeRegular, Format: FormatXML})

	// Exit zero without an output file is still a failure.
	var merr *OutputMissingError
	if !errors.As(res.Err, &merr) {
		t.Fatalf("got %v, want OutputMissingError", res.Err)
	}
}

func TestProcessTaskRunnerStagedRelocation(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "run.hkx", "staged payload")
	output := filepath.Join(dir, "converted", "run.hkx")

	runner := &ProcessTaskRunner{Registry: reg}
	res := runner.Run(context.Background(), &Task{Input: input, Output: output, Tool: "staged", Mode: ModeRegular, Format: FormatSkyrimSE})

	if res.Err != nil {
		t.Fatalf("Run failed: %v", res.Err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("staged output was not relocated: %v", err)
	}
	if string(data) != "staged payload" {
		t.Errorf("output content = %q", data)
	}

	// The scratch directory must not survive the task.
	entries, err := filepath.Glob(filepath.Join(os.TempDir(), "hkxtoolbox-*"))
	if err == nil {
		for _, e := range entries {
			if info, statErr := os.Stat(e); statErr == nil && info.IsDir() && info.ModTime().After(time.Now().Add(-time.Minute)) {
				t.Errorf("scratch directory leaked: %s", e)
			}
		}
	}
}

func TestProcessTaskRunnerInPlace(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "run.hkx", "original\n")
	output := filepath.Join(dir, "out", "run.hkx")

	runner := &ProcessTaskRunner{Registry: reg}
	res := runner.Run(context.Background(), &Task{Input: input, Output: output, Tool: "grow", Mode: ModeRegular, Format: FormatSkyrimLE})

	if res.Err != nil {
		t.Fatalf("Run failed: %v", res.Err)
	}
	if res.Warning != "" {
		t.Errorf("unexpected warning: %q", res.Warning)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original\nextra\n" {
		t.Errorf("output content = %q", data)
	}

	// The source must be untouched.
	src, _ := os.ReadFile(input)
	if string(src) != "original\n" {
		t.Errorf("in-place conversion modified the source: %q", src)
	}
}

func TestProcessTaskRunnerInPlaceSameSizeWarns(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "run.hkx", "payload")
	output := filepath.Join(dir, "out", "run.hkx")

	runner := &ProcessTaskRunner{Registry: reg}
	res := runner.Run(context.Background(), &Task{Input: input, Output: output, Tool: "idle", Mode: ModeRegular, Format: FormatSkyrimLE})

	if res.Err != nil {
		t.Fatalf("Run failed: %v", res.Err)
	}
	if res.Warning == "" {
		t.Error("a same-size in-place transform must carry a warning")
	}
}

func TestProcessTaskRunnerTimeout(t *testing.T) {
	reg := testRegistry(t)
	dir := t.TempDir()
	input := writeInput(t, dir, "run.hkx", "x")

	runner := &ProcessTaskRunner{Registry: reg, Timeout: 100 * time.Millisecond}
	res := runner.Run(context.Background(), &Task{Input: input, Output: filepath.Join(dir, "run.xml"), Tool: "slow", Mode: ModeRegular, Format: FormatXML})

	if res.Err == nil || !strings.Contains(res.Err.Error(), "timed out") {
		t.Errorf("got %v, want a timeout error", res.Err)
	}
}

func TestProcessTaskRunnerDeriveError(t *testing.T) {
	reg := testRegistry(t)

	derr := &PathDerivationError{Input: "/", Reason: "path has no file name"}
	runner := &ProcessTaskRunner{Registry: reg}
	res := runner.Run(context.Background(), &Task{Input: "/", Tool: "copy", Mode: ModeRegular, Format: FormatXML, deriveErr: derr})

	if !errors.Is(res.Err, derr) {
		t.Errorf("got %v, want the stored derivation error", res.Err)
	}
}

func TestProcessTaskRunnerUnknownTool(t *testing.T) {
	reg := testRegistry(t)
	runner := &ProcessTaskRunner{Registry: reg}
	res := runner.Run(context.Background(), &Task{Input: "/in/a.hkx", Output: filepath.Join(t.TempDir(), "a.xml"), Tool: "nosuch", Mode: ModeRegular, Format: FormatXML})

	var cerr *CapabilityError
	if !errors.As(res.Err, &cerr) {
		t.Errorf("got %v, want CapabilityError", res.Err)
	}
}
