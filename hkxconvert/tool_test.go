// hkxconvert/tool_test.go

package hkxconvert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegistryBuiltins(t *testing.T) {
	reg := NewRegistry()

	want := []ToolKind{ToolHkxCmd, ToolHkxC, ToolHavokFilter, ToolHkx64to32}
	got := reg.Kinds()
	if len(got) != len(want) {
		t.Fatalf("got %d built-in tools, want %d", len(got), len(want))
	}
	for i, kind := range want {
		if got[i] != kind {
			t.Errorf("Kinds()[%d] = %q, want %q", i, got[i], kind)
		}
	}
}

func TestRegistryRegisterRejectsInvalidSpecs(t *testing.T) {
	valid := func() *ToolSpec {
		return &ToolSpec{
			Kind:       "custom",
			Executable: "custom",
			ModeArgs:   map[Mode][]string{ModeRegular: {"{input}", "{output}"}},
			Formats:    map[Format]string{FormatXML: "xml"},
		}
	}

	cases := []struct {
		name   string
		mutate func(*ToolSpec)
	}{
		{"no name", func(s *ToolSpec) { s.Kind = "" }},
		{"no executable", func(s *ToolSpec) { s.Executable = "" }},
		{"no modes", func(s *ToolSpec) { s.ModeArgs = nil }},
		{"no formats", func(s *ToolSpec) { s.Formats = nil }},
		{"staged without output name", func(s *ToolSpec) { s.Strategy = StrategyStaged }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			spec := valid()
			tc.mutate(spec)
			if err := reg.Register(spec); err == nil {
				t.Error("Register accepted an invalid spec")
			}
		})
	}

	t.Run("duplicate kind", func(t *testing.T) {
		reg := NewRegistry()
		if err := reg.Register(valid()); err != nil {
			t.Fatalf("first Register failed: %v", err)
		}
		if err := reg.Register(valid()); err == nil {
			t.Error("Register accepted a duplicate kind")
		}
	})
}

func TestRegistrySupportsCapabilityMatrix(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		tool   ToolKind
		mode   Mode
		format Format
		ok     bool
	}{
		{"hkxcmd regular xml", ToolHkxCmd, ModeRegular, FormatXML, true},
		{"hkxcmd importkf", ToolHkxCmd, ModeKfToHkx, FormatSkyrimLE, true},
		{"hkxc regular", ToolHkxC, ModeRegular, FormatSkyrimSE, true},
		{"hkxc has no animation modes", ToolHkxC, ModeKfToHkx, FormatSkyrimSE, false},
		{"filter manager has no xml", ToolHavokFilter, ModeRegular, FormatXML, false},
		{"filter manager binary", ToolHavokFilter, ModeRegular, FormatSkyrimSE, true},
		{"hkx64to32 le only", ToolHkx64to32, ModeRegular, FormatSkyrimLE, true},
		{"hkx64to32 no se", ToolHkx64to32, ModeRegular, FormatSkyrimSE, false},
		{"unknown tool", "nosuch", ModeRegular, FormatXML, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := reg.Supports(tc.tool, tc.mode, tc.format)
			if tc.ok && err != nil {
				t.Errorf("Supports(%s, %s, %s) = %v, want nil", tc.tool, tc.mode, tc.format, err)
			}
			if !tc.ok {
				var cerr *CapabilityError
				if !errors.As(err, &cerr) {
					t.Errorf("Supports(%s, %s, %s) = %v, want CapabilityError", tc.tool, tc.mode, tc.format, err)
				}
			}
		})
	}
}

func TestDefaultFormatPrefersBinary(t *testing.T) {
	reg := NewRegistry()

	hkxcmd, _ := reg.Lookup(ToolHkxCmd)
	if got := hkxcmd.DefaultFormat(); got != FormatSkyrimSE {
		t.Errorf("hkxcmd default format = %s, want %s", got, FormatSkyrimSE)
	}

	hkx64to32, _ := reg.Lookup(ToolHkx64to32)
	if got := hkx64to32.DefaultFormat(); got != FormatSkyrimLE {
		t.Errorf("hkx64to32 default format = %s, want %s", got, FormatSkyrimLE)
	}
}

func TestParseMode(t *testing.T) {
	for input, want := range map[string]Mode{
		"regular":   ModeRegular,
		"Regular":   ModeRegular,
		"kf-to-hkx": ModeKfToHkx,
		"importkf":  ModeKfToHkx,
		"hkx-to-kf": ModeHkxToKf,
		"exportkf":  ModeHkxToKf,
	} {
		got, err := ParseMode(input)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %s, %v; want %s", input, got, err, want)
		}
	}

	if _, err := ParseMode("sideways"); err == nil {
		t.Error("ParseMode accepted an unknown mode")
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"xml":       FormatXML,
		"skyrim-le": FormatSkyrimLE,
		"win32":     FormatSkyrimLE,
		"le":        FormatSkyrimLE,
		"skyrim-se": FormatSkyrimSE,
		"amd64":     FormatSkyrimSE,
		"SE":        FormatSkyrimSE,
	} {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %s, %v; want %s", input, got, err, want)
		}
	}

	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("ParseFormat accepted an unknown format")
	}
}

func TestSortedExtensions(t *testing.T) {
	reg := NewRegistry()
	got := reg.SortedExtensions()
	want := []string{".hkx", ".kf", ".xml"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestResolveExecutable(t *testing.T) {
	if got := ResolveExecutable("", "hkxcmd"); got != "hkxcmd" && got != "hkxcmd.exe" {
		t.Errorf("ResolveExecutable with empty dir = %q", got)
	}
	got := ResolveExecutable("/tools", "hkxcmd")
	if filepath.Dir(got) != filepath.FromSlash("/tools") {
		t.Errorf("ResolveExecutable did not place the executable in the tools dir: %q", got)
	}
}

func TestLoadToolsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.yaml")
	content := `tools:
  - name: mytool
    label: My Tool
    executable: mytool
    extensions: [".hkx"]
    modes:
      regular: ["{input}", "-o", "{output}", "--fmt", "{format}"]
    formats:
      xml: "xml"
      skyrim-se: "64bit"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	n, err := LoadToolsFromYAML(path, reg)
	if err != nil {
		t.Fatalf("LoadToolsFromYAML failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("loaded %d tools, want 1", n)
	}

	spec, ok := reg.Lookup("mytool")
	if !ok {
		t.Fatal("loaded tool is not in the registry")
	}
	if spec.Label != "My Tool" {
		t.Errorf("label = %q", spec.Label)
	}
	if !spec.SupportsMode(ModeRegular) || spec.SupportsMode(ModeKfToHkx) {
		t.Error("mode set does not match the definition")
	}
	if !spec.SupportsFormat(FormatSkyrimSE) || spec.SupportsFormat(FormatSkyrimLE) {
		t.Error("format set does not match the definition")
	}
}

func TestLoadToolsFromYAMLRejectsBadDefinitions(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"unknown mode": `tools:
  - name: t1
    executable: t1
    modes:
      sideways: ["{input}"]
    formats:
      xml: "xml"
`,
		"unknown format": `tools:
  - name: t2
    executable: t2
    modes:
      regular: ["{input}"]
    formats:
      pdf: "pdf"
`,
		"duplicate of builtin": `tools:
  - name: hkxcmd
    executable: other
    modes:
      regular: ["{input}"]
    formats:
      xml: "xml"
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			reg := NewRegistry()
			if _, err := LoadToolsFromYAML(path, reg); err == nil {
				t.Error("LoadToolsFromYAML accepted a bad definition")
			}
		})
	}
}
