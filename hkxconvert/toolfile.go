// hkxconvert/toolfile.go

package hkxconvert

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// toolFile is the on-disk shape of a user-supplied tool definition file.
// Only direct-output tools can be defined this way; the staged and in-place
// strategies need fixed post-run behavior that stays built in.
type toolFile struct {
	Tools []toolDefinition `yaml:"tools"`
}

type toolDefinition struct {
	Name       string              `yaml:"name"`
	Label      string              `yaml:"label"`
	Executable string              `yaml:"executable"`
	Extensions []string            `yaml:"extensions"`
	Modes      map[string][]string `yaml:"modes"`
	Formats    map[string]string   `yaml:"formats"`
}

// LoadToolsFromYAML reads additional converter definitions and registers
// them. Adding a tool this way is a pure data change; the orchestrator and
// both front-ends pick it up from the registry.
func LoadToolsFromYAML(path string, reg *Registry) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read tool file %s: %w", path, err)
	}

	var file toolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse tool file %s: %w", path, err)
	}

	for _, def := range file.Tools {
		spec, err := def.toSpec()
		if err != nil {
			return 0, fmt.Errorf("invalid tool %q in %s: %w", def.Name, path, err)
		}
		if err := reg.Register(spec); err != nil {
			return 0, fmt.Errorf("failed to register tool from %s: %w", path, err)
		}
	}
	return len(file.Tools), nil
}

func (d toolDefinition) toSpec() (*ToolSpec, error) {
	spec := &ToolSpec{
		Kind:            ToolKind(d.Name),
		Label:           d.Label,
		Executable:      d.Executable,
		InputExtensions: d.Extensions,
		ModeArgs:        make(map[Mode][]string, len(d.Modes)),
		Formats:         make(map[Format]string, len(d.Formats)),
	}
	if spec.Label == "" {
		spec.Label = d.Name
	}

	for name, args := range d.Modes {
		mode, err := ParseMode(name)
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("mode %q has no arguments", name)
		}
		spec.ModeArgs[mode] = args
	}

	for name, token := range d.Formats {
		format, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		spec.Formats[format] = token
	}

	return spec, nil
}
