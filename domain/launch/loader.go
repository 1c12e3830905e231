package launch

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlProfileFile is the YAML structure for a profile definition file.
type yamlProfileFile struct {
	Browser  string        `yaml:"browser"`
	Common   yamlSettings  `yaml:"common"`
	Profiles []yamlProfile `yaml:"profiles"`
}

type yamlSettings struct {
	Prefs map[string]any `yaml:"prefs"`
	Flags []string       `yaml:"flags"`
}

type yamlProfile struct {
	Mode           Mode           `yaml:"mode"`
	Headless       bool           `yaml:"headless"`
	ExplicitBinary bool           `yaml:"explicit_binary"`
	Prefs          map[string]any `yaml:"prefs"`
	Flags          []string       `yaml:"flags"`
}

// Loader handles loading profile definitions from various sources.
type Loader struct {
	registry *Registry
}

// NewLoader creates a new profile loader that populates the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadFromFS loads profile definitions from an embedded or real filesystem.
// It expects YAML files in a "profiles" subdirectory.
func (l *Loader) LoadFromFS(fsys fs.FS) error {
	return l.LoadDir(fsys, "profiles")
}

// LoadDir loads every .yaml file directly inside dir.
func (l *Loader) LoadDir(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read profiles directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		if err := l.loadFile(fsys, path.Join(dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// LoadBytes loads a single profile definition document.
func (l *Loader) LoadBytes(data []byte) error {
	return l.load(data, "<bytes>")
}

func (l *Loader) loadFile(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", name, err)
	}
	return l.load(data, name)
}

func (l *Loader) load(data []byte, source string) error {
	var file yamlProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse profile file %s: %w", source, err)
	}

	if len(file.Profiles) == 0 {
		return fmt.Errorf("profile file %s defines no profiles", source)
	}

	for i := range file.Profiles {
		l.registry.Register(convertYAMLProfile(&file.Common, &file.Profiles[i]))
	}

	return nil
}

// convertYAMLProfile merges the common settings with a per-mode entry.
// Per-mode prefs override common ones; flags are appended without duplicates.
func convertYAMLProfile(common *yamlSettings, yp *yamlProfile) *Definition {
	profile := Profile{
		Mode:     yp.Mode,
		Prefs:    make(map[string]any, len(common.Prefs)+len(yp.Prefs)),
		Headless: yp.Headless,
	}

	for _, prefs := range []map[string]any{common.Prefs, yp.Prefs} {
		for k, v := range prefs {
			profile.Prefs[k] = clonePrefValue(v)
		}
	}

	seen := make(map[string]bool)
	for _, flags := range [][]string{common.Flags, yp.Flags} {
		for _, f := range flags {
			f = normalizeFlag(f)
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			profile.Flags = append(profile.Flags, f)
		}
	}

	profile.StartMaximized = profile.HasFlag("start-maximized")

	return &Definition{
		Profile:        profile,
		ExplicitBinary: yp.ExplicitBinary,
	}
}
