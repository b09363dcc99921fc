// Package settings implements loading and saving of the pmconv settings file.
//
// A settings file holds the same options as the convert command's flags so a
// conversion can be repeated without retyping them. It may be written as TOML,
// YAML or JSON, the format is chosen by the file extension.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"
)

// ErrUnsupportedFormat is returned for a settings file with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported settings file format")

const yamlIndent = 2

// Names are the settings file names looked for in a directory, in order of preference.
var Names = []string{"pmconv.toml", "pmconv.yaml", "pmconv.yml", "pmconv.json"}

// Settings are the persisted options of a conversion.
type Settings struct {
	// Variables to interpolate, override those from the environment file
	Vars map[string]string `json:"vars,omitempty" toml:"vars,omitempty" yaml:"vars,omitempty"`

	// Collection files to convert
	Files []string `json:"files,omitempty" toml:"files,omitempty" yaml:"files,omitempty"`

	// Directories to scan for collection files
	Dirs []string `json:"dirs,omitempty" toml:"dirs,omitempty" yaml:"dirs,omitempty"`

	// Formats to convert to
	Formats []string `json:"formats,omitempty" toml:"formats,omitempty" yaml:"formats,omitempty"`

	// Output directory
	Output string `json:"output,omitempty" toml:"output,omitempty" yaml:"output,omitempty"`

	// Environment file
	Env string `json:"env,omitempty" toml:"env,omitempty" yaml:"env,omitempty"`

	// HTTP version of rendered requests
	HTTPVersion string `json:"httpVersion,omitempty" toml:"httpVersion,omitempty" yaml:"httpVersion,omitempty"`

	// Keep the existing contents of the output directory
	Preserve bool `json:"preserve,omitempty" toml:"preserve,omitempty" yaml:"preserve,omitempty"`
}

// Merge returns s overridden by every non-zero field of other. Lists are
// appended without duplicates and variables merged key by key.
func (s Settings) Merge(other Settings) Settings {
	merged := Settings{
		Files:       union(s.Files, other.Files),
		Dirs:        union(s.Dirs, other.Dirs),
		Formats:     union(s.Formats, other.Formats),
		Output:      s.Output,
		Env:         s.Env,
		HTTPVersion: s.HTTPVersion,
		Preserve:    s.Preserve || other.Preserve,
	}

	if len(s.Vars)+len(other.Vars) > 0 {
		merged.Vars = make(map[string]string, len(s.Vars)+len(other.Vars))
		maps.Copy(merged.Vars, s.Vars)
		maps.Copy(merged.Vars, other.Vars)
	}

	if other.Output != "" {
		merged.Output = other.Output
	}

	if other.Env != "" {
		merged.Env = other.Env
	}

	if other.HTTPVersion != "" {
		merged.HTTPVersion = other.HTTPVersion
	}

	return merged
}

// union returns the elements of a followed by those of b not already present.
func union(a, b []string) []string {
	var out []string

	for _, item := range slices.Concat(a, b) {
		if !slices.Contains(out, item) {
			out = append(out, item)
		}
	}

	return out
}

// Find returns the first settings file present in dir.
func Find(dir string) (path string, ok bool) {
	for _, name := range Names {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}

	return "", false
}

// Load reads a settings file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("could not read settings file: %w", err)
	}

	var settings Settings

	switch ext := filepath.Ext(path); ext {
	case ".toml":
		meta, err := toml.Decode(string(data), &settings)
		if err != nil {
			return Settings{}, fmt.Errorf("could not decode TOML settings %s: %w", path, err)
		}

		if undecoded := meta.Undecoded(); len(undecoded) != 0 {
			return Settings{}, fmt.Errorf("unknown keys in settings %s: %v", path, undecoded)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("could not decode YAML settings %s: %w", path, err)
		}
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(&settings); err != nil {
			return Settings{}, fmt.Errorf("could not decode JSON settings %s: %w", path, err)
		}
	default:
		return Settings{}, fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}

	return settings, nil
}

// Save writes settings to path, encoded according to its extension.
func Save(path string, settings Settings) error {
	buf := &bytes.Buffer{}

	switch ext := filepath.Ext(path); ext {
	case ".toml":
		encoder := toml.NewEncoder(buf)
		encoder.Indent = ""

		if err := encoder.Encode(settings); err != nil {
			return fmt.Errorf("could not encode TOML settings: %w", err)
		}
	case ".yaml", ".yml":
		encoder := yaml.NewEncoder(buf)
		encoder.SetIndent(yamlIndent)

		if err := encoder.Encode(settings); err != nil {
			return fmt.Errorf("could not encode YAML settings: %w", err)
		}

		if err := encoder.Close(); err != nil {
			return fmt.Errorf("could not encode YAML settings: %w", err)
		}
	case ".json":
		encoder := json.NewEncoder(buf)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)

		if err := encoder.Encode(settings); err != nil {
			return fmt.Errorf("could not encode JSON settings: %w", err)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write settings file: %w", err)
	}

	return nil
}

// Backup copies the settings file at path next to itself with a timestamp
// suffix, returning the path of the copy.
func Backup(path string, now time.Time) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read settings file: %w", err)
	}

	backup := fmt.Sprintf("%s.bak.%d", path, now.Unix())

	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", fmt.Errorf("could not write settings backup: %w", err)
	}

	return backup, nil
}
