// Package config holds the converter settings, read from a YAML file and
// overridden by command-line flags.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// FileName is the settings file looked up by paths.Find.
const FileName = "kparser.yml"

// Settings configures a conversion run.
type Settings struct {
	// OutputDir receives <entity>_build.bytes, <entity>_anim.bytes and the
	// packed atlas. Created if absent.
	OutputDir string `yaml:"output_dir"`
	// ResourceFile, if set, is a bbolt file that also receives both
	// outputs keyed by entity name.
	ResourceFile string `yaml:"resource_file"`
	// Jobs is the number of SCML files converted in parallel.
	Jobs   int            `yaml:"jobs"`
	Packer PackerSettings `yaml:"packer"`
}

// PackerSettings selects and configures the texture packer.
type PackerSettings struct {
	// Kind is "builtin" or "exec".
	Kind    string   `yaml:"kind"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	Padding int     `yaml:"padding"`
	MaxSize int     `yaml:"max_size"`
	Scale   float64 `yaml:"scale"`
}

const (
	PackerBuiltin = "builtin"
	PackerExec    = "exec"
)

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		OutputDir: "./output",
		Jobs:      1,
		Packer: PackerSettings{
			Kind:    PackerBuiltin,
			Padding: 2,
			MaxSize: 2048,
			Scale:   1,
		},
	}
}

// Parse reads YAML settings on top of the defaults.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "parsing settings")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads settings from path. An empty path yields the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading settings")
	}
	s, err := Parse(data)
	return s, errors.Wrapf(err, "in %s", path)
}

// Validate checks settings that would otherwise fail deep inside a run.
func (s *Settings) Validate() error {
	if s.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if s.Jobs < 1 {
		return errors.Errorf("jobs must be at least 1, got %d", s.Jobs)
	}
	switch s.Packer.Kind {
	case PackerBuiltin:
		if s.Packer.Scale < 0 {
			return errors.Errorf("packer scale must not be negative, got %g", s.Packer.Scale)
		}
	case PackerExec:
		if s.Packer.Command == "" {
			return errors.New("packer kind exec needs a command")
		}
	default:
		return errors.Errorf("unknown packer kind %q", s.Packer.Kind)
	}
	return nil
}
