package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the project config file probed in the working
// directory when --config is not given.
const DefaultConfigName = ".buildtap.yaml"

// FileConfig holds project-level defaults for the global flags. Flags
// set on the command line always win over the file.
type FileConfig struct {
	Trace     string `yaml:"trace,omitempty"`
	Database  string `yaml:"db,omitempty"`
	Profile   string `yaml:"profile,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
}

// LoadFileConfig reads and parses a project config file.
// Unknown keys are rejected so typos surface instead of being ignored.
func LoadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		// An empty config file is valid
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// applyFileConfig fills unset global flags from the project config.
// An explicitly named config file must exist; the probed default may be
// absent.
func applyFileConfig(opts *RootOptions, cmd *cobra.Command) error {
	path := opts.Config
	explicit := path != ""
	if !explicit {
		path = DefaultConfigName
	}

	cfg, err := LoadFileConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	flags := cmd.Root().PersistentFlags()
	if cfg.Trace != "" && !flags.Changed("trace") {
		opts.Trace = cfg.Trace
	}
	if cfg.Database != "" && !flags.Changed("db") {
		opts.Database = cfg.Database
	}
	if cfg.Profile != "" && !flags.Changed("profile") {
		opts.Profile = cfg.Profile
	}
	if cfg.OutputDir != "" && !flags.Changed("out") {
		opts.OutputDir = cfg.OutputDir
	}
	return nil
}
