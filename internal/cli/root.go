package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/logging"
)

// DefaultOutputDir is where traces, sessions, and the database land
// unless overridden by a flag or the config file.
const DefaultOutputDir = ".buildtap"

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	Config    string // explicit config file path; "" probes the working directory
	Trace     string // trace log path
	Database  string // invocation database path
	Profile   string // profile overlay path (CUE)
	OutputDir string // directory for session artifacts
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the buildtap CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "buildtap",
		Short: "buildtap - build command interception and analysis",
		Long: `Intercept build tool invocations, record them to an append-only trace
log, and analyze the result: import traces into a queryable database,
emit compile_commands.json, render the command dependency graph, and
snapshot build inputs.

Invoked under any other name (through a wrapper symlink), the binary
records the invocation and execs the real tool instead.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := applyFileConfig(opts, cmd); err != nil {
				return err
			}
			logging.Setup(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to "+DefaultConfigName+" (default: probe working directory)")
	cmd.PersistentFlags().StringVar(&opts.Trace, "trace", "", "trace log path")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the invocation database")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "path to a profile overlay (CUE)")
	cmd.PersistentFlags().StringVar(&opts.OutputDir, "out", DefaultOutputDir, "directory for session artifacts")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewWrapCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewCdbCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// outputDir returns the session artifact directory, never empty.
func (o *RootOptions) outputDir() string {
	if o.OutputDir != "" {
		return o.OutputDir
	}
	return DefaultOutputDir
}

// databasePath resolves the effective database path.
func (o *RootOptions) databasePath() string {
	if o.Database != "" {
		return o.Database
	}
	return filepath.Join(o.outputDir(), "buildtap.db")
}
