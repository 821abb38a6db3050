package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/cdb"
)

// CdbOptions holds flags for the cdb command.
type CdbOptions struct {
	*RootOptions
	Output string
}

// NewCdbCommand creates the cdb command.
func NewCdbCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CdbOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cdb",
		Short: "Emit a compilation database",
		Long: `Emit a Clang-style compile_commands.json from recorded invocations.

Every compiler-classified invocation produces one entry per source
file. Rows come from the database, or directly from a trace log when
--trace is given. The output is the raw artifact; --format does not
apply.

Examples:
  buildtap cdb -o compile_commands.json
  buildtap cdb --trace .buildtap/build.trace`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCdb(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

func runCdb(opts *CdbOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	invs, prof, err := loadInvocations(ctx, opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load invocations", err)
	}
	entries := cdb.Build(invs, prof)

	if opts.Output == "" {
		if err := cdb.Write(cmd.OutOrStdout(), entries); err != nil {
			return WrapExitError(ExitCommandError, "failed to write compilation database", err)
		}
		return nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := cdb.Write(file, entries); err != nil {
		file.Close()
		return WrapExitError(ExitCommandError, "failed to write compilation database", err)
	}
	if err := file.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write compilation database", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", len(entries), opts.Output)
	return nil
}
