package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/profile"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Session string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a trace log into the database",
		Long: `Import a trace log into the invocation database.

Each record is classified against the profile, content-addressed, and
inserted. Records already present in the session are skipped, so
importing the same trace twice is a no-op. A malformed line aborts the
whole import; nothing is committed.

Examples:
  buildtap import --trace .buildtap/build.trace
  buildtap import --trace build.trace --db ./build.db --session nightly`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to import under (default: new UUID)")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
	if opts.Trace == "" {
		return NewExitError(ExitCommandError, "no trace log specified (--trace or "+DefaultConfigName+")")
	}

	ctx := context.Background()

	prof, err := profile.Load(opts.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}

	st, err := openStore(opts.RootOptions, true)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	result, err := st.ImportTrace(ctx, opts.Trace, opts.Session, prof)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to import trace", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Imported %d of %d records (%d duplicates skipped)\n",
		result.Imported, result.Lines, result.Skipped)
	fmt.Fprintf(w, "Session: %s\n", result.SessionID)
	return nil
}
