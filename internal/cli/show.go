package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored invocation",
		Long: `Show a single invocation by content id.

A unique id prefix (such as the one list prints) is enough.

Example:
  buildtap show 3f2a91c04d88`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	return cmd
}

func runShow(opts *ShowOptions, idOrPrefix string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openStore(opts.RootOptions, false)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	inv, err := st.FindInvocation(ctx, idOrPrefix)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return NewExitError(ExitCommandError, fmt.Sprintf("no invocation matches %q", idOrPrefix))
	case errors.Is(err, store.ErrAmbiguousID):
		return NewExitError(ExitCommandError, fmt.Sprintf("%q matches more than one invocation, use a longer prefix", idOrPrefix))
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to look up invocation", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(inv)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "ID:       %s\n", inv.ID)
	fmt.Fprintf(w, "Session:  %s\n", inv.SessionID)
	fmt.Fprintf(w, "Seq:      %d\n", inv.Seq)
	if inv.Kind != "" {
		fmt.Fprintf(w, "Tool:     %s (%s)\n", inv.Tool, inv.Kind)
	} else {
		fmt.Fprintf(w, "Tool:     %s\n", inv.Tool)
	}
	fmt.Fprintf(w, "Cwd:      %s\n", inv.Cwd)
	fmt.Fprintf(w, "Command:  %s %s\n", inv.Path, strings.Join(inv.Args, " "))
	fmt.Fprintf(w, "Imported: %s (line %d)\n", inv.ImportedAt, inv.Line)
	return nil
}
