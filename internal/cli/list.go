package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/ident"
	"github.com/roach88/buildtap/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Kind    string
	Tool    string
	Session string
	Limit   int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored invocations",
		Long: `List invocations from the database in import order.

The printed id prefix is enough for the show and graph commands.

Examples:
  buildtap list
  buildtap list --kind compiler --limit 20
  buildtap list --tool cc --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter by tool kind (compiler|linker|archiver|assembler|other)")
	cmd.Flags().StringVar(&opts.Tool, "tool", "", "filter by tool basename")
	cmd.Flags().StringVar(&opts.Session, "session", "", "filter by session id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows (0 = no limit)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openStore(opts.RootOptions, false)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	invs, err := st.ListInvocations(ctx, store.Filter{
		Kind:      opts.Kind,
		Tool:      opts.Tool,
		SessionID: opts.Session,
		Limit:     opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list invocations", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(invs)
	}

	w := cmd.OutOrStdout()
	if len(invs) == 0 {
		fmt.Fprintln(w, "No invocations found.")
		return nil
	}
	for _, inv := range invs {
		kind := inv.Kind
		if kind == "" {
			kind = "-"
		}
		fmt.Fprintf(w, "[%d] %s %-9s %s %s\n",
			inv.Seq, ident.ShortID(inv.ID), kind, inv.Tool, strings.Join(inv.Args, " "))
		if opts.Verbose {
			fmt.Fprintf(w, "     cwd: %s\n", inv.Cwd)
			fmt.Fprintf(w, "     id:  %s\n", inv.ID)
		}
	}
	fmt.Fprintf(w, "%d invocation(s)\n", len(invs))
	return nil
}
