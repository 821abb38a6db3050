package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the invocation database",
		Long: `Summarize the invocation database: row and distinct-command totals,
session count, and per-kind and per-tool breakdowns.

Examples:
  buildtap stats
  buildtap stats --db ./build.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openStore(opts.RootOptions, false)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	stats, err := st.ReadStats(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read stats", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(stats)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Invocations: %d\n", stats.Invocations)
	fmt.Fprintf(w, "Commands:    %d\n", stats.Commands)
	fmt.Fprintf(w, "Sessions:    %d\n", stats.Sessions)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== By Kind ===")
	printCounts(w, stats.ByKind)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== By Tool ===")
	printCounts(w, stats.ByTool)
	return nil
}

// printCounts renders a count map with sorted keys so output is
// deterministic.
func printCounts(w io.Writer, counts map[string]int64) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label := k
		if label == "" {
			label = "(unclassified)"
		}
		fmt.Fprintf(w, "  %-14s %d\n", label, counts[k])
	}
}
