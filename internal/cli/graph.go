package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/graph"
	"github.com/roach88/buildtap/internal/ident"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	UsedBy string
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the command dependency graph",
		Long: `Render the producer/consumer graph of recorded invocations.

A command that reads a file produced by an earlier command depends on
it. Text output is Graphviz DOT; --format json emits the adjacency
lists. --used-by answers which later commands consume what one command
produced, transitively.

Examples:
  buildtap graph | dot -Tsvg -o build.svg
  buildtap graph --format json
  buildtap graph --used-by 3f2a91c04d88`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.UsedBy, "used-by", "", "invocation id (or unique prefix): list its transitive consumers")

	return cmd
}

func runGraph(opts *GraphOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	invs, prof, err := loadInvocations(ctx, opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load invocations", err)
	}
	g := graph.Build(invs, prof)

	if opts.UsedBy != "" {
		return graphUsedBy(opts, g, cmd)
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(g.Nodes)
	}
	if err := g.DOT(cmd.OutOrStdout()); err != nil {
		return WrapExitError(ExitCommandError, "failed to render graph", err)
	}
	return nil
}

func graphUsedBy(opts *GraphOptions, g *graph.Graph, cmd *cobra.Command) error {
	node, err := resolveNode(g, opts.UsedBy)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve invocation", err)
	}
	consumers := g.UsedBy(node.ID)

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(consumers)
	}

	w := cmd.OutOrStdout()
	if len(consumers) == 0 {
		fmt.Fprintln(w, "No consumers.")
		return nil
	}
	for _, n := range consumers {
		fmt.Fprintf(w, "[%d] %s %s\n", n.Seq, ident.ShortID(n.ID), n.Tool)
	}
	return nil
}

// resolveNode finds a node by full id or unique prefix, mirroring the
// store's prefix resolution for trace-backed graphs.
func resolveNode(g *graph.Graph, idOrPrefix string) (*graph.Node, error) {
	if node, ok := g.Node(idOrPrefix); ok {
		return node, nil
	}
	var match *graph.Node
	for _, n := range g.Nodes {
		if strings.HasPrefix(n.ID, idOrPrefix) {
			if match != nil {
				return nil, fmt.Errorf("%q matches more than one invocation, use a longer prefix", idOrPrefix)
			}
			match = n
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no invocation matches %q", idOrPrefix)
	}
	return match, nil
}
