package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/cas"
	"github.com/roach88/buildtap/internal/profile"
)

// SnapshotOptions holds flags for the snapshot command.
type SnapshotOptions struct {
	*RootOptions
	Root string
}

// ManifestEntry maps one stored file to its content digest.
type ManifestEntry struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// SnapshotResult summarizes a snapshot run.
type SnapshotResult struct {
	Root    string          `json:"root"`
	Entries []ManifestEntry `json:"entries"`
	Stored  int             `json:"stored"`
	Missing int             `json:"missing"`
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot build inputs into a content-addressed store",
		Long: `Copy every distinct source file of compiler-classified invocations
into a content-addressed snapshot store and print the manifest
(digest and path per file).

Inputs that no longer exist on disk are counted as missing, not fatal:
a snapshot taken after a cleanup still captures what remains.

Examples:
  buildtap snapshot
  buildtap snapshot --trace .buildtap/build.trace --root /backup/snap`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Root, "root", "", "snapshot root (default <out>/snapshot)")

	return cmd
}

func runSnapshot(opts *SnapshotOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	invs, prof, err := loadInvocations(ctx, opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load invocations", err)
	}

	root := opts.Root
	if root == "" {
		root = filepath.Join(opts.outputDir(), "snapshot")
	}
	cs, err := cas.NewStore(root)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create snapshot store", err)
	}

	seen := make(map[string]bool)
	entries := []ManifestEntry{}
	missing := 0
	for _, inv := range invs {
		tool, ok := prof.Classify(inv.Path)
		if !ok || tool.Kind != profile.KindCompiler {
			continue
		}
		inputs, _ := tool.CommandIO(inv.Record())
		for _, input := range inputs {
			if seen[input] {
				continue
			}
			seen[input] = true

			digest, err := cs.Put(input)
			if errors.Is(err, fs.ErrNotExist) {
				missing++
				continue
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to store "+input, err)
			}
			entries = append(entries, ManifestEntry{Path: input, Digest: digest})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	result := SnapshotResult{Root: root, Entries: entries, Stored: len(entries), Missing: missing}
	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s\n", e.Digest, e.Path)
	}
	fmt.Fprintf(w, "%d file(s) stored in %s", result.Stored, root)
	if missing > 0 {
		fmt.Fprintf(w, " (%d missing)", missing)
	}
	fmt.Fprintln(w)
	return nil
}
