package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/record"
)

// WrapOptions holds flags for the wrap command.
type WrapOptions struct {
	*RootOptions
	Flock bool
}

// WrapResult is the JSON payload of a successful wrap.
type WrapResult struct {
	Trace string `json:"trace"`
}

// NewWrapCommand creates the wrap command.
func NewWrapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WrapOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "wrap <path> [args...]",
		Short: "Record one tool invocation",
		Long: `Record a single tool invocation to the trace log without running it.

The trace log comes from --trace or the ` + record.EnvLog + ` environment
variable; having neither is a configuration error. Build scripts that
cannot use PATH interception call this directly, so text mode prints
nothing on success.

Example:
  buildtap wrap --trace build.trace /usr/bin/cc -c main.c -o main.o
  ` + record.EnvLog + `=build.trace buildtap wrap /usr/bin/ld -o app main.o`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wrapInvocation(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Flock, "flock", false, "advisory file lock around the record append")

	return cmd
}

func wrapInvocation(opts *WrapOptions, args []string, cmd *cobra.Command) error {
	cfg, err := loadRecordConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure recording", err)
	}

	rec := record.NewRecorder(cfg)
	if err := rec.Record(args[0], args[1:]); err != nil {
		return WrapExitError(ExitFailure, "failed to record invocation", err)
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(WrapResult{Trace: cfg.LogPath})
	}
	return nil
}

// loadRecordConfig resolves the recording config: an explicit --trace
// wins, the environment otherwise.
func loadRecordConfig(opts *WrapOptions) (record.Config, error) {
	if opts.Trace != "" {
		return record.Config{LogPath: opts.Trace, FileLock: opts.Flock}, nil
	}
	cfg, err := record.LoadConfig(os.LookupEnv)
	if err != nil {
		return record.Config{}, err
	}
	if opts.Flock {
		cfg.FileLock = true
	}
	return cfg, nil
}
