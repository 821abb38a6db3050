package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/buildtap/internal/profile"
	"github.com/roach88/buildtap/internal/record"
	"github.com/roach88/buildtap/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Import bool
	Flock  bool
}

// RunResult is the session summary reported after a supervised build.
type RunResult struct {
	SessionID  string              `json:"session_id"`
	Trace      string              `json:"trace"`
	Command    []string            `json:"command"`
	StartedAt  string              `json:"started_at"`
	FinishedAt string              `json:"finished_at"`
	ExitCode   int                 `json:"exit_code"`
	Imported   *store.ImportResult `json:"imported,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a build under interception",
		Long: `Run a build command with tool interception enabled.

A wrapper directory shadowing the profile's tool names is prepended to
the child PATH, so every intercepted tool call is appended to the
session trace log before the real tool runs. The build's exit code is
propagated, and a session summary lands next to the trace.

Example:
  buildtap run -- make -j8
  buildtap run --import -- ./build.sh`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Import, "import", false, "import the trace into the database afterwards")
	cmd.Flags().BoolVar(&opts.Flock, "flock", false, "advisory file lock around each record append")

	return cmd
}

func runBuild(opts *RunOptions, args []string, cmd *cobra.Command) error {
	prof, err := profile.Load(opts.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}

	sessionID := uuid.NewString()
	outDir := opts.outputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create output directory", err)
	}

	tracePath := opts.Trace
	if tracePath == "" {
		tracePath = filepath.Join(outDir, sessionID+".trace")
	}
	// Intercepted tools run in arbitrary working directories, so the
	// trace path handed to them must be absolute.
	absTrace, err := filepath.Abs(tracePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve trace path", err)
	}

	wrapperDir, err := installWrappers(outDir, sessionID, prof.WrapperNames())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to install tool wrappers", err)
	}
	defer os.RemoveAll(wrapperDir)

	// Setup signal handling so an interrupted build still gets its
	// session summary written
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping build", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	child := exec.CommandContext(ctx, args[0], args[1:]...)
	child.Stdin = cmd.InOrStdin()
	child.Stdout = cmd.OutOrStdout()
	child.Stderr = cmd.ErrOrStderr()
	child.Env = childEnv(wrapperDir, absTrace, opts.Flock)

	slog.Info("build starting", "session", sessionID, "trace", absTrace, "command", args[0])
	startedAt := time.Now().UTC()
	runErr := child.Run()
	finishedAt := time.Now().UTC()

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return WrapExitError(ExitCommandError, "failed to start build command", runErr)
		}
		exitCode = exitErr.ExitCode()
	}
	slog.Info("build finished", "session", sessionID, "exit_code", exitCode)

	result := RunResult{
		SessionID:  sessionID,
		Trace:      absTrace,
		Command:    args,
		StartedAt:  startedAt.Format(time.RFC3339),
		FinishedAt: finishedAt.Format(time.RFC3339),
		ExitCode:   exitCode,
	}

	if err := writeSessionFile(outDir, sessionID, result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write session file", err)
	}

	// A failed build still gets its partial trace imported; the trace
	// is what tells you how far it got.
	if opts.Import {
		imported, err := importSession(parentCtx, opts.RootOptions, absTrace, sessionID, prof)
		switch {
		case err != nil && exitCode != 0:
			slog.Error("trace import failed", "error", err)
		case err != nil:
			return WrapExitError(ExitCommandError, "failed to import trace", err)
		default:
			result.Imported = &imported
		}
	}

	if exitCode != 0 {
		message := fmt.Sprintf("build command exited with status %d", exitCode)
		_ = newFormatter(opts.RootOptions, cmd).Error("build_failed", message, result)
		return &ExitError{Code: exitCode, Message: message}
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Session: %s\n", sessionID)
	fmt.Fprintf(w, "Trace:   %s\n", absTrace)
	if result.Imported != nil {
		fmt.Fprintf(w, "Imported %d of %d records (%d duplicates skipped)\n",
			result.Imported.Imported, result.Imported.Lines, result.Imported.Skipped)
	}
	return nil
}

// installWrappers populates a session-scoped directory with symlinks
// named after the profile's tools, all pointing at this binary. The
// shim recognizes which tool it shadows through argv[0].
func installWrappers(outDir, sessionID string, names []string) (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate own binary: %w", err)
	}

	dir := filepath.Join(outDir, "wrappers", sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	for _, name := range names {
		if err := os.Symlink(self, filepath.Join(dir, name)); err != nil {
			return "", fmt.Errorf("link %s: %w", name, err)
		}
	}
	return dir, nil
}

// childEnv builds the build command's environment: wrapper dir first on
// PATH, recording variables set, everything else inherited.
func childEnv(wrapperDir, tracePath string, flock bool) []string {
	env := []string{}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PATH=") ||
			strings.HasPrefix(kv, record.EnvLog+"=") ||
			strings.HasPrefix(kv, record.EnvFlock+"=") {
			continue
		}
		env = append(env, kv)
	}
	env = append(env, "PATH="+wrapperDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	env = append(env, record.EnvLog+"="+tracePath)
	if flock {
		env = append(env, record.EnvFlock+"=1")
	}
	return env
}

// writeSessionFile persists the session summary next to the trace.
func writeSessionFile(outDir, sessionID string, result RunResult) error {
	f, err := os.Create(filepath.Join(outDir, sessionID+".json"))
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(f)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// importSession imports the session trace. A build that ran no
// intercepted tools leaves no trace file; the session is then
// registered with zero rows instead of failing.
func importSession(ctx context.Context, opts *RootOptions, tracePath, sessionID string, prof *profile.Profile) (store.ImportResult, error) {
	st, err := openStore(opts, true)
	if err != nil {
		return store.ImportResult{}, err
	}
	defer st.Close()

	if _, err := os.Stat(tracePath); os.IsNotExist(err) {
		sess := store.Session{ID: sessionID, TracePath: tracePath}
		if err := st.RegisterSession(ctx, sess); err != nil {
			return store.ImportResult{}, err
		}
		return store.ImportResult{SessionID: sessionID}, nil
	}
	return st.ImportTrace(ctx, tracePath, sessionID, prof)
}
