// Command buildtap intercepts and analyzes build tool invocations.
//
// Invoked as "buildtap" it is a regular CLI. Invoked under any other
// name (through a wrapper symlink named cc, ld, ar, ...) it acts as the
// tool shim: record the invocation, then exec the real tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/buildtap/internal/cli"
	"github.com/roach88/buildtap/internal/shim"
)

func main() {
	if name := filepath.Base(os.Args[0]); name != "buildtap" {
		// Shim mode never returns on success: the process image is
		// replaced by the real tool.
		if err := shim.New().Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "buildtap: %s: %v\n", name, err)
			os.Exit(1)
		}
		return
	}

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
