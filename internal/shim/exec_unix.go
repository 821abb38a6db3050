//go:build unix

package shim

import "golang.org/x/sys/unix"

// execProcess replaces the current process image with argv0.
func execProcess(argv0 string, argv []string, envv []string) error {
	return unix.Exec(argv0, argv, envv)
}
