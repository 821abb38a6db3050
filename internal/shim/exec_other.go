//go:build !unix

package shim

import "errors"

// execProcess is unsupported where the process image cannot be replaced.
func execProcess(argv0 string, argv []string, envv []string) error {
	return errors.New("tool interception requires a unix platform")
}
