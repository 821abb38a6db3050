//go:build !unix

package record

import "os"

// flock is a no-op where advisory locks are unavailable; appends fall
// back to the baseline O_APPEND guarantee.
func flock(_ *os.File) error {
	return nil
}
