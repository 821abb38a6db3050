//go:build unix

package record

import (
	"os"

	"golang.org/x/sys/unix"
)

// flock takes an exclusive advisory lock on f. The kernel releases it
// when the descriptor is closed, so Append has no separate unlock step.
func flock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}
