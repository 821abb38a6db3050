package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/buildtap/internal/profile"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// loadTestProfile loads the built-in tool profile.
func loadTestProfile(t *testing.T) *profile.Profile {
	t.Helper()
	prof, err := profile.Load("")
	if err != nil {
		t.Fatalf("profile.Load() failed: %v", err)
	}
	return prof
}

// writeTestTrace writes raw trace content to a temp file and returns its path.
func writeTestTrace(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.trace")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write trace: %v", err)
	}
	return path
}
