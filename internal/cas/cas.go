// Package cas provides content-addressed storage for build input snapshots.
// Blobs are stored by their BLAKE3 hash, deduplicating identical inputs
// across snapshots.
package cas

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/zeebo/blake3"
)

// ErrBlobNotFound is returned when no blob with the given digest exists.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidDigest is returned when a digest is not 64 lowercase hex chars.
var ErrInvalidDigest = errors.New("invalid digest format")

var digestPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Store is a content-addressed blob store rooted at a directory.
// Blobs live at <root>/<digest[:2]>/<digest[2:]>.
type Store struct {
	root string
}

// NewStore creates a store at the given root directory, creating it if
// needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Put copies the file at path into the store and returns its digest.
func (s *Store) Put(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.PutBytes(data)
}

// PutBytes stores raw data and returns its digest.
// Storing content that already exists is a no-op.
func (s *Store) PutBytes(data []byte) (string, error) {
	digest := Digest(data)

	blobPath := s.pathForDigest(digest)
	if _, err := os.Stat(blobPath); err == nil {
		// Blob already exists, return digest
		return digest, nil
	}

	shardDir := filepath.Dir(blobPath)
	if err := os.MkdirAll(shardDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create shard directory: %w", err)
	}

	// Write the blob atomically using a temp file
	tmp, err := os.CreateTemp(shardDir, ".blob-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	// Rename to final path (atomic on POSIX)
	if err := os.Rename(tmpPath, blobPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename blob: %w", err)
	}

	return digest, nil
}

// Get retrieves the blob with the given digest.
// Returns ErrBlobNotFound if the blob does not exist and ErrInvalidDigest
// if the digest format is invalid.
func (s *Store) Get(digest string) ([]byte, error) {
	if !validDigest(digest) {
		return nil, ErrInvalidDigest
	}

	data, err := os.ReadFile(s.pathForDigest(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	return data, nil
}

// Stat reports whether a blob with the given digest exists.
func (s *Store) Stat(digest string) bool {
	if !validDigest(digest) {
		return false
	}
	_, err := os.Stat(s.pathForDigest(digest))
	return err == nil
}

// pathForDigest returns the sharded file path for a digest.
func (s *Store) pathForDigest(digest string) string {
	return filepath.Join(s.root, digest[:2], digest[2:])
}

func validDigest(digest string) bool {
	return digestPattern.MatchString(digest)
}

// Digest computes the BLAKE3 hash of data without storing it.
func Digest(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}
