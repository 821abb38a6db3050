package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalArgs converts an argument vector to JSON TEXT for storage.
// HTML escaping is disabled so stored args stay byte-for-byte greppable:
// the default encoder would rewrite the angle brackets in flags like -DA<B
// as unicode escapes.
func marshalArgs(args []string) (string, error) {
	if args == nil {
		args = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(args); err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalArgs parses stored JSON TEXT back to an argument vector.
// Always returns a non-nil slice.
func unmarshalArgs(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var args []string
	if err := json.Unmarshal([]byte(data), &args); err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	if args == nil {
		args = []string{}
	}
	return args, nil
}
