package record

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Invocation is one decoded trace-log record.
type Invocation struct {
	// Cwd is the working directory of the intercepted process.
	Cwd string `json:"cwd"`

	// Path is the invoked executable, as recorded (relative or absolute).
	Path string `json:"path"`

	// Args is the argument vector, with the newline escaping undone.
	// Never nil; an argument-less record decodes to an empty slice.
	Args []string `json:"args"`
}

// ParseLine decodes one record line. The trailing newline, if present,
// is stripped first. The line must contain at least two delimiters.
//
// Decoding inherits the encoder's asymmetries: cwd and path were
// written verbatim, literal delimiter sequences inside arguments were
// not escaped, and a pre-existing literal backslash-n is
// indistinguishable from an escaped newline. Records from such inputs
// do not round-trip; see the package documentation.
//
// A record with no arguments and a record whose only argument is the
// empty string encode to the same bytes. ParseLine resolves the
// ambiguity toward the empty argument list.
func ParseLine(line string) (Invocation, error) {
	line = strings.TrimSuffix(line, "\n")

	parts := strings.Split(line, Delimiter)
	if len(parts) < 3 {
		return Invocation{}, fmt.Errorf("malformed record: want at least 2 delimiters, got %d", len(parts)-1)
	}

	inv := Invocation{
		Cwd:  parts[0],
		Path: parts[1],
		Args: []string{},
	}

	rest := parts[2:]
	if len(rest) == 1 && rest[0] == "" {
		return inv, nil
	}

	for _, arg := range rest {
		inv.Args = append(inv.Args, UnescapeArg(arg))
	}
	return inv, nil
}

// Scanner streams invocations out of a trace log, one record per line.
// Lines can be arbitrarily long; the scanner does not impose a record
// size limit. A malformed line stops the scan with an error naming the
// line number rather than being dropped silently.
type Scanner struct {
	r    *bufio.Reader
	line int
	inv  Invocation
	err  error
	done bool
}

// NewScanner returns a Scanner reading records from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Scan advances to the next record. It returns false at end of input or
// on the first error; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}

	line, err := s.r.ReadString('\n')
	if err == io.EOF {
		s.done = true
		if line == "" {
			return false
		}
		// Final record without its terminator, as left by a torn
		// write. Still decoded; the position makes it findable.
	} else if err != nil {
		s.err = fmt.Errorf("reading trace log: %w", err)
		return false
	}

	s.line++
	inv, err := ParseLine(line)
	if err != nil {
		s.err = fmt.Errorf("line %d: %w", s.line, err)
		return false
	}

	s.inv = inv
	return true
}

// Invocation returns the record decoded by the last successful Scan.
func (s *Scanner) Invocation() Invocation {
	return s.inv
}

// Line returns the 1-based line number of the last record.
func (s *Scanner) Line() int {
	return s.line
}

// Err returns the error that stopped the scan, or nil after a clean end
// of input.
func (s *Scanner) Err() error {
	return s.err
}

// ParseAll decodes every record from r in order.
func ParseAll(r io.Reader) ([]Invocation, error) {
	invs := []Invocation{}
	sc := NewScanner(r)
	for sc.Scan() {
		invs = append(invs, sc.Invocation())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}
