package record

import (
	"math"
	"strings"
)

// Delimiter is the fixed two-character field separator of the trace-log
// format. It is never escaped; see the package documentation for the
// ambiguity this accepts.
const Delimiter = "||"

// escapedNewline is the two-character sequence that replaces a newline
// byte inside an argument.
const escapedNewline = `\n`

// EscapeArg returns arg with every newline byte replaced by the
// two-character sequence backslash-n. No other byte is transformed; in
// particular the delimiter passes through untouched. An argument that
// already contains a literal backslash-n is left as-is, which makes
// UnescapeArg a best-effort inverse.
func EscapeArg(arg string) string {
	if !strings.Contains(arg, "\n") {
		return arg
	}

	var b strings.Builder
	b.Grow(2 * len(arg))
	for i := 0; i < len(arg); i++ {
		if arg[i] == '\n' {
			b.WriteString(escapedNewline)
			continue
		}
		b.WriteByte(arg[i])
	}
	return b.String()
}

// UnescapeArg reverses EscapeArg, mapping every backslash-n sequence
// back to a newline byte. Arguments whose original text contained a
// literal backslash-n are indistinguishable from escaped newlines, so
// those do not round-trip.
func UnescapeArg(arg string) string {
	return strings.ReplaceAll(arg, escapedNewline, "\n")
}

// Capacity returns a safe upper bound, in bytes, for the encoded record.
// Each argument can at most double under the escaping transform, so the
// arguments-plus-delimiters portion is bounded by twice the summed
// argument lengths plus two bytes per delimiter. Over-allocation is
// fine; the bound only exists so Encode can size its buffer in one shot.
//
// The only failure is integer overflow of the running total, reported
// as a resource-exhaustion error.
func Capacity(cwd, path string, args []string) (int, error) {
	size := 0
	ok := true

	add := func(n int) {
		if ok {
			size, ok = addCap(size, n)
		}
	}

	add(len(cwd))
	add(len(Delimiter))
	add(len(path))
	add(len(Delimiter))
	add(len("\n"))

	for i, arg := range args {
		// Added twice so 2*len cannot itself overflow.
		add(len(arg))
		add(len(arg))
		if i > 0 {
			add(len(Delimiter))
		}
	}

	if !ok {
		return 0, NewResourceError("record buffer size overflows")
	}
	return size, nil
}

func addCap(a, b int) (int, bool) {
	if a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// Encode serializes one intercepted invocation into a single
// newline-terminated record:
//
//	<cwd>||<path>||<arg1>||...||<argN>\n
//
// Arguments go through EscapeArg; cwd and path are written verbatim.
// With no arguments the record is cwd, delimiter, path, delimiter,
// newline (the trailing field is empty). The whole record is built in
// memory so the appender can persist it with one bounded write.
//
// Encoding is a pure transform; the only error is the capacity overflow
// from Capacity.
func Encode(cwd, path string, args []string) (string, error) {
	size, err := Capacity(cwd, path, args)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(size)

	b.WriteString(cwd)
	b.WriteString(Delimiter)
	b.WriteString(path)
	b.WriteString(Delimiter)

	for i, arg := range args {
		if i > 0 {
			b.WriteString(Delimiter)
		}
		b.WriteString(EscapeArg(arg))
	}

	b.WriteByte('\n')
	return b.String(), nil
}
