// Package ident computes content-addressed identity for intercepted
// invocations. The same (cwd, path, args) triple always maps to the
// same ID, which is what lets repeated trace imports deduplicate and
// lets the command graph name nodes stably.
package ident

import (
	"bytes"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/buildtap/internal/record"
)

// CanonicalJSON serializes an invocation as RFC 8785 canonical JSON:
//
//	{"args":[...],"cwd":"...","path":"..."}
//
// Keys appear in UTF-16 code unit order. Strings are NFC normalized, so
// two invocations differing only in Unicode normalization form
// serialize identically. Escaping is minimal per the RFC: only quote,
// backslash, and control characters below U+0020 are escaped; <, >, &,
// U+2028, and U+2029 pass through literally.
//
// The shape is fixed strings-only, so serialization is total.
func CanonicalJSON(inv record.Invocation) []byte {
	var buf bytes.Buffer

	buf.WriteString(`{"args":[`)
	for i, arg := range inv.Args {
		if i > 0 {
			buf.WriteByte(',')
		}
		appendCanonicalString(&buf, arg)
	}
	buf.WriteString(`],"cwd":`)
	appendCanonicalString(&buf, inv.Cwd)
	buf.WriteString(`,"path":`)
	appendCanonicalString(&buf, inv.Path)
	buf.WriteByte('}')

	return buf.Bytes()
}

// appendCanonicalString writes s as a canonical JSON string. The
// shorthand escapes \b \t \n \f \r are used where they exist; the
// remaining control characters become lowercase \u00xx. Multi-byte
// UTF-8 sequences pass through untouched.
func appendCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)

	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf.WriteString(`\"`)
		case c == '\\':
			buf.WriteString(`\\`)
		case c == '\b':
			buf.WriteString(`\b`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\f':
			buf.WriteString(`\f`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c < 0x20:
			fmt.Fprintf(buf, `\u%04x`, c)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}
