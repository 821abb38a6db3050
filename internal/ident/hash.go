package ident

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/roach88/buildtap/internal/record"
)

// DomainInvocation is the domain prefix for invocation identity.
// The version suffix enables future algorithm migration.
const DomainInvocation = "buildtap/invocation/v1"

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null byte prevents boundary
// ambiguity between domain and payload.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InvocationID returns the content-addressed ID of an invocation, the
// lowercase hex SHA-256 of its canonical JSON under DomainInvocation.
func InvocationID(inv record.Invocation) string {
	return hashWithDomain(DomainInvocation, CanonicalJSON(inv))
}

// ShortID returns the 12-character prefix used in human-readable
// listings, or the whole ID when it is already shorter.
func ShortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
