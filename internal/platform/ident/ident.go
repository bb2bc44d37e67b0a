// Package ident generates the prefix-tagged identifiers used by every
// entity table. The prefix makes an id self-describing in logs and foreign
// references; the remainder is UUIDv4 entropy, so collisions are not a
// practical concern.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// Entity prefixes.
const (
	PrefixReport   = "report"
	PrefixWorklist = "worklist"
	PrefixRadlex   = "radlex"
	PrefixTemplate = "template"
	PrefixClinic   = "clinic"
	PrefixDoctor   = "doctor"
)

// New returns an identifier of the form "<prefix>_<32 hex chars>".
func New(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HasPrefix reports whether id carries the given entity prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}
