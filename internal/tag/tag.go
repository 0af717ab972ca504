// Package tag implements Ekam's symbolic dependency keys.
//
// A Tag is an opaque 256-bit identity derived from a canonical name such
// as "file:src/foo.cpp" or "c++symbol:std::vector". Two tags compare
// equal iff the digests of their names are equal; the name is kept only
// for diagnostics and plays no part in Equal. Tags are comparable and
// safe to use as map keys.
package tag

import (
	"crypto/sha256"
	"fmt"
)

// Tag is an immutable, comparable 256-bit identity.
//
// Tag identity is hashed with the standard library's crypto/sha256
// rather than a third-party dependency: tag
// identity is a pure digest-of-a-string operation with no framing,
// negotiation, or streaming concerns that would justify a hashing
// library from the corpus, and crypto/sha256 is exactly the primitive
// the corpus itself falls back to for this kind of content addressing.
type Tag struct {
	digest [sha256.Size]byte
	name   string // retained only for diagnostics; not part of equality
}

// FromName builds a Tag from an already-canonical symbolic name, e.g.
// "filetype:.cpp" or "bin:myprog". Callers that derive a tag from a
// filesystem path must canonicalize it first (see FromFile).
func FromName(name string) Tag {
	return Tag{digest: sha256.Sum256([]byte(name)), name: name}
}

// FromFile builds the distinguished "file:<canonical>" tag for a
// project-relative path, canonicalizing it first so that
// "a/./b//c/../d" and "a/b/d" produce identical tags.
func FromFile(path string) Tag {
	return FromName("file:" + Canonicalize(path))
}

// Zero reports whether t is the zero value (no tag constructed).
func (t Tag) Zero() bool {
	return t.name == "" && t.digest == [sha256.Size]byte{}
}

// Equal reports whether two tags have identical digests.
func (t Tag) Equal(other Tag) bool {
	return t.digest == other.digest
}

// Less provides a total, deterministic ordering over tags so that
// callers needing reproducible iteration (trigger firing order, test
// assertions) do not depend on map iteration order.
func (t Tag) Less(other Tag) bool {
	for i := range t.digest {
		if t.digest[i] != other.digest[i] {
			return t.digest[i] < other.digest[i]
		}
	}
	return false
}

// Key returns a value usable as a Go map key, distinct per distinct tag
// name, independent of String()'s debug formatting.
func (t Tag) Key() [sha256.Size]byte {
	return t.digest
}

// Name returns the canonical name the tag was constructed from, for
// logging and error messages. Two tags with colliding digests but
// different retained names is a condition this package cannot detect;
// spec-level uniqueness of 256-bit digests makes that practically
// impossible.
func (t Tag) Name() string {
	return t.name
}

// String implements fmt.Stringer for debug output.
func (t Tag) String() string {
	if t.name != "" {
		return t.name
	}
	return fmt.Sprintf("tag:%x", t.digest[:8])
}
