package tag

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash is a 256-bit content digest used for provider change detection.
// NullHash is NULL and is distinct from the digest of any byte
// sequence, including the empty one; it means "content absent", not
// "content is empty". The zero value, Hash{}, is not NULL: IsNull
// reports false for it.
type Hash struct {
	digest [sha256.Size]byte
	isNull bool
}

// NullHash is returned when the content backing a provision is absent
// (for example, an artifact that was pruned before its hash could be
// computed).
var NullHash = Hash{isNull: true}

// HashBytes computes the content hash of b. An empty, non-nil slice
// still yields a well-defined non-null hash distinct from NullHash.
func HashBytes(b []byte) Hash {
	return Hash{digest: sha256.Sum256(b)}
}

// IsNull reports whether h is the distinguished NULL hash.
func (h Hash) IsNull() bool {
	return h.isNull
}

// Equal reports whether two hashes represent identical content. Two
// NULL hashes are equal to each other only by the isNull flag, never by
// comparing zero digests, since a real digest can legitimately be all
// zero bytes in principle.
func (h Hash) Equal(other Hash) bool {
	if h.isNull || other.isNull {
		return h.isNull == other.isNull
	}
	return h.digest == other.digest
}

// String renders the hash as hex for logs; NULL renders as "<null>".
func (h Hash) String() string {
	if h.isNull {
		return "<null>"
	}
	return hex.EncodeToString(h.digest[:])
}
