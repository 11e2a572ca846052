package ginternals

import (
	"crypto/sha1" //nolint:gosec // the object format mandates SHA-1
	"encoding/hex"

	"golang.org/x/xerrors"
)

// OidSize is the number of raw bytes making up an Oid
const OidSize = 20

// ErrInvalidOid is returned when a set of bytes/chars doesn't represent
// a valid Oid
var ErrInvalidOid = xerrors.New("invalid oid")

// NullOid is an Oid made of only zeroes. It's used to represent the
// "absence" of an object, for example as the "before" value of a ref
// update that creates a new ref.
var NullOid = Oid{}

// Oid is the fingerprint of an object: the SHA-1 digest of its
// framed representation (kind, size, and content).
type Oid [OidSize]byte

// NewOidFromContent computes the Oid of a slice of bytes that have
// already been framed ("<kind> <size>\0<payload>")
func NewOidFromContent(data []byte) Oid {
	return sha1.Sum(data) //nolint:gosec // the object format mandates SHA-1
}

// NewOidFromHex parses a 40-character hex-encoded Oid
func NewOidFromHex(h string) (Oid, error) {
	var o Oid
	if len(h) != OidSize*2 {
		return o, xerrors.Errorf("%q: %w", h, ErrInvalidOid)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return o, xerrors.Errorf("%q: %w", h, ErrInvalidOid)
	}
	copy(o[:], b)
	return o, nil
}

// NewOidFromChars is like NewOidFromHex but takes a slice of bytes
// holding the hex-encoded representation of the Oid
func NewOidFromChars(h []byte) (Oid, error) {
	return NewOidFromHex(string(h))
}

// NewOidFromStr is an alias of NewOidFromHex
func NewOidFromStr(h string) (Oid, error) {
	return NewOidFromHex(h)
}

// NewOidFromBytes builds an Oid from its raw, 20-byte binary form
func NewOidFromBytes(b []byte) (Oid, error) {
	var o Oid
	if len(b) != OidSize {
		return o, xerrors.Errorf("expected %d bytes, got %d: %w", OidSize, len(b), ErrInvalidOid)
	}
	copy(o[:], b)
	return o, nil
}

// Bytes returns the raw, 20-byte binary representation of the Oid
func (o Oid) Bytes() []byte {
	out := make([]byte, OidSize)
	copy(out, o[:])
	return out
}

// String returns the 40-character hex-encoded representation of the Oid
func (o Oid) String() string {
	return hex.EncodeToString(o[:])
}

// IsZero returns whether the Oid is the null Oid
func (o Oid) IsZero() bool {
	return o == NullOid
}
