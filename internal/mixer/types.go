// types.go - Shared types and protocol constants for the mixer core.

package mixer

import (
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Protocol constants.
const (
	// MerkleDepth is the fixed depth of the commitment accumulator.
	// Capacity is 2^MerkleDepth leaves.
	MerkleDepth = 20

	// RootHistory is the number of recent roots retained for withdrawal
	// proofs built against a slightly stale tree.
	RootHistory = 50

	// MaxFeeBasisPoints caps the withdrawal fee at 5%.
	MaxFeeBasisPoints = 500

	// DefaultMinDelay is the default minimum time between a root's
	// publication and a withdrawal proved against it, in seconds.
	DefaultMinDelay = 24 * 3600

	// DigestSize is the byte length of all protocol digests.
	DigestSize = 32
)

// DefaultDenominations are the supported deposit amounts in micro-units.
var DefaultDenominations = []uint64{1_000_000, 10_000_000, 100_000_000}

// Digest is a BN254 scalar field element in canonical big-endian form.
// Commitments, nullifiers, and Merkle roots are all digests.
type Digest [DigestSize]byte

// IsZero reports whether the digest is all zero bytes.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Valid reports whether the digest is the canonical encoding of a field
// element. Non-canonical digests are rejected as malformed before any
// hashing or verification is attempted.
func (d Digest) Valid() bool {
	var e fr.Element
	return e.SetBytesCanonical(d[:]) == nil
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// DigestFromHex parses a hex-encoded digest, enforcing exact length.
func DigestFromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest hex: %w", err)
	}
	if len(b) != DigestSize {
		return d, fmt.Errorf("invalid digest length: got %d, want %d", len(b), DigestSize)
	}
	copy(d[:], b)
	return d, nil
}

// MarshalText implements encoding.TextMarshaler so digests serialize as hex
// in JSON snapshots.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(b []byte) error {
	parsed, err := DigestFromHex(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AccountID identifies an account on the hosting ledger.
type AccountID string

// LeafIndex is the position assigned to a commitment at insertion time.
// Monotonically increasing, never reused.
type LeafIndex uint64

// PolicyConfig is the owner-gated policy set at initialization.
type PolicyConfig struct {
	Owner           AccountID `json:"owner"`
	FeeBasisPoints  uint16    `json:"fee_basis_points"`
	MinDelaySeconds uint64    `json:"min_delay_seconds"`
}
