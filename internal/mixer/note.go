// note.go - Depositor-side note material.
//
// A Note holds the secrets behind one deposit. It never touches the ledger:
// only the commitment is published at deposit time and only the nullifier
// at withdrawal time.

package mixer

import "math/big"

// Note is the private material for a single deposit of a fixed
// denomination.
type Note struct {
	Amount uint64   `json:"amount"`
	K      *big.Int `json:"k"` // spending secret, bound into commitment and nullifier
	R      *big.Int `json:"r"` // blinding randomness, bound into the commitment only
}

// NewNote creates a note for the given denomination with fresh randomness.
func NewNote(amount uint64) *Note {
	return &Note{
		Amount: amount,
		K:      randomFieldElement(),
		R:      randomFieldElement(),
	}
}

// Commitment returns the digest published at deposit time.
func (n *Note) Commitment() Digest {
	return Commitment(n.Amount, n.K, n.R)
}

// Nullifier returns the one-time digest revealed at withdrawal time.
func (n *Note) Nullifier() Digest {
	return NullifierDigest(n.Amount, n.K)
}
