// prover.go - Off-chain withdrawal proof generation.
//
// Runs on the depositor's side against a replica of the tree; the ledger
// only ever sees the resulting proof blob and its public inputs.

package mixer

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
)

// ProveWithdrawal builds the witness for the withdrawal circuit and
// generates a serialized Groth16 proof. The siblings come from
// Accumulator.Prove at the note's leaf index; root must be the tree root
// the siblings were computed against.
func ProveWithdrawal(
	note *Note, index LeafIndex, siblings []Digest, root Digest,
	recipient AccountID,
	ccs constraint.ConstraintSystem, pk groth16.ProvingKey,
) ([]byte, error) {
	if len(siblings) != MerkleDepth {
		return nil, fmt.Errorf("expected %d siblings, got %d", MerkleDepth, len(siblings))
	}

	var path [MerkleDepth + 1]frontend.Variable
	commitment := note.Commitment()
	path[0] = new(big.Int).SetBytes(commitment[:])
	for i, s := range siblings {
		path[i+1] = new(big.Int).SetBytes(s[:])
	}

	nullifier := note.Nullifier()
	recipientDigest := HashAccount(recipient)
	assignment := &WithdrawalCircuit{
		Root:      new(big.Int).SetBytes(root[:]),
		Nullifier: new(big.Int).SetBytes(nullifier[:]),
		Recipient: new(big.Int).SetBytes(recipientDigest[:]),
		Amount:    new(big.Int).SetUint64(note.Amount),
		K:         note.K,
		R:         note.R,
		Index:     uint64(index),
		Path:      path,
	}

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("proof marshaling failed: %w", err)
	}
	return buf.Bytes(), nil
}
