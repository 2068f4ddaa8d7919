// verifier.go - Proof verification capability.
//
// The orchestrator treats verification as an opaque external capability:
// public inputs and a proof blob in, a bare boolean out, no side effects.
// The concrete proving scheme hides behind ProofVerifier so it can be
// swapped without touching ledger logic.

package mixer

import (
	"bytes"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
)

// PublicInputs is the exact public binding of a withdrawal proof.
type PublicInputs struct {
	Root      Digest
	Nullifier Digest
	Recipient Digest // HashAccount of the payout account
	Amount    uint64
}

// ProofVerifier validates a withdrawal proof against its public inputs.
// Implementations must be side-effect free and must report a crash or
// malformed proof as a failed verification, never as success.
type ProofVerifier interface {
	Verify(inputs PublicInputs, proof []byte) bool
}

// Groth16Verifier verifies gnark Groth16 proofs over BN254 for the
// withdrawal circuit.
type Groth16Verifier struct {
	vk groth16.VerifyingKey
}

// NewGroth16Verifier wraps a verifying key produced by SetupOrLoadKeys.
func NewGroth16Verifier(vk groth16.VerifyingKey) *Groth16Verifier {
	return &Groth16Verifier{vk: vk}
}

// Verify rebuilds the public witness from the inputs, unmarshals the proof,
// and runs pairing verification. Any failure along the way, including a
// panic inside gnark, counts as a failed verification.
func (v *Groth16Verifier) Verify(inputs PublicInputs, proof []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	assignment := &WithdrawalCircuit{
		Root:      new(big.Int).SetBytes(inputs.Root[:]),
		Nullifier: new(big.Int).SetBytes(inputs.Nullifier[:]),
		Recipient: new(big.Int).SetBytes(inputs.Recipient[:]),
		Amount:    new(big.Int).SetUint64(inputs.Amount),
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false
	}

	p := groth16.NewProof(ecc.BN254)
	if _, err := p.ReadFrom(bytes.NewReader(proof)); err != nil {
		return false
	}

	return groth16.Verify(p, v.vk, w) == nil
}
