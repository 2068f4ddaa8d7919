// circuit.go - Withdrawal circuit: the statement a withdrawal proof attests.
//
// Public inputs: {root, nullifier, recipient, amount}. The circuit proves
// knowledge of secrets (k, r) and a leaf position such that
//
//	nullifier == MiMC(amount, k)
//	commitment == MiMC(amount, k, r) is in the tree under root
//
// The recipient is public but otherwise unconstrained: Groth16 verification
// binds it to the proof, so a relayer cannot redirect the payout. The
// amount is the denomination being withdrawn; binding it into both the
// commitment and the nullifier prevents withdrawing a larger denomination
// than was deposited.

package mixer

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/accumulator/merkle"
	"github.com/consensys/gnark/std/hash/mimc"
)

type WithdrawalCircuit struct {
	Root      frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`
	Recipient frontend.Variable `gnark:",public"`
	Amount    frontend.Variable `gnark:",public"`

	K     frontend.Variable
	R     frontend.Variable
	Index frontend.Variable
	Path  [MerkleDepth + 1]frontend.Variable
}

func (c *WithdrawalCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// nullifier == MiMC(amount, k)
	h.Write(c.Amount)
	h.Write(c.K)
	api.AssertIsEqual(c.Nullifier, h.Sum())

	h.Reset()

	// Path[0] is the commitment: MiMC(amount, k, r)
	h.Write(c.Amount)
	h.Write(c.K)
	h.Write(c.R)
	api.AssertIsEqual(c.Path[0], h.Sum())

	h.Reset()

	// The commitment sits in the tree at a private index under the root.
	mp := merkle.MerkleProof{
		RootHash: c.Root,
		Path:     c.Path[:],
	}
	mp.VerifyProof(api, &h, c.Index)

	return nil
}

// CompileWithdrawalCircuit compiles the circuit to an R1CS over BN254.
func CompileWithdrawalCircuit() (constraint.ConstraintSystem, error) {
	var circuit WithdrawalCircuit
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
}
