// crypto.go - Cryptographic primitives for the mixer core.
//
// Implements MiMC-based commitments and nullifiers over the BN254 scalar
// field, plus secure randomness. Derivations must stay in lockstep with the
// in-circuit constraints in circuit.go.

package mixer

import (
	"crypto/sha256"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// mimcSum hashes a sequence of field elements with MiMC. Inputs are reduced
// into fr before hashing so the native digest matches the in-circuit one.
func mimcSum(inputs ...*big.Int) Digest {
	h := mimcNative.NewMiMC()
	for _, in := range inputs {
		var e fr.Element
		e.SetBigInt(in)
		b := e.Bytes()
		h.Write(b[:])
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Commitment derives the public deposit digest from the note secrets:
// cm = MiMC(amount, k, r).
func Commitment(amount uint64, k, r *big.Int) Digest {
	return mimcSum(new(big.Int).SetUint64(amount), k, r)
}

// NullifierDigest derives the one-time spend tag: nf = MiMC(amount, k).
// The derivation omits r, so revealing the nullifier discloses neither the
// commitment nor the secrets.
func NullifierDigest(amount uint64, k *big.Int) Digest {
	return mimcSum(new(big.Int).SetUint64(amount), k)
}

// hashNodes combines two tree nodes: MiMC(left, right).
func hashNodes(left, right Digest) Digest {
	return mimcSum(new(big.Int).SetBytes(left[:]), new(big.Int).SetBytes(right[:]))
}

// hashLeaf maps a commitment to its leaf node, matching the gnark Merkle
// gadget which hashes the first path element once.
func hashLeaf(commitment Digest) Digest {
	return mimcSum(new(big.Int).SetBytes(commitment[:]))
}

// HashAccount maps an account id into the scalar field so it can ride along
// as a public input, binding the recipient to the proof.
func HashAccount(account AccountID) Digest {
	sum := sha256.Sum256([]byte(account))
	v := new(big.Int).SetBytes(sum[:])
	v.Mod(v, fr.Modulus())
	var e fr.Element
	e.SetBigInt(v)
	return Digest(e.Bytes())
}

// randomFieldElement draws a uniformly random scalar using crypto/rand.
func randomFieldElement() *big.Int {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return e.BigInt(new(big.Int))
}

// zeroHashes precomputes the empty-subtree digest for every level:
// zero[0] is the empty leaf node, zero[i+1] = MiMC(zero[i], zero[i]).
func zeroHashes(depth int) []Digest {
	zeros := make([]Digest, depth+1)
	zeros[0] = hashLeaf(Digest{})
	for i := 1; i <= depth; i++ {
		zeros[i] = hashNodes(zeros[i-1], zeros[i-1])
	}
	return zeros
}
