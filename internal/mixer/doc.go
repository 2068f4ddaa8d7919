// Package mixer implements the on-ledger core of a privacy-preserving
// value mixer.
//
// Overview:
//   - Deposits publish a hiding commitment and attach a fixed denomination;
//     commitments are appended to a fixed-depth Merkle accumulator
//   - Withdrawals reveal a one-time nullifier together with a zero-knowledge
//     proof (Groth16) that the nullifier corresponds to some deposited
//     commitment, without revealing which one
//   - A bounded ring of recent roots keeps proofs built against a slightly
//     stale tree valid; spent nullifiers are recorded forever
//
// Security Model:
//   - Uses MiMC over the BN254 scalar field for commitments and nullifiers
//   - Proofs are generated and verified using gnark (Groth16, BN254)
//   - All randomness is generated using crypto/rand
//   - Nullifiers prevent double-withdrawal; the accumulator is append-only
//     and never pruned, so the anonymity set only grows
//
// The Mixer type is the single authoritative aggregate. The hosting ledger
// serializes calls, so the package performs no locking of its own; the
// fixed ordering of the withdrawal steps is a correctness requirement, not
// a concurrency workaround.
package mixer
