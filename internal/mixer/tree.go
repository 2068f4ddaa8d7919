// tree.go - Append-only Merkle accumulator for deposited commitments.
//
// The tree has a fixed depth; only the O(depth) frontier is updated per
// insertion, so the per-deposit cost is independent of the tree size.
// Leaves are never deleted: pruning would shrink the anonymity set.

package mixer

import "fmt"

// Accumulator is the fixed-depth commitment tree. Leaf nodes are
// MiMC(commitment); empty positions hold the precomputed zero hashes.
type Accumulator struct {
	depth      int
	frontier   []Digest // rightmost filled node per level, frontier[depth] is the root
	zeros      []Digest
	leafHashes []Digest // retained for off-chain proof generation
}

// NewAccumulator creates an empty accumulator of depth MerkleDepth.
func NewAccumulator() *Accumulator {
	zeros := zeroHashes(MerkleDepth)
	frontier := make([]Digest, MerkleDepth+1)
	copy(frontier, zeros)
	return &Accumulator{
		depth:    MerkleDepth,
		frontier: frontier,
		zeros:    zeros,
	}
}

// Capacity returns the fixed leaf capacity, 2^depth.
func (a *Accumulator) Capacity() uint64 {
	return 1 << uint(a.depth)
}

// Size returns the number of inserted leaves.
func (a *Accumulator) Size() uint64 {
	return uint64(len(a.leafHashes))
}

// Root returns the current root digest.
func (a *Accumulator) Root() Digest {
	return a.frontier[a.depth]
}

// Insert appends the commitment at the next free index and returns the
// assigned index together with the new root. Only the sibling path up to
// the root is recomputed. Fails with ErrCapacityExceeded when full.
func (a *Accumulator) Insert(commitment Digest) (LeafIndex, Digest, error) {
	return a.insertLeafHash(hashLeaf(commitment))
}

// insertLeafHash appends an already-hashed leaf node. Used by Insert and by
// snapshot restore, which replays retained leaf hashes.
func (a *Accumulator) insertLeafHash(leaf Digest) (LeafIndex, Digest, error) {
	index := uint64(len(a.leafHashes))
	if index >= a.Capacity() {
		return 0, Digest{}, ErrCapacityExceeded
	}
	a.leafHashes = append(a.leafHashes, leaf)

	cur := leaf
	idx := index
	for i := 0; i < a.depth; i++ {
		if idx&1 == 0 {
			a.frontier[i] = cur
			cur = hashNodes(cur, a.zeros[i])
		} else {
			cur = hashNodes(a.frontier[i], cur)
		}
		idx >>= 1
	}
	a.frontier[a.depth] = cur
	return LeafIndex(index), cur, nil
}

// Prove returns the sibling hashes for the leaf at index, bottom to top.
// This is a read-side helper for the off-chain prover and is never invoked
// on-ledger; recomputing levels from the retained leaf hashes is O(n) but
// costs nothing in the metered environment.
func (a *Accumulator) Prove(index LeafIndex) ([]Digest, error) {
	if uint64(index) >= a.Size() {
		return nil, fmt.Errorf("leaf index %d out of range (size %d)", index, a.Size())
	}
	siblings := make([]Digest, a.depth)
	level := make([]Digest, len(a.leafHashes))
	copy(level, a.leafHashes)
	idx := int(index)
	for i := 0; i < a.depth; i++ {
		if len(level)%2 == 1 {
			level = append(level, a.zeros[i])
		}
		if idx&1 == 0 {
			siblings[i] = level[idx+1]
		} else {
			siblings[i] = level[idx-1]
		}
		next := make([]Digest, len(level)/2)
		for j := 0; j < len(level); j += 2 {
			next[j/2] = hashNodes(level[j], level[j+1])
		}
		level = next
		idx >>= 1
	}
	return siblings, nil
}

// VerifyPath rehashes bottom-up and compares against root. Root retention
// is not checked here; the orchestrator consults the root ring first.
func (a *Accumulator) VerifyPath(root, commitment Digest, index LeafIndex, siblings []Digest) bool {
	if len(siblings) != a.depth {
		return false
	}
	cur := hashLeaf(commitment)
	idx := uint64(index)
	for i := 0; i < a.depth; i++ {
		if idx&1 == 0 {
			cur = hashNodes(cur, siblings[i])
		} else {
			cur = hashNodes(siblings[i], cur)
		}
		idx >>= 1
	}
	return cur == root
}
