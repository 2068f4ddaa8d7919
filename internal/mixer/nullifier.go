// nullifier.go - Spent-nullifier set, the sole defense against double
// withdrawal. Insert-only: there is deliberately no removal operation.

package mixer

// NullifierSet records every nullifier ever spent or burned.
type NullifierSet struct {
	spent map[Digest]struct{}
}

// NewNullifierSet creates an empty set.
func NewNullifierSet() *NullifierSet {
	return &NullifierSet{spent: make(map[Digest]struct{})}
}

// TrySpend atomically checks and inserts the nullifier. Returns
// ErrAlreadySpent if it was ever recorded before.
func (s *NullifierSet) TrySpend(n Digest) error {
	if _, ok := s.spent[n]; ok {
		return ErrAlreadySpent
	}
	s.spent[n] = struct{}{}
	return nil
}

// Contains reports whether the nullifier was ever spent.
func (s *NullifierSet) Contains(n Digest) bool {
	_, ok := s.spent[n]
	return ok
}

// Len returns the number of recorded nullifiers.
func (s *NullifierSet) Len() int {
	return len(s.spent)
}

// all returns the recorded nullifiers in unspecified order, for snapshots.
func (s *NullifierSet) all() []Digest {
	out := make([]Digest, 0, len(s.spent))
	for n := range s.spent {
		out = append(out, n)
	}
	return out
}
