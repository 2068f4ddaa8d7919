// snapshot.go - JSON persistence of the full mixer state.
//
// The hosting process saves a snapshot after every committed call and
// restores it on startup. The snapshot carries leaf hashes, not
// commitments: restore replays them through the frontier, so the rebuilt
// root always matches the retained ring.

package mixer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type snapshot struct {
	Initialized bool         `json:"initialized"`
	Policy      PolicyConfig `json:"policy"`
	Leaves      []Digest     `json:"leaves"`
	Roots       []rootEntry  `json:"roots"` // oldest to newest
	Nullifiers  []Digest     `json:"nullifiers"`
	Pool        []PoolEntry  `json:"pool"`
}

// SaveToFile writes the complete mixer state as indented JSON,
// overwriting the file if it exists.
func (m *Mixer) SaveToFile(path string) error {
	snap := snapshot{
		Initialized: m.initialized,
		Policy:      m.policy,
		Leaves:      append([]Digest(nil), m.tree.leafHashes...),
		Roots:       m.roots.retained(),
		Nullifiers:  m.spent.all(),
		Pool:        m.pool.Stats(),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// LoadFromFile restores a mixer from a snapshot. The verifier and bank
// capabilities are not serialized and must be supplied again.
func LoadFromFile(path string, verifier ProofVerifier, bank Bank) (*Mixer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	m := New(verifier, bank)
	m.initialized = snap.Initialized
	m.policy = snap.Policy
	for _, leaf := range snap.Leaves {
		if _, _, err := m.tree.insertLeafHash(leaf); err != nil {
			return nil, fmt.Errorf("replaying leaf: %w", err)
		}
	}
	for _, e := range snap.Roots {
		m.roots.Publish(e.Root, time.Unix(e.PublishedAt, 0))
	}
	for _, n := range snap.Nullifiers {
		if err := m.spent.TrySpend(n); err != nil {
			return nil, fmt.Errorf("replaying nullifier: %w", err)
		}
	}
	if len(snap.Pool) > 0 {
		m.pool.restore(snap.Pool)
	}
	return m, nil
}
