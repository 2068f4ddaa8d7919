// roots.go - Bounded history of published Merkle roots.
//
// A proof is generated against a snapshot of the tree; by the time it is
// submitted the tree may have advanced. Retaining the last RootHistory
// roots keeps such proofs valid. The ring also records when each root was
// published, which drives the minimum-delay policy: the root containing a
// leaf is at least as old as the deposit itself, so checking the supplied
// root's age never links the withdrawal to a specific deposit.

package mixer

import "time"

type rootEntry struct {
	Root        Digest `json:"root"`
	PublishedAt int64  `json:"published_at"` // unix seconds
}

// RootRing is a fixed-capacity circular buffer of recent roots. The oldest
// entry is silently evicted on overwrite.
type RootRing struct {
	entries []rootEntry
	next    int
	size    int
}

// NewRootRing creates an empty ring with the given capacity.
func NewRootRing(capacity int) *RootRing {
	return &RootRing{entries: make([]rootEntry, capacity)}
}

// Publish records a root and its publication time.
func (r *RootRing) Publish(root Digest, at time.Time) {
	r.entries[r.next] = rootEntry{Root: root, PublishedAt: at.Unix()}
	r.next = (r.next + 1) % len(r.entries)
	if r.size < len(r.entries) {
		r.size++
	}
}

// Lookup returns the publication time of a retained root. Roots evicted
// from the ring are not found, however valid they once were.
func (r *RootRing) Lookup(root Digest) (time.Time, bool) {
	// Newest first, so a republished root reports its latest timestamp.
	for i := 1; i <= r.size; i++ {
		e := r.entries[(r.next-i+len(r.entries))%len(r.entries)]
		if e.Root == root {
			return time.Unix(e.PublishedAt, 0), true
		}
	}
	return time.Time{}, false
}

// Latest returns the most recently published root.
func (r *RootRing) Latest() (Digest, bool) {
	if r.size == 0 {
		return Digest{}, false
	}
	return r.entries[(r.next-1+len(r.entries))%len(r.entries)].Root, true
}

// Len returns the number of retained roots.
func (r *RootRing) Len() int {
	return r.size
}

// retained returns the entries oldest to newest, for snapshots.
func (r *RootRing) retained() []rootEntry {
	out := make([]rootEntry, 0, r.size)
	for i := r.size; i >= 1; i-- {
		out = append(out, r.entries[(r.next-i+len(r.entries))%len(r.entries)])
	}
	return out
}
