// bank.go - Value-transfer capability of the hosting ledger.

package mixer

// Bank abstracts the external ledger's value transfer. On a real ledger
// this is the chain's native transfer; the mixer only ever pays out, never
// pulls in (deposits arrive as value attached to the deposit call).
type Bank interface {
	Transfer(to AccountID, amount uint64) error
}

// MemoryBank is an in-process Bank for tests, the demo scenario, and the
// reference daemon.
type MemoryBank struct {
	balances map[AccountID]uint64
}

// NewMemoryBank creates a bank with no balances.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[AccountID]uint64)}
}

// Transfer credits the account.
func (b *MemoryBank) Transfer(to AccountID, amount uint64) error {
	b.balances[to] += amount
	return nil
}

// Balance returns the account's received total.
func (b *MemoryBank) Balance(of AccountID) uint64 {
	return b.balances[of]
}
