// pool.go - Per-denomination pool accounting and fee settlement.
//
// Invariant, for every denomination at all times:
//
//	TotalWithdrawn + AccumulatedFees <= TotalDeposited

package mixer

import "sort"

const feeDenominator = 10_000 // basis points

// PoolEntry is the aggregate accounting for one denomination.
type PoolEntry struct {
	Denomination    uint64 `json:"denomination"`
	TotalDeposited  uint64 `json:"total_deposited"`
	TotalWithdrawn  uint64 `json:"total_withdrawn"`
	AccumulatedFees uint64 `json:"accumulated_fees"`
}

// Available returns the undistributed balance.
func (e PoolEntry) Available() uint64 {
	return e.TotalDeposited - e.TotalWithdrawn - e.AccumulatedFees
}

// Pool tracks deposits, withdrawals, and fees per denomination.
type Pool struct {
	entries map[uint64]*PoolEntry
}

// NewPool creates a pool with an entry for each supported denomination.
func NewPool(denominations []uint64) *Pool {
	entries := make(map[uint64]*PoolEntry, len(denominations))
	for _, d := range denominations {
		entries[d] = &PoolEntry{Denomination: d}
	}
	return &Pool{entries: entries}
}

// Supported reports whether the amount is an exact supported denomination.
func (p *Pool) Supported(amount uint64) bool {
	_, ok := p.entries[amount]
	return ok
}

// AcceptDeposit credits a deposit of exactly one denomination.
func (p *Pool) AcceptDeposit(amount uint64) error {
	e, ok := p.entries[amount]
	if !ok {
		return ErrInvalidDenomination
	}
	e.TotalDeposited += amount
	return nil
}

// SettleWithdrawal debits gross from the denomination's pool and splits it
// into the recipient's net amount and the owner's fee. The net amount
// truncates toward zero; the fee bucket absorbs the rounding remainder.
func (p *Pool) SettleWithdrawal(denomination, gross uint64, feeBasisPoints uint16) (net, fee uint64, err error) {
	e, ok := p.entries[denomination]
	if !ok || gross > e.Available() {
		return 0, 0, ErrPoolInsufficient
	}
	net = gross * (feeDenominator - uint64(feeBasisPoints)) / feeDenominator
	fee = gross - net
	e.TotalWithdrawn += net
	e.AccumulatedFees += fee
	return net, fee, nil
}

// Stats returns a read-only snapshot of all entries, smallest
// denomination first.
func (p *Pool) Stats() []PoolEntry {
	out := make([]PoolEntry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denomination < out[j].Denomination })
	return out
}

// restore overwrites the entry set from a snapshot.
func (p *Pool) restore(entries []PoolEntry) {
	p.entries = make(map[uint64]*PoolEntry, len(entries))
	for _, e := range entries {
		copied := e
		p.entries[e.Denomination] = &copied
	}
}
