// mixer.go - Contract orchestrator: the four entry points and the
// withdrawal state machine.
//
// The hosting ledger serializes calls, so every entry point runs atomically
// to completion. Each call either commits fully or leaves persistent state
// unchanged, with one deliberate exception: a nullifier burned in step 3 of
// the withdrawal stays burned even if proof verification or settlement
// fails afterwards. An invalid-proof attempt permanently consumes the
// nullifier; that strictness is the policy, not an accident.

package mixer

import (
	"fmt"
	"time"
)

// WithdrawState is a stop on the withdrawal state machine.
type WithdrawState int

const (
	StateReceived WithdrawState = iota
	StateTimingChecked
	StateNullifierChecked
	StateProofVerified
	StateSettled
	StateRejected
)

func (s WithdrawState) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateTimingChecked:
		return "timing_checked"
	case StateNullifierChecked:
		return "nullifier_checked"
	case StateProofVerified:
		return "proof_verified"
	case StateSettled:
		return "settled"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// WithdrawRequest is the public side of a withdrawal.
type WithdrawRequest struct {
	Nullifier    Digest
	Root         Digest
	Recipient    AccountID
	Denomination uint64
	Proof        []byte
}

// WithdrawReceipt reports a settled withdrawal.
type WithdrawReceipt struct {
	Net uint64
	Fee uint64
}

// DepositReceipt reports the accepted deposit's leaf position and the root
// it produced.
type DepositReceipt struct {
	Index LeafIndex
	Root  Digest
}

// Mixer is the single authoritative aggregate: accumulator, root history,
// nullifier set, and pool, composed under the entry points below. All
// components are exclusively owned; nothing mutates them from outside.
type Mixer struct {
	policy PolicyConfig

	tree  *Accumulator
	roots *RootRing
	spent *NullifierSet
	pool  *Pool

	verifier ProofVerifier
	bank     Bank

	// Clock supplies the current time. Tests override it to drive the
	// minimum-delay policy.
	Clock func() time.Time

	initialized bool
}

// New creates an uninitialized mixer with the default denominations. The
// verifier and bank are external capabilities supplied by the host.
func New(verifier ProofVerifier, bank Bank) *Mixer {
	return &Mixer{
		tree:     NewAccumulator(),
		roots:    NewRootRing(RootHistory),
		spent:    NewNullifierSet(),
		pool:     NewPool(DefaultDenominations),
		verifier: verifier,
		bank:     bank,
		Clock:    time.Now,
	}
}

// Init performs the one-time initialization. Fails if already initialized
// or if the fee exceeds 500 basis points.
func (m *Mixer) Init(owner AccountID, feeBasisPoints uint16) error {
	if m.initialized {
		return ErrAlreadyInitialized
	}
	if feeBasisPoints > MaxFeeBasisPoints {
		return ErrFeeTooHigh
	}
	if owner == "" {
		return fmt.Errorf("%w: empty owner account", ErrMalformed)
	}
	m.policy = PolicyConfig{
		Owner:           owner,
		FeeBasisPoints:  feeBasisPoints,
		MinDelaySeconds: DefaultMinDelay,
	}
	m.initialized = true
	return nil
}

// Deposit inserts the commitment into the accumulator, publishes the new
// root, and credits the pool. The attached amount must be exactly one
// supported denomination. Duplicate commitments are structurally harmless
// and accepted; double-spend protection is entirely the nullifier's job.
func (m *Mixer) Deposit(commitment Digest, amount uint64) (*DepositReceipt, error) {
	if !m.initialized {
		return nil, ErrNotInitialized
	}
	if commitment.IsZero() || !commitment.Valid() {
		return nil, fmt.Errorf("%w: bad commitment digest", ErrMalformed)
	}
	if !m.pool.Supported(amount) {
		return nil, ErrInvalidDenomination
	}

	index, root, err := m.tree.Insert(commitment)
	if err != nil {
		return nil, err
	}
	m.roots.Publish(root, m.Clock())
	if err := m.pool.AcceptDeposit(amount); err != nil {
		return nil, err // unreachable after Supported, kept as a guard
	}
	return &DepositReceipt{Index: index, Root: root}, nil
}

// Withdraw runs the fixed-order state machine:
//
//	Received -> TimingChecked -> NullifierChecked -> ProofVerified -> Settled
//
// The order is a correctness requirement. Timing (and root retention) is
// checked before the nullifier spend so a premature, retryable request
// never burns the nullifier; the nullifier is spent before proof
// verification so an observed proof attempt can never be replayed.
func (m *Mixer) Withdraw(req WithdrawRequest) (*WithdrawReceipt, error) {
	if !m.initialized {
		return nil, ErrNotInitialized
	}

	// Received: shape validation, no state touched.
	if err := m.validateWithdraw(req); err != nil {
		return nil, err
	}

	// TimingChecked: the supplied root must be retained and old enough.
	publishedAt, ok := m.roots.Lookup(req.Root)
	if !ok {
		return nil, ErrStaleRoot
	}
	elapsed := m.Clock().Sub(publishedAt)
	if elapsed < time.Duration(m.policy.MinDelaySeconds)*time.Second {
		return nil, ErrTooEarly
	}

	// NullifierChecked: burn the nullifier before verification. From here
	// on every failure leaves it permanently spent.
	if err := m.spent.TrySpend(req.Nullifier); err != nil {
		return nil, err
	}

	// ProofVerified: the verifier is opaque; a crash inside it is a failed
	// verification, never a success.
	inputs := PublicInputs{
		Root:      req.Root,
		Nullifier: req.Nullifier,
		Recipient: HashAccount(req.Recipient),
		Amount:    req.Denomination,
	}
	if !m.verifier.Verify(inputs, req.Proof) {
		return nil, ErrInvalidProof
	}

	// Settled: debit the pool, then pay out.
	net, fee, err := m.pool.SettleWithdrawal(req.Denomination, req.Denomination, m.policy.FeeBasisPoints)
	if err != nil {
		return nil, err
	}
	if err := m.bank.Transfer(req.Recipient, net); err != nil {
		return nil, fmt.Errorf("recipient transfer failed: %w", err)
	}
	if fee > 0 {
		if err := m.bank.Transfer(m.policy.Owner, fee); err != nil {
			return nil, fmt.Errorf("fee transfer failed: %w", err)
		}
	}
	return &WithdrawReceipt{Net: net, Fee: fee}, nil
}

// validateWithdraw rejects requests that fail shape checks before any state
// is read or written.
func (m *Mixer) validateWithdraw(req WithdrawRequest) error {
	switch {
	case req.Nullifier.IsZero() || !req.Nullifier.Valid():
		return fmt.Errorf("%w: bad nullifier digest", ErrMalformed)
	case req.Root.IsZero() || !req.Root.Valid():
		return fmt.Errorf("%w: bad root digest", ErrMalformed)
	case req.Recipient == "":
		return fmt.Errorf("%w: empty recipient", ErrMalformed)
	case len(req.Proof) == 0:
		return fmt.Errorf("%w: empty proof", ErrMalformed)
	case !m.pool.Supported(req.Denomination):
		return fmt.Errorf("%w: unsupported denomination %d", ErrMalformed, req.Denomination)
	}
	return nil
}

// Stats returns a read-only snapshot of all pool entries.
func (m *Mixer) Stats() []PoolEntry {
	return m.pool.Stats()
}

// UpdateFee adjusts the fee, owner-gated and capped at 500 basis points.
// Never retroactive: already-settled withdrawals keep their split.
func (m *Mixer) UpdateFee(caller AccountID, feeBasisPoints uint16) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if caller != m.policy.Owner {
		return ErrNotOwner
	}
	if feeBasisPoints > MaxFeeBasisPoints {
		return ErrFeeTooHigh
	}
	m.policy.FeeBasisPoints = feeBasisPoints
	return nil
}

// UpdateMinDelay adjusts the minimum withdrawal delay, owner-gated.
func (m *Mixer) UpdateMinDelay(caller AccountID, seconds uint64) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if caller != m.policy.Owner {
		return ErrNotOwner
	}
	m.policy.MinDelaySeconds = seconds
	return nil
}

// Policy returns a copy of the current policy.
func (m *Mixer) Policy() PolicyConfig {
	return m.policy
}

// LatestRoot returns the most recently published root, or the empty-tree
// root before the first deposit.
func (m *Mixer) LatestRoot() Digest {
	if root, ok := m.roots.Latest(); ok {
		return root
	}
	return m.tree.Root()
}

// TreeSize returns the number of deposited commitments.
func (m *Mixer) TreeSize() uint64 {
	return m.tree.Size()
}

// ProofPath exposes the accumulator's read-side helper so an off-chain
// prover colocated with the state (tests, demo, daemon) can build paths.
func (m *Mixer) ProofPath(index LeafIndex) ([]Digest, error) {
	return m.tree.Prove(index)
}

// SpentNullifiers returns the number of recorded nullifiers.
func (m *Mixer) SpentNullifiers() int {
	return m.spent.Len()
}
