// errors.go - Failure taxonomy for the mixer core.
//
// Every entry point reports failures synchronously through one of these
// sentinel values (possibly wrapped); callers match with errors.Is.

package mixer

import "errors"

// Deposit-side failures.
var (
	// ErrInvalidDenomination rejects a deposit whose attached amount is not
	// one of the supported denominations.
	ErrInvalidDenomination = errors.New("amount is not a supported denomination")

	// ErrCapacityExceeded rejects a deposit once the accumulator's fixed
	// leaf capacity (2^MerkleDepth) is exhausted.
	ErrCapacityExceeded = errors.New("accumulator capacity exceeded")
)

// Withdrawal-side failures, in state-machine order.
var (
	// ErrMalformed rejects a request that fails shape validation before any
	// state is touched.
	ErrMalformed = errors.New("malformed request")

	// ErrStaleRoot rejects a proof built against a root that has been
	// evicted from the retained history.
	ErrStaleRoot = errors.New("root not in retained history")

	// ErrTooEarly rejects a withdrawal before the minimum delay has elapsed.
	// The nullifier is left unspent; the request may be retried later.
	ErrTooEarly = errors.New("minimum delay not elapsed")

	// ErrAlreadySpent rejects a nullifier that was already recorded,
	// whether by a settled withdrawal or a burned failed attempt.
	ErrAlreadySpent = errors.New("nullifier already spent")

	// ErrInvalidProof rejects a withdrawal whose proof does not verify.
	// The nullifier stays burned: once verification has been attempted the
	// nullifier must never be reusable.
	ErrInvalidProof = errors.New("proof verification failed")

	// ErrPoolInsufficient rejects a withdrawal that exceeds the
	// denomination's undistributed balance. The nullifier stays burned.
	ErrPoolInsufficient = errors.New("insufficient pool balance")
)

// Administrative failures.
var (
	ErrNotInitialized     = errors.New("mixer not initialized")
	ErrAlreadyInitialized = errors.New("mixer already initialized")
	ErrFeeTooHigh         = errors.New("fee cannot exceed 500 basis points")
	ErrNotOwner           = errors.New("caller is not the owner")
)
