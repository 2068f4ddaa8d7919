// main.go - Shielded pool walkthrough: three depositors, one withdrawal.
//
// This demonstrates the full lifecycle of the mixer against an in-process
// bank:
//   - the pool is initialized with a 1% fee and a shortened delay
//   - three depositors publish commitments for the smallest denomination
//   - one of them proves membership off-chain and withdraws to a fresh
//     account, paying the fee to the pool owner
//   - the pool stats show the aggregate movement without linking the
//     withdrawal to any particular deposit
//
// Usage:
//
//	go run main.go
//
// Keys are generated on first run and cached under keys/.

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"mixer/internal/mixer"
)

func main() {
	log.Println("=== Shielded Pool: deposit/withdraw scenario ===")

	// 1. Compile the withdrawal circuit and generate or load Groth16 keys.
	ccs, err := mixer.CompileWithdrawalCircuit()
	if err != nil {
		log.Printf("ERROR: circuit compilation failed: %v", err)
		return
	}
	if err := os.MkdirAll("keys", 0755); err != nil {
		log.Printf("ERROR: key directory creation failed: %v", err)
		return
	}
	pk, vk, err := mixer.SetupOrLoadKeys(ccs, "keys/withdrawal_pk.bin", "keys/withdrawal_vk.bin")
	if err != nil {
		log.Printf("ERROR: key setup failed: %v", err)
		return
	}
	log.Println("Withdrawal circuit ready.")

	// 2. Initialize the pool. The clock is driven manually so the demo does
	// not have to wait out the withdrawal delay in real time.
	bank := mixer.NewMemoryBank()
	m := mixer.New(mixer.NewGroth16Verifier(vk), bank)
	now := time.Now()
	m.Clock = func() time.Time { return now }

	owner := mixer.AccountID("operator.demo")
	if err := m.Init(owner, 100); err != nil {
		log.Printf("ERROR: initialization failed: %v", err)
		return
	}
	log.Printf("Pool initialized: owner=%s fee=1%% delay=%ds", owner, mixer.DefaultMinDelay)

	// 3. Three depositors each publish a commitment for 1_000_000 units.
	const denomination = 1_000_000
	notes := make([]*mixer.Note, 3)
	receipts := make([]*mixer.DepositReceipt, 3)
	for i := range notes {
		notes[i] = mixer.NewNote(denomination)
		receipts[i], err = m.Deposit(notes[i].Commitment(), denomination)
		if err != nil {
			log.Printf("ERROR: deposit %d failed: %v", i+1, err)
			return
		}
		log.Printf("Deposit %d accepted: leaf=%d root=%s", i+1, receipts[i].Index, receipts[i].Root)
	}

	// 4. The second depositor withdraws after the delay. The proof is built
	// against the latest root, which covers all three leaves.
	now = now.Add(25 * time.Hour)
	root := m.LatestRoot()
	note, receipt := notes[1], receipts[1]

	siblings, err := m.ProofPath(receipt.Index)
	if err != nil {
		log.Printf("ERROR: proof path failed: %v", err)
		return
	}
	log.Println("Generating withdrawal proof...")
	proof, err := mixer.ProveWithdrawal(note, receipt.Index, siblings, root, "recipient.demo", ccs, pk)
	if err != nil {
		log.Printf("ERROR: proving failed: %v", err)
		return
	}

	withdrawal, err := m.Withdraw(mixer.WithdrawRequest{
		Nullifier:    note.Nullifier(),
		Root:         root,
		Recipient:    "recipient.demo",
		Denomination: denomination,
		Proof:        proof,
	})
	if err != nil {
		log.Printf("ERROR: withdrawal failed: %v", err)
		return
	}
	log.Printf("Withdrawal settled: net=%d fee=%d", withdrawal.Net, withdrawal.Fee)

	// 5. Replaying the same nullifier must fail.
	if _, err := m.Withdraw(mixer.WithdrawRequest{
		Nullifier:    note.Nullifier(),
		Root:         root,
		Recipient:    "recipient.demo",
		Denomination: denomination,
		Proof:        proof,
	}); err != nil {
		log.Printf("Replay rejected as expected: %v", err)
	}

	// 6. Final accounting.
	fmt.Println("\n=== Pool stats ===")
	for _, e := range m.Stats() {
		fmt.Printf("denomination %d: deposited=%d withdrawn=%d fees=%d available=%d\n",
			e.Denomination, e.TotalDeposited, e.TotalWithdrawn, e.AccumulatedFees, e.Available())
	}
	fmt.Printf("recipient balance: %d\n", bank.Balance("recipient.demo"))
	fmt.Printf("owner balance:     %d\n", bank.Balance(owner))
	fmt.Printf("tree leaves: %d, spent nullifiers: %d\n", m.TreeSize(), m.SpentNullifiers())
}
