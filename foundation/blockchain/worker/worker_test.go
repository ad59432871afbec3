package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
	"github.com/ledgerlab/powchain/foundation/blockchain/signature"
	"github.com/ledgerlab/powchain/foundation/blockchain/state"
	"github.com/ledgerlab/powchain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_WorkerSerializesMutations(t *testing.T) {
	bill, err := signature.HexToPrivateKey("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("Should be able to load private key: %s", err)
	}
	billID := accounts.PublicKeyToAccountID(bill.PublicKey)
	jillID := accounts.AccountID("0x0240ee457d69843e6d5a569684861731422623d0bb04cfcec2e0b6ba23843c1dd1")

	st, err := state.New(state.Config{
		Genesis: genesis.Genesis{
			TransPerBlock: 3,
			Difficulty:    2,
			Balances:      map[string]uint64{string(billID): 100},
		},
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	worker.Run(st, func(v string, args ...any) {})

	t.Log("Given the need to run chain mutations on the worker.")
	{
		const g = 5

		var wg sync.WaitGroup
		wg.Add(g)

		for i := 0; i < g; i++ {
			go func() {
				defer wg.Done()

				tx, err := database.NewTx(billID, jillID, 10, st.QueryHeight())
				if err != nil {
					t.Errorf("\t%s\tShould be able to construct a transaction: %s", failed, err)
					return
				}

				if tx, err = tx.Sign(bill); err != nil {
					t.Errorf("\t%s\tShould be able to sign a transaction: %s", failed, err)
					return
				}

				if _, err := st.SubmitWalletTransaction(context.Background(), tx); err != nil {
					t.Errorf("\t%s\tShould be able to submit a transaction: %s", failed, err)
				}
			}()
		}

		wg.Wait()
		t.Logf("\t%s\tShould be able to submit transactions concurrently.", success)

		block, err := st.SubmitForceMining(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to force mine the open block: %s", failed, err)
		}

		if len(block.Transactions) != 2 {
			t.Fatalf("\t%s\tShould mine the two left over transactions, got %d.", failed, len(block.Transactions))
		}
		t.Logf("\t%s\tShould be able to force mine the open block.", success)

		bal, err := st.QueryBalance(billID)
		if err != nil || bal != 50 {
			t.Fatalf("\t%s\tShould settle every transaction, got %d: %v", failed, bal, err)
		}
		t.Logf("\t%s\tShould settle every transaction.", success)

		if !st.IsChainValid() {
			t.Fatalf("\t%s\tShould have a valid chain.", failed)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)

		st.Shutdown()

		if _, err := st.SubmitForceMining(context.Background()); !errors.Is(err, worker.ErrShutdown) {
			t.Fatalf("\t%s\tShould refuse work after shutdown: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse work after shutdown.", success)
	}
}
