package database

import (
	"context"
	"fmt"
	"math"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
)

// Mine resolves every transaction in the block and then performs the work
// to find a nonce that solves the POW puzzle. The block passed in is never
// modified, a sealed copy is returned. Mining an already mined block returns
// it unchanged.
//
// Transactions are validated in block order against the ledger plus the
// transfers already accepted in this block, so an earlier transaction can
// leave a later one without funds. No transfers are applied to the ledger,
// settlement belongs to the owner of the ledger once Mine returns.
func Mine(ctx context.Context, block Block, difficulty uint16, ledger Ledger, ev func(v string, args ...any)) (Block, error) {
	if block.Mined {
		ev("database: Mine: MINING: block already mined: hash[%s]", block.Hash)
		return block, nil
	}

	nb := block.Clone()

	ev("database: Mine: MINING: resolve transactions: trans[%d]", len(nb.Transactions))

	pending := newPendingLedger(ledger)
	for i := range nb.Transactions {
		tx := &nb.Transactions[i]

		if err := tx.Validate(pending); err != nil {
			ev("database: Mine: MINING: tx[%s]: FAILED: %s", tx.Message, err)
			tx.Status = TxFailed
			continue
		}

		// Settlement can't credit an account the ledger doesn't know or
		// one whose balance would wrap.
		if err := pending.canCredit(tx.FromID, tx.ToID, tx.Value); err != nil {
			ev("database: Mine: MINING: tx[%s]: FAILED: %s", tx.Message, err)
			tx.Status = TxFailed
			continue
		}

		pending.transfer(tx.FromID, tx.ToID, tx.Value)
		tx.Status = TxSuccess
		ev("database: Mine: MINING: tx[%s]: SUCCESS", tx.Message)
	}

	if err := nb.performPOW(ctx, difficulty, ev); err != nil {
		return Block{}, err
	}

	nb.Mined = true

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, difficulty uint16, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: difficulty[%d]", difficulty)
	defer ev("database: PerformPOW: MINING: completed")

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Did we get asked to stop trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.CalculateHash()
		if !isHashSolved(difficulty, hash) {
			b.Nonce++
			continue
		}

		b.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.PrevBlockHash, hash)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// =============================================================================

// pendingLedger layers the transfers accepted while resolving a block over
// the real balances without touching them.
type pendingLedger struct {
	ledger  Ledger
	credits map[accounts.AccountID]uint64
	debits  map[accounts.AccountID]uint64
}

func newPendingLedger(ledger Ledger) *pendingLedger {
	return &pendingLedger{
		ledger:  ledger,
		credits: make(map[accounts.AccountID]uint64),
		debits:  make(map[accounts.AccountID]uint64),
	}
}

// Balance implements the Ledger interface.
func (pl *pendingLedger) Balance(accountID accounts.AccountID) (uint64, error) {
	balance, err := pl.ledger.Balance(accountID)
	if err != nil {
		return 0, err
	}

	credits, debits := pl.credits[accountID], pl.debits[accountID]
	if credits >= debits {
		if balance > math.MaxUint64-(credits-debits) {
			return 0, fmt.Errorf("%w: %s", accounts.ErrBalanceOverflow, accountID)
		}
		return balance + (credits - debits), nil
	}

	return balance - (debits - credits), nil
}

// canCredit checks the recipient can receive the value once the transfer
// is settled. A transfer to self leaves the balance unchanged.
func (pl *pendingLedger) canCredit(from accounts.AccountID, to accounts.AccountID, value uint64) error {
	balance, err := pl.Balance(to)
	if err != nil {
		return err
	}

	if from != to && balance > math.MaxUint64-value {
		return fmt.Errorf("%w: %s has %d, receiving %d", accounts.ErrBalanceOverflow, to, balance, value)
	}

	return nil
}

func (pl *pendingLedger) transfer(from accounts.AccountID, to accounts.AccountID, value uint64) {
	pl.debits[from] += value
	pl.credits[to] += value
}
