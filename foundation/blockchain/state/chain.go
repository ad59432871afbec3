package state

import (
	"context"
	"fmt"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/ledgerlab/powchain/foundation/blockchain/signature"
)

// AddTransaction appends the transaction to the open block. When that fills
// the block, the block is mined, balances are settled and a new open block
// is linked to it. The returned transaction carries the status it has once
// the call is done, PENDING when no mining took place. If mining fails the
// transaction is not added to the chain.
func (s *State) AddTransaction(ctx context.Context, tx database.Tx) (database.Tx, error) {
	s.mutate.Lock()
	defer s.mutate.Unlock()

	s.evHandler("state: AddTransaction: started: tx[%s]", tx)
	defer s.evHandler("state: AddTransaction: completed")

	if !tx.FromID.IsAccountID() {
		return database.Tx{}, fmt.Errorf("from account: %w", accounts.ErrInvalidAddress)
	}

	if !tx.ToID.IsAccountID() {
		return database.Tx{}, fmt.Errorf("to account: %w", accounts.ErrInvalidAddress)
	}

	if s.genesis.UniqueMessages && s.hasMessage(tx.Message) {
		return database.Tx{}, fmt.Errorf("%w: %s", ErrDuplicateMessage, tx.Message)
	}

	if err := s.ensureGenesis(ctx); err != nil {
		return database.Tx{}, err
	}

	// Every address a transaction references must be known to the ledger
	// before the block holding it is settled.
	s.accounts.Initialize(tx.FromID)
	s.accounts.Initialize(tx.ToID)

	// A transaction is only resolved by mining.
	tx.Status = database.TxPending

	open := s.openBlock()
	open.Transactions = append(open.Transactions, tx)

	if !open.IsFull() {
		s.evHandler("state: AddTransaction: tx added to open block: trans[%d] capacity[%d]", len(open.Transactions), open.Capacity)
		s.commitOpen(open)
		return tx, nil
	}

	s.evHandler("state: AddTransaction: open block at capacity: mine")

	// On failure the open block is left as it was, so it never holds more
	// transactions than its capacity.
	sealed, err := s.mine(ctx, open)
	if err != nil {
		return tx, fmt.Errorf("mining block: %w", err)
	}

	s.commitSealed(sealed)

	return sealed.Transactions[len(sealed.Transactions)-1], nil
}

// ForceMine mines the open block regardless of how many transactions it
// holds, settles balances and opens a new block.
func (s *State) ForceMine(ctx context.Context) (database.Block, error) {
	s.mutate.Lock()
	defer s.mutate.Unlock()

	s.evHandler("state: ForceMine: started")
	defer s.evHandler("state: ForceMine: completed")

	s.mu.RLock()
	empty := len(s.blocks) == 0
	s.mu.RUnlock()

	if empty {
		return database.Block{}, ErrNoTransactions
	}

	open := s.openBlock()
	if len(open.Transactions) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	sealed, err := s.mine(ctx, open)
	if err != nil {
		return database.Block{}, fmt.Errorf("mining block: %w", err)
	}

	s.commitSealed(sealed)

	return sealed.Clone(), nil
}

// =============================================================================

// ensureGenesis creates the genesis block and the first open block when the
// chain is empty. The caller must hold the mutate lock.
func (s *State) ensureGenesis(ctx context.Context) error {
	s.mu.RLock()
	empty := len(s.blocks) == 0
	s.mu.RUnlock()

	if !empty {
		return nil
	}

	s.evHandler("state: ensureGenesis: create genesis block")

	gen, err := s.mine(ctx, database.NewBlock(signature.ZeroHash, 0))
	if err != nil {
		return fmt.Errorf("mining genesis block: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks = append(s.blocks, gen, database.NewBlock(gen.Hash, s.genesis.TransPerBlock))

	return nil
}

// mine performs the proof of work against the current balances. No lock on
// mu is held so readers keep seeing the chain as it was before mining.
func (s *State) mine(ctx context.Context, open database.Block) (database.Block, error) {
	return database.Mine(ctx, open, s.genesis.Difficulty, s.accounts, s.evHandler)
}

// openBlock returns a copy of the block transactions are being added to.
func (s *State) openBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks[len(s.blocks)-1].Clone()
}

// commitOpen replaces the open block with the specified version.
func (s *State) commitOpen(open database.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := len(s.blocks) - 1
	s.blocks[last] = open
	s.indexBlock(last)
}

// commitSealed replaces the open block with its mined version, applies the
// transfers of every successful transaction and links a new open block.
// Readers never see a sealed block without its settlement.
func (s *State) commitSealed(sealed database.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := len(s.blocks) - 1
	s.blocks[last] = sealed
	s.indexBlock(last)

	s.evHandler("state: commitSealed: settle: blk[%d]: hash[%s]", last, sealed.Hash)

	for _, tx := range sealed.Transactions {
		if tx.Status != database.TxSuccess {
			continue
		}

		if err := s.accounts.Transfer(tx.FromID, tx.ToID, tx.Value); err != nil {
			s.evHandler("state: commitSealed: settle: tx[%s]: WARNING: %s", tx.Message, err)
		}
	}

	s.blocks = append(s.blocks, database.NewBlock(sealed.Hash, s.genesis.TransPerBlock))

	s.evHandler("state: commitSealed: new open block: blk[%d]: prev[%s]", last+1, sealed.Hash)
}

// indexBlock records where each transaction of the block lives. The caller
// must hold the write lock.
func (s *State) indexBlock(i int) {
	for j, tx := range s.blocks[i].Transactions {
		s.messages[tx.Message] = txLocation{block: i, index: j}
	}
}

// hasMessage reports whether a transaction with the message exists.
func (s *State) hasMessage(message string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.messages[message]
	return exists
}
