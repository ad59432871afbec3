package state

import (
	"fmt"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
)

// QueryBalance returns the balance for the specified account.
func (s *State) QueryBalance(accountID accounts.AccountID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accounts.Balance(accountID)
}

// QueryTransaction locates a transaction on the chain by its message digest.
func (s *State) QueryTransaction(message string) (database.Tx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, exists := s.messages[message]
	if !exists {
		return database.Tx{}, fmt.Errorf("transaction %s: %w", message, ErrNotFound)
	}

	return s.blocks[loc.block].Transactions[loc.index], nil
}

// QueryHeight returns the index of the open block. This is the nonce
// wallets record on the transactions they create.
func (s *State) QueryHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.blocks) == 0 {
		return 0
	}

	return uint64(len(s.blocks) - 1)
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveAccounts returns a copy of every account balance.
func (s *State) RetrieveAccounts() map[accounts.AccountID]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accounts.Copy()
}

// RetrieveBlocks returns a copy of every block in the chain, including the
// open block.
func (s *State) RetrieveBlocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]database.Block, len(s.blocks))
	for i, block := range s.blocks {
		blocks[i] = block.Clone()
	}
	return blocks
}

// RetrieveTransactions returns a copy of every transaction in chain order.
func (s *State) RetrieveTransactions() []database.Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var trans []database.Tx
	for _, block := range s.blocks {
		trans = append(trans, block.Transactions...)
	}
	return trans
}

// RetrieveLatestBlock returns a copy of the most recently mined block.
func (s *State) RetrieveLatestBlock() (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.blocks) - 1; i >= 0; i-- {
		if s.blocks[i].Mined {
			return s.blocks[i].Clone(), nil
		}
	}

	return database.Block{}, fmt.Errorf("latest block: %w", ErrNotFound)
}
