package state

import (
	"fmt"

	"github.com/ledgerlab/powchain/foundation/blockchain/database"
)

// IsChainValid walks the chain and checks every mined block still hashes to
// its stored hash and links to the block before it. The open block has no
// hash yet and is skipped. A failure is reported to the event handler.
func (s *State) IsChainValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 1; i < len(s.blocks); i++ {
		if err := s.validateBlock(s.blocks[i], s.blocks[i-1]); err != nil {
			s.evHandler("state: IsChainValid: blk[%d]: INVALID: %s", i, err)
			return false
		}
	}

	return true
}

// validateBlock checks a block against its parent.
func (s *State) validateBlock(block database.Block, parent database.Block) error {
	if block.Hash == "" {
		return nil
	}

	if err := block.ValidateHash(s.genesis.Difficulty); err != nil {
		return err
	}

	if block.PrevBlockHash != parent.Hash {
		return fmt.Errorf("parent block hash doesn't match, got %s, exp %s", block.PrevBlockHash, parent.Hash)
	}

	for _, tx := range block.Transactions {
		if tx.Status != database.TxSuccess {
			continue
		}

		if err := tx.VerifySignature(); err != nil {
			return fmt.Errorf("tx[%s]: %w", tx.Message, err)
		}
	}

	return nil
}
