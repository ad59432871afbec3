// Package database provides the transaction and block values that make up
// the blockchain, along with the proof of work that seals a block.
package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/ledgerlab/powchain/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together.
type Block struct {
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was opened.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
	Capacity      uint16 `json:"capacity"`        // Number of transactions that seals the block.
	Mined         bool   `json:"mined"`           // Set once the hash solution has been found.
	Hash          string `json:"hash"`            // Empty until the block is mined.
	Transactions  []Tx   `json:"transactions"`
}

// NewBlock constructs an open block that links to the specified hash.
func NewBlock(prevBlockHash string, capacity uint16) Block {
	return Block{
		TimeStamp:     uint64(time.Now().UTC().Unix()),
		PrevBlockHash: prevBlockHash,
		Capacity:      capacity,
	}
}

// CalculateHash returns the hash of the timestamp, transactions, previous
// block hash and nonce. Transaction status is part of the transaction so
// changing a settlement result changes the hash.
func (b Block) CalculateHash() string {
	header := struct {
		TimeStamp     uint64 `json:"timestamp"`
		Transactions  []Tx   `json:"transactions"`
		PrevBlockHash string `json:"prev_block_hash"`
		Nonce         uint64 `json:"nonce"`
	}{
		TimeStamp:     b.TimeStamp,
		Transactions:  b.Transactions,
		PrevBlockHash: b.PrevBlockHash,
		Nonce:         b.Nonce,
	}

	return signature.Hash(header)
}

// IsFull reports whether the block has reached its capacity.
func (b Block) IsFull() bool {
	return len(b.Transactions) >= int(b.Capacity)
}

// Clone returns a copy of the block that shares no memory with the original.
func (b Block) Clone() Block {
	if b.Transactions != nil {
		trans := make([]Tx, len(b.Transactions))
		copy(trans, b.Transactions)
		b.Transactions = trans
	}
	return b
}

// FindTransaction locates a transaction in the block by its message digest.
func (b Block) FindTransaction(message string) (Tx, bool) {
	for _, tx := range b.Transactions {
		if tx.Message == message {
			return tx, true
		}
	}
	return Tx{}, false
}

// ValidateHash checks a mined block's stored hash matches its content and
// solves the puzzle for the specified difficulty.
func (b Block) ValidateHash(difficulty uint16) error {
	hash := b.CalculateHash()
	if b.Hash != hash {
		return fmt.Errorf("block hash does not match content, got %s, exp %s", b.Hash, hash)
	}

	if !isHashSolved(difficulty, hash) {
		return fmt.Errorf("%s invalid block hash for difficulty %d", hash, difficulty)
	}

	return nil
}

// =============================================================================

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint16, hash string) bool {
	hash = strings.TrimPrefix(hash, "0x")

	if len(hash) != 64 || int(difficulty) > len(hash) {
		return false
	}

	return hash[:difficulty] == strings.Repeat("0", int(difficulty))
}
