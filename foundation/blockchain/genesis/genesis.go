// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date           time.Time         `json:"date"`
	ChainID        uint16            `json:"chain_id"`        // The chain id represents an unique id for this running instance.
	TransPerBlock  uint16            `json:"trans_per_block"` // The number of transactions that seals a block.
	Difficulty     uint16            `json:"difficulty"`      // Number of leading hex zeros a block hash needs.
	UniqueMessages bool              `json:"unique_messages"` // Reject transactions whose message digest is already on the chain.
	Balances       map[string]uint64 `json:"balances"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if genesis.TransPerBlock == 0 {
		return Genesis{}, fmt.Errorf("genesis trans_per_block must be at least 1")
	}

	return genesis, nil
}

// Save writes the genesis file to the specified path.
func Save(path string, genesis Genesis) error {
	content, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("writing genesis: %w", err)
	}

	return nil
}
