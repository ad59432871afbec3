// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
)

// Set of error variables for chain processing.
var (
	ErrNoTransactions   = errors.New("no transactions in open block")
	ErrDuplicateMessage = errors.New("transaction message already on chain")
	ErrNotFound         = errors.New("not found")
)

// maxDifficulty is the number of hex characters in a block hash.
const maxDifficulty = 64

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the chain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for running chain mutations off the caller's
// goroutine.
type Worker interface {
	Shutdown()
	SubmitTransaction(ctx context.Context, tx database.Tx) (database.Tx, error)
	SignalForceMining(ctx context.Context) (database.Block, error)
}

// =============================================================================

// Config represents the configuration required to start the chain.
type Config struct {
	Genesis   genesis.Genesis
	EvHandler EventHandler
}

// txLocation identifies a transaction by block index and position.
type txLocation struct {
	block int
	index int
}

// State manages the blockchain and the balances it produces.
type State struct {
	evHandler EventHandler
	genesis   genesis.Genesis

	// mutate is held for the whole of a mutation, mining included, so only
	// one mutation is ever in flight. mu guards the fields below it and is
	// only write locked to commit the result of a mutation.
	mutate   sync.Mutex
	mu       sync.RWMutex
	blocks   []database.Block
	messages map[string]txLocation
	accounts *accounts.Accounts

	Worker Worker
}

// New constructs a new blockchain for data management. The chain starts
// empty, the genesis block is created with the first transaction.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Genesis.TransPerBlock == 0 {
		return nil, errors.New("genesis trans_per_block must be at least 1")
	}

	if cfg.Genesis.Difficulty > maxDifficulty {
		return nil, fmt.Errorf("genesis difficulty %d is larger than %d", cfg.Genesis.Difficulty, maxDifficulty)
	}

	// Create a new accounts value to manage accounts who transact on
	// the blockchain and apply the genesis information.
	accts, err := accounts.New(cfg.Genesis)
	if err != nil {
		return nil, err
	}

	state := State{
		evHandler: ev,
		genesis:   cfg.Genesis,
		messages:  make(map[string]txLocation),
		accounts:  accts,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the chain down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// SubmitWalletTransaction accepts a transaction from a wallet. When a worker
// is registered the mutation runs on the worker's goroutine.
func (s *State) SubmitWalletTransaction(ctx context.Context, tx database.Tx) (database.Tx, error) {
	if s.Worker == nil {
		return s.AddTransaction(ctx, tx)
	}

	return s.Worker.SubmitTransaction(ctx, tx)
}

// SubmitForceMining seals the open block even if it isn't full. When a
// worker is registered the mutation runs on the worker's goroutine.
func (s *State) SubmitForceMining(ctx context.Context) (database.Block, error) {
	if s.Worker == nil {
		return s.ForceMine(ctx)
	}

	return s.Worker.SignalForceMining(ctx)
}
