// Package accounts maintains account balances for the ledger.
package accounts

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
)

// Set of error variables for balance handling.
var (
	ErrNotFound          = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
)

// Accounts manages the balances of every address known to the ledger.
type Accounts struct {
	genesis genesis.Genesis
	info    map[AccountID]uint64
	mu      sync.RWMutex
}

// New constructs the accounts with the starting balances from genesis.
func New(genesis genesis.Genesis) (*Accounts, error) {
	accts := Accounts{
		genesis: genesis,
	}

	if err := accts.load(); err != nil {
		return nil, err
	}

	return &accts, nil
}

// Reset re-initalizes the accounts back to the genesis information.
func (act *Accounts) Reset() error {
	act.mu.Lock()
	defer act.mu.Unlock()

	return act.load()
}

// Initialize registers the account with a zero balance. An account that is
// already registered keeps its balance.
func (act *Accounts) Initialize(accountID AccountID) {
	act.mu.Lock()
	defer act.mu.Unlock()

	if _, exists := act.info[accountID]; !exists {
		act.info[accountID] = 0
	}
}

// Balance returns the balance for the specified account.
func (act *Accounts) Balance(accountID AccountID) (uint64, error) {
	act.mu.RLock()
	defer act.mu.RUnlock()

	balance, exists := act.info[accountID]
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, accountID)
	}

	return balance, nil
}

// Transfer moves value from one account to another. Both balances change
// together or not at all. Callers validate the transfer before calling, the
// checks here protect the unsigned balances from wrapping on either side.
func (act *Accounts) Transfer(from AccountID, to AccountID, value uint64) error {
	act.mu.Lock()
	defer act.mu.Unlock()

	fromBalance, exists := act.info[from]
	if !exists {
		return fmt.Errorf("%w: from %s", ErrNotFound, from)
	}

	if _, exists := act.info[to]; !exists {
		return fmt.Errorf("%w: to %s", ErrNotFound, to)
	}

	if fromBalance < value {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, fromBalance, value)
	}

	if from != to && act.info[to] > math.MaxUint64-value {
		return fmt.Errorf("%w: %s has %d, receiving %d", ErrBalanceOverflow, to, act.info[to], value)
	}

	act.info[from] -= value
	act.info[to] += value

	return nil
}

// Copy makes a copy of the current balances for all accounts.
func (act *Accounts) Copy() map[AccountID]uint64 {
	act.mu.RLock()
	defer act.mu.RUnlock()

	accounts := make(map[AccountID]uint64, len(act.info))
	for accountID, balance := range act.info {
		accounts[accountID] = balance
	}
	return accounts
}

// =============================================================================

// load replaces the balances with the genesis balances. The caller must
// hold the write lock or own the value exclusively.
func (act *Accounts) load() error {
	info := make(map[AccountID]uint64, len(act.genesis.Balances))
	for address, balance := range act.genesis.Balances {
		accountID, err := ToAccountID(address)
		if err != nil {
			return fmt.Errorf("genesis balance %q: %w", address, err)
		}
		if _, exists := info[accountID]; exists {
			return fmt.Errorf("genesis balance %q: duplicate account", address)
		}
		info[accountID] = balance
	}

	act.info = info
	return nil
}
