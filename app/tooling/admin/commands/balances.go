package commands

import (
	"fmt"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
	"github.com/ledgerlab/powchain/foundation/nameservice"
)

// Balances prints the starting balances from the genesis file.
func Balances(genesisPath string, keysFolder string) error {
	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return err
	}

	ns, err := nameservice.New(keysFolder)
	if err != nil {
		return err
	}

	fmt.Printf("ChainID: %d  TransPerBlock: %d  Difficulty: %d\n\n", gen.ChainID, gen.TransPerBlock, gen.Difficulty)

	for account, balance := range gen.Balances {
		fmt.Printf("Name: %-10s Account: %s  Balance: %d\n", ns.Lookup(accounts.AccountID(account)), account, balance)
	}

	return nil
}
