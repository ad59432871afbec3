// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
	"github.com/ledgerlab/powchain/foundation/nameservice"
)

// Genesis writes a genesis file that funds every account in the keys folder
// with the same balance.
func Genesis(args conf.Args, genesisPath string, keysFolder string) error {
	balance := uint64(1_000_000)
	if v := args.Num(1); v != "" {
		b, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing balance: %w", err)
		}
		balance = b
	}

	ns, err := nameservice.New(keysFolder)
	if err != nil {
		return err
	}

	gen := genesis.Genesis{
		Date:           time.Now().UTC(),
		ChainID:        1,
		TransPerBlock:  10,
		Difficulty:     3,
		UniqueMessages: true,
		Balances:       make(map[string]uint64),
	}
	for accountID, name := range ns.Copy() {
		gen.Balances[string(accountID)] = balance
		fmt.Printf("Name: %-10s Account: %s  Balance: %d\n", name, accountID, balance)
	}

	if err := genesis.Save(genesisPath, gen); err != nil {
		return err
	}

	fmt.Println("Genesis written to", genesisPath)
	return nil
}
