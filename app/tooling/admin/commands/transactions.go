package commands

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
	"github.com/ledgerlab/powchain/foundation/blockchain/state"
	"github.com/ledgerlab/powchain/foundation/blockchain/worker"
	"github.com/ledgerlab/powchain/foundation/nameservice"
	"go.uber.org/zap"
)

// Transactions runs the transfers given as from:to:value triples, named by
// key file, on a scratch chain built from the genesis file. Whatever is left
// in the open block is force mined before the results are printed.
func Transactions(args conf.Args, log *zap.SugaredLogger, genesisPath string, keysFolder string) error {
	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return err
	}

	ns, err := nameservice.New(keysFolder)
	if err != nil {
		return err
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	worker.Run(st, ev)

	ctx := context.Background()

	for i := 1; args.Num(i) != ""; i++ {
		parts := strings.Split(args.Num(i), ":")
		if len(parts) != 3 {
			return fmt.Errorf("transfer %q: expected from:to:value", args.Num(i))
		}

		value, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return fmt.Errorf("transfer %q: %w", args.Num(i), err)
		}

		privateKey, err := crypto.LoadECDSA(filepath.Join(keysFolder, parts[0]+".ecdsa"))
		if err != nil {
			return fmt.Errorf("loading key for %s: %w", parts[0], err)
		}

		toKey, err := crypto.LoadECDSA(filepath.Join(keysFolder, parts[1]+".ecdsa"))
		if err != nil {
			return fmt.Errorf("loading key for %s: %w", parts[1], err)
		}

		tx, err := signedTx(st, privateKey, accounts.PublicKeyToAccountID(toKey.PublicKey), value)
		if err != nil {
			return err
		}

		if _, err := st.SubmitWalletTransaction(ctx, tx); err != nil {
			return fmt.Errorf("submitting %q: %w", args.Num(i), err)
		}
	}

	if _, err := st.SubmitForceMining(ctx); err != nil && !errors.Is(err, state.ErrNoTransactions) {
		return err
	}

	for _, tx := range st.RetrieveTransactions() {
		fmt.Printf("From: %-10s To: %-10s Value: %-8d Status: %s\n",
			ns.Lookup(tx.FromID), ns.Lookup(tx.ToID), tx.Value, tx.Status)
	}

	fmt.Println()
	for accountID, balance := range st.RetrieveAccounts() {
		fmt.Printf("Name: %-10s Balance: %d\n", ns.Lookup(accountID), balance)
	}

	fmt.Printf("\nChain valid: %t\n", st.IsChainValid())
	return nil
}

func signedTx(st *state.State, privateKey *ecdsa.PrivateKey, toID accounts.AccountID, value uint64) (database.Tx, error) {
	fromID := accounts.PublicKeyToAccountID(privateKey.PublicKey)

	tx, err := database.NewTx(fromID, toID, value, st.QueryHeight())
	if err != nil {
		return database.Tx{}, err
	}

	return tx.Sign(privateKey)
}
