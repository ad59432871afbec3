// This program performs administrative tasks for the ledger.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ledgerlab/powchain/app/tooling/admin/commands"
	"github.com/ledgerlab/powchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args        conf.Args
		GenesisPath string `conf:"default:zblock/genesis.json"`
		KeysFolder  string `conf:"default:zblock/accounts/"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work ledger admin",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	return processCommands(cfg.Args, log, cfg.GenesisPath, cfg.KeysFolder)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, log *zap.SugaredLogger, genesisPath string, keysFolder string) error {
	switch args.Num(0) {
	case "genesis":
		if err := commands.Genesis(args, genesisPath, keysFolder); err != nil {
			return fmt.Errorf("writing genesis: %w", err)
		}

	case "bals":
		if err := commands.Balances(genesisPath, keysFolder); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "trans":
		if err := commands.Transactions(args, log, genesisPath, keysFolder); err != nil {
			return fmt.Errorf("running transactions: %w", err)
		}

	default:
		fmt.Println("genesis [balance]: fund every key in the keys folder")
		fmt.Println("bals: print the genesis balances by name")
		fmt.Println("trans from:to:value ...: run transfers on a scratch chain")
	}

	return nil
}
