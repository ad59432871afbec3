package main

import "github.com/ledgerlab/powchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
