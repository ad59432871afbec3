package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/spf13/cobra"
)

type account struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

type actInfo struct {
	LatestBlock string    `json:"latest_block"`
	Height      uint64    `json:"height"`
	Accounts    []account `json:"accounts"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := loadPrivateKey()
	if err != nil {
		log.Fatal(err)
	}

	accountID := accounts.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/list/%s", url, accountID))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		fmt.Println(0)
		return
	}

	var ai actInfo
	if err := json.NewDecoder(resp.Body).Decode(&ai); err != nil {
		log.Fatal(err)
	}

	if len(ai.Accounts) > 0 {
		fmt.Println(ai.Accounts[0].Balance)
	}
}
