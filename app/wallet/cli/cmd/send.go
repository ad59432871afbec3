package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	to    string
	value uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := loadPrivateKey()
		if err != nil {
			log.Fatal(err)
		}

		if err := sendWithDetails(privateKey); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the receiving account.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendWithDetails(privateKey *ecdsa.PrivateKey) error {
	toID, err := accounts.ToAccountID(to)
	if err != nil {
		return fmt.Errorf("to account: %w", err)
	}

	// Transactions record the height of the chain they were created at.
	height, err := queryHeight()
	if err != nil {
		return err
	}

	fromID := accounts.PublicKeyToAccountID(privateKey.PublicKey)
	tx, err := database.NewTx(fromID, toID, value, height)
	if err != nil {
		return err
	}

	signedTx, err := tx.Sign(privateKey)
	if err != nil {
		return err
	}

	data, err := json.Marshal(signedTx)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submit failed: %s: %s", resp.Status, body)
	}

	fmt.Println(string(body))
	return nil
}

func queryHeight() (uint64, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/blocks/height", url))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var h struct {
		Height uint64 `json:"height"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return 0, fmt.Errorf("decoding height: %w", err)
	}

	return h.Height, nil
}
