package database_test

import (
	"crypto/ecdsa"
	"errors"
	"testing"

	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
	"github.com/ledgerlab/powchain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	billKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	jillKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_TransactionValidation(t *testing.T) {
	bill, billID := key(t, billKey)
	jill, jillID := key(t, jillKey)

	ledger, err := accounts.New(genesis.Genesis{Balances: map[string]uint64{string(billID): 100, string(jillID): 0}})
	if err != nil {
		t.Fatalf("Should be able to construct accounts: %s", err)
	}

	signed := signedTx(t, bill, billID, jillID, 30)

	type table struct {
		name string
		tx   database.Tx
		err  error
	}

	tt := []table{
		{
			name: "valid",
			tx:   signed,
		},
		{
			name: "unsigned",
			tx:   unsignedTx(t, billID, jillID, 30),
			err:  database.ErrNotSigned,
		},
		{
			name: "insufficient-funds",
			tx:   signedTx(t, bill, billID, jillID, 500),
			err:  accounts.ErrInsufficientFunds,
		},
		{
			name: "zero-value",
			tx:   signedTx(t, jill, jillID, billID, 0),
			err:  nil,
		},
		{
			name: "tampered-signature",
			tx:   tamper(signed, func(tx *database.Tx) { tx.Signature = flipHex(tx.Signature, 12) }),
			err:  database.ErrInvalidSignature,
		},
		{
			name: "tampered-message",
			tx:   tamper(signed, func(tx *database.Tx) { tx.Message = flipHex(tx.Message, 12) }),
			err:  database.ErrMessageMismatch,
		},
		{
			name: "tampered-value",
			tx:   tamper(signed, func(tx *database.Tx) { tx.Value = 31 }),
			err:  database.ErrMessageMismatch,
		},
		{
			name: "wrong-key",
			tx:   signedTx(t, jill, billID, jillID, 30),
			err:  database.ErrInvalidSignature,
		},
		{
			name: "foreign-public-key",
			tx:   tamper(signed, func(tx *database.Tx) { tx.PublicKey = string(jillID) }),
			err:  database.ErrInvalidSignature,
		},
	}

	t.Log("Given the need to validate signed transactions against the ledger.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := tst.tx.Validate(ledger)

				switch tst.err {
				case nil:
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be a valid transaction: %v", failed, testID, err)
					}
					if !tst.tx.IsValid(ledger) {
						t.Fatalf("\t%s\tTest %d:\tShould report the transaction as valid.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be a valid transaction.", success, testID)

				default:
					if !errors.Is(err, tst.err) {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould get the right validation error.", failed, testID)
					}
					if tst.tx.IsValid(ledger) {
						t.Fatalf("\t%s\tTest %d:\tShould report the transaction as invalid.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the right validation error.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_FundsCheckedBeforeSignature(t *testing.T) {
	bill, billID := key(t, billKey)
	_, jillID := key(t, jillKey)

	ledger, err := accounts.New(genesis.Genesis{Balances: map[string]uint64{string(billID): 10, string(jillID): 0}})
	if err != nil {
		t.Fatalf("Should be able to construct accounts: %s", err)
	}

	tx := signedTx(t, bill, billID, jillID, 50)
	tx.Signature = flipHex(tx.Signature, 4)

	if err := tx.Validate(ledger); !errors.Is(err, accounts.ErrInsufficientFunds) {
		t.Fatalf("Should reject on funds before checking the signature, got %v", err)
	}
}

func Test_NewTx(t *testing.T) {
	_, billID := key(t, billKey)
	_, jillID := key(t, jillKey)

	t.Log("Given the need to construct transactions with unique messages.")
	{
		tx1 := unsignedTx(t, billID, jillID, 10)
		tx2 := unsignedTx(t, billID, jillID, 10)

		if tx1.Status != database.TxPending {
			t.Fatalf("\t%s\tShould start as pending, got %s.", failed, tx1.Status)
		}
		t.Logf("\t%s\tShould start as pending.", success)

		if tx1.Message == tx2.Message {
			t.Fatalf("\t%s\tShould salt identical transfers into different messages.", failed)
		}
		t.Logf("\t%s\tShould salt identical transfers into different messages.", success)

		if tx1.PublicKey != string(billID) {
			t.Fatalf("\t%s\tShould attach the sender public key.", failed)
		}
		t.Logf("\t%s\tShould attach the sender public key.", success)

		if _, err := database.NewTx("0xbad", jillID, 1, 0); !errors.Is(err, accounts.ErrInvalidAddress) {
			t.Fatalf("\t%s\tShould reject an invalid from address: %v", failed, err)
		}
		if _, err := database.NewTx(billID, "bad", 1, 0); !errors.Is(err, accounts.ErrInvalidAddress) {
			t.Fatalf("\t%s\tShould reject an invalid to address: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject invalid addresses.", success)
	}
}

// =============================================================================

func key(t *testing.T, hex string) (*ecdsa.PrivateKey, accounts.AccountID) {
	t.Helper()

	pk, err := signature.HexToPrivateKey(hex)
	if err != nil {
		t.Fatalf("Should be able to load private key: %s", err)
	}

	return pk, accounts.PublicKeyToAccountID(pk.PublicKey)
}

func unsignedTx(t *testing.T, from accounts.AccountID, to accounts.AccountID, value uint64) database.Tx {
	t.Helper()

	tx, err := database.NewTx(from, to, value, 0)
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %s", err)
	}

	return tx
}

func signedTx(t *testing.T, pk *ecdsa.PrivateKey, from accounts.AccountID, to accounts.AccountID, value uint64) database.Tx {
	t.Helper()

	tx, err := unsignedTx(t, from, to, value).Sign(pk)
	if err != nil {
		t.Fatalf("Should be able to sign a transaction: %s", err)
	}

	return tx
}

func tamper(tx database.Tx, f func(tx *database.Tx)) database.Tx {
	f(&tx)
	return tx
}

// flipHex changes one hex digit of a 0x prefixed string.
func flipHex(s string, i int) string {
	b := []byte(s)
	if b[2+i] == '0' {
		b[2+i] = '1'
	} else {
		b[2+i] = '0'
	}
	return string(b)
}
