package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/signature"
)

// Set of error variables for transaction validation.
var (
	ErrNotSigned        = errors.New("transaction is not signed")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMessageMismatch  = errors.New("message does not match transaction")
)

// TxStatus represents where a transaction is in its lifecycle.
type TxStatus string

// Set of transaction statuses. A transaction moves from pending to
// success or failed exactly once, when its block is mined.
const (
	TxPending TxStatus = "PENDING"
	TxSuccess TxStatus = "SUCCESS"
	TxFailed  TxStatus = "FAILED"
)

// Ledger represents the read access to balances a transaction needs
// for validation.
type Ledger interface {
	Balance(accountID accounts.AccountID) (uint64, error)
}

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	FromID    accounts.AccountID `json:"from"`       // Account sending the value.
	ToID      accounts.AccountID `json:"to"`         // Account receiving the value.
	Value     uint64             `json:"value"`      // Monetary value moved by this transaction.
	Nonce     uint64             `json:"nonce"`      // Chain height when the transaction was created.
	Salt      string             `json:"salt"`       // Random value that keeps message digests unique.
	Message   string             `json:"message"`    // Digest of the fields above, this is what gets signed.
	PublicKey string             `json:"public_key"` // Key the signature is verified against.
	Signature string             `json:"signature"`  // [R|S] signature of the message.
	Status    TxStatus           `json:"status"`
}

// NewTx constructs a new pending transaction with a unique message digest.
func NewTx(fromID accounts.AccountID, toID accounts.AccountID, value uint64, nonce uint64) (Tx, error) {
	if !fromID.IsAccountID() {
		return Tx{}, fmt.Errorf("from account: %w", accounts.ErrInvalidAddress)
	}

	if !toID.IsAccountID() {
		return Tx{}, fmt.Errorf("to account: %w", accounts.ErrInvalidAddress)
	}

	tx := Tx{
		FromID:    fromID,
		ToID:      toID,
		Value:     value,
		Nonce:     nonce,
		Salt:      uuid.NewString(),
		PublicKey: string(fromID),
		Status:    TxPending,
	}
	tx.Message = tx.digest()

	return tx, nil
}

// Sign uses the specified private key to sign the transaction message. Signing
// again replaces the previous signature.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	msg, err := hexutil.Decode(tx.Message)
	if err != nil {
		return Tx{}, fmt.Errorf("decoding message: %w", err)
	}

	sig, err := signature.Sign(msg, privateKey)
	if err != nil {
		return Tx{}, err
	}

	tx.Signature = hexutil.Encode(sig)

	return tx, nil
}

// Validate checks the transaction can be applied against the current
// balances in the ledger. The cheap checks run before the signature check.
func (tx Tx) Validate(ledger Ledger) error {
	if tx.Signature == "" {
		return ErrNotSigned
	}

	balance, err := ledger.Balance(tx.FromID)
	if err != nil {
		return err
	}

	if balance < tx.Value {
		return fmt.Errorf("%w: %s has %d, needs %d", accounts.ErrInsufficientFunds, tx.FromID, balance, tx.Value)
	}

	return tx.VerifySignature()
}

// IsValid reports whether Validate passes.
func (tx Tx) IsValid(ledger Ledger) bool {
	return tx.Validate(ledger) == nil
}

// VerifySignature checks the message belongs to this transaction and was
// signed by the key that owns the sender account.
func (tx Tx) VerifySignature() error {
	if tx.Signature == "" {
		return ErrNotSigned
	}

	if tx.Message != tx.digest() {
		return ErrMessageMismatch
	}

	if tx.PublicKey != string(tx.FromID) {
		return fmt.Errorf("%w: public key does not own account %s", ErrInvalidSignature, tx.FromID)
	}

	pub, err := accounts.AccountID(tx.PublicKey).PublicKey()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	msg, err := hexutil.Decode(tx.Message)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMessageMismatch, err)
	}

	sig, err := hexutil.Decode(tx.Signature)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	if !signature.Verify(msg, sig, pub) {
		return ErrInvalidSignature
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d:%s", tx.FromID, tx.ToID, tx.Value, tx.Status)
}

// digest returns the hash of the fields covered by the signature.
func (tx Tx) digest() string {
	payload := struct {
		FromID accounts.AccountID `json:"from"`
		ToID   accounts.AccountID `json:"to"`
		Value  uint64             `json:"value"`
		Nonce  uint64             `json:"nonce"`
		Salt   string             `json:"salt"`
	}{
		FromID: tx.FromID,
		ToID:   tx.ToID,
		Value:  tx.Value,
		Nonce:  tx.Nonce,
		Salt:   tx.Salt,
	}

	return signature.Hash(payload)
}
