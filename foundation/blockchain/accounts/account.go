package accounts

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ledgerlab/powchain/foundation/blockchain/signature"
)

// ErrInvalidAddress is returned when a string can't be used as an address.
var ErrInvalidAddress = errors.New("invalid address format")

// AccountID represents an account address. It is the 0x prefixed hex
// encoding of the compressed secp256k1 public key that owns the account.
type AccountID string

// ToAccountID converts a hex-encoded string to an account and validates the
// hex-encoded string is a public key encoding. The hex digits are lower cased
// so every key maps to a single account.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(strings.ToLower(hex))
	if !a.IsAccountID() {
		return "", ErrInvalidAddress
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(hexutil.Encode(signature.CompressPublicKey(pk)))
}

// IsAccountID verifies whether the underlying data can be parsed as a
// public key written in its canonical lower case form. It doesn't matter if
// the account is registered.
func (a AccountID) IsAccountID() bool {
	_, err := a.PublicKey()
	return err == nil
}

// PublicKey returns the compressed public key bytes behind the account.
func (a AccountID) PublicKey() ([]byte, error) {
	b, err := hexutil.Decode(string(a))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	if _, err := crypto.DecompressPubkey(b); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	if hexutil.Encode(b) != string(a) {
		return nil, fmt.Errorf("%w: address must be lower case hex", ErrInvalidAddress)
	}

	return b, nil
}

// IsValidAddress reports whether the string is a structurally valid address.
func IsValidAddress(address string) bool {
	return AccountID(address).IsAccountID()
}
