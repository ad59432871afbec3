// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// DigestLength is the size in bytes of every digest produced by this package.
const DigestLength = sha256.Size

// Length is the size in bytes of a signature in the [R|S] format.
const Length = crypto.RecoveryIDOffset

// ErrInvalidDigest is returned when data to be signed is not a digest.
var ErrInvalidDigest = errors.New("digest must be 32 bytes")

// =============================================================================

// Digest returns the fixed size sha256 digest of the data.
func Digest(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	return hexutil.Encode(Digest(data))
}

// Sign uses the specified private key to sign the digest. The signature is
// returned in the [R|S] format without the recovery id.
func Sign(digest []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, ErrInvalidDigest
	}

	// The underlying secp256k1 implementation derives the nonce from the
	// key and digest, so the same input always produces the same signature.
	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign digest: %w", err)
	}

	return sig[:Length], nil
}

// Verify reports whether sig is a valid signature of the digest by the owner
// of the compressed or uncompressed public key.
func Verify(digest []byte, sig []byte, publicKey []byte) bool {
	if len(digest) != DigestLength || len(sig) != Length || len(publicKey) == 0 {
		return false
	}

	return crypto.VerifySignature(publicKey, digest, sig)
}

// CompressPublicKey returns the 33 byte encoding of the public key.
func CompressPublicKey(pk ecdsa.PublicKey) []byte {
	return crypto.CompressPubkey(&pk)
}

// HexToPrivateKey parses a hex-encoded secp256k1 private key.
func HexToPrivateKey(hex string) (*ecdsa.PrivateKey, error) {
	if len(hex) >= 2 && hex[0] == '0' && (hex[1] == 'x' || hex[1] == 'X') {
		hex = hex[2:]
	}

	pk, err := crypto.HexToECDSA(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid secret key format: %w", err)
	}

	return pk, nil
}
