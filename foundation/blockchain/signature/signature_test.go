package signature_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ledgerlab/powchain/foundation/blockchain/signature"
)

const (
	pkHexKey    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	otherHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	pubKey      = "0x02412ffaffb78f2931e193f1add952fcb84ceaa55c8491b3a71f25f89fbb482aaf"
)

// =============================================================================

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0x0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}
}

func Test_CompressPublicKey(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	got := hexutil.Encode(signature.CompressPublicKey(pk.PublicKey))
	if got != pubKey {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", pubKey)
		t.Fatalf("Should get back the right compressed public key.")
	}
}

func Test_Signing(t *testing.T) {
	pk, err := signature.HexToPrivateKey(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	pub := signature.CompressPublicKey(pk.PublicKey)

	digest := signature.Digest([]byte("bill sends jill 30"))

	sig, err := signature.Sign(digest, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if len(sig) != signature.Length {
		t.Fatalf("Should get a %d byte signature, got %d.", signature.Length, len(sig))
	}

	if !signature.Verify(digest, sig, pub) {
		t.Fatalf("Should be able to verify the signature.")
	}

	again, err := signature.Sign(digest, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data twice: %s", err)
	}

	if hexutil.Encode(sig) != hexutil.Encode(again) {
		t.Logf("got: %s", hexutil.Encode(again))
		t.Logf("exp: %s", hexutil.Encode(sig))
		t.Fatalf("Should get back the same signature for the same digest.")
	}
}

func Test_VerifyRejects(t *testing.T) {
	pk, err := signature.HexToPrivateKey(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	other, err := signature.HexToPrivateKey(otherHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a second private key: %s", err)
	}

	digest := signature.Digest([]byte("bill sends jill 30"))
	sig, err := signature.Sign(digest, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}
	pub := signature.CompressPublicKey(pk.PublicKey)

	tamperedSig := append([]byte(nil), sig...)
	tamperedSig[10] ^= 0xff

	tamperedDigest := append([]byte(nil), digest...)
	tamperedDigest[0] ^= 0x01

	type table struct {
		name   string
		digest []byte
		sig    []byte
		pub    []byte
	}

	tt := []table{
		{name: "tampered-signature", digest: digest, sig: tamperedSig, pub: pub},
		{name: "tampered-message", digest: tamperedDigest, sig: sig, pub: pub},
		{name: "wrong-key", digest: digest, sig: sig, pub: signature.CompressPublicKey(other.PublicKey)},
		{name: "missing-signature", digest: digest, sig: nil, pub: pub},
		{name: "missing-key", digest: digest, sig: sig, pub: nil},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			if signature.Verify(tst.digest, tst.sig, tst.pub) {
				t.Fatalf("Test %s:\tShould reject the signature.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_SignRequiresDigest(t *testing.T) {
	pk, err := signature.HexToPrivateKey(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	if _, err := signature.Sign([]byte("short"), pk); err == nil {
		t.Fatalf("Should not be able to sign data that is not a digest.")
	}
}

func Test_HexToPrivateKey(t *testing.T) {
	if _, err := signature.HexToPrivateKey("0x" + pkHexKey); err != nil {
		t.Fatalf("Should accept a 0x prefixed secret key: %s", err)
	}

	if _, err := signature.HexToPrivateKey("not-a-key"); err == nil {
		t.Fatalf("Should reject an invalid secret key format.")
	}
}
