package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ledgerlab/powchain/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	t.Log("Given the need to load the genesis file.")
	{
		dir := t.TempDir()

		good := filepath.Join(dir, "genesis.json")
		doc := `{"chain_id":1,"trans_per_block":10,"difficulty":3,"unique_messages":true,"balances":{"0x02412ffaffb78f2931e193f1add952fcb84ceaa55c8491b3a71f25f89fbb482aaf":1000}}`
		if err := os.WriteFile(good, []byte(doc), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the genesis file: %v", failed, err)
		}

		gen, err := genesis.Load(good)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the genesis file: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to load the genesis file.", success)

		if gen.TransPerBlock != 10 || gen.Difficulty != 3 || !gen.UniqueMessages || len(gen.Balances) != 1 {
			t.Fatalf("\t%s\tShould decode every field: %+v", failed, gen)
		}
		t.Logf("\t%s\tShould decode every field.", success)

		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte(`{"difficulty":1}`), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the genesis file: %v", failed, err)
		}

		if _, err := genesis.Load(bad); err == nil {
			t.Fatalf("\t%s\tShould reject a genesis file without a block capacity.", failed)
		}
		t.Logf("\t%s\tShould reject a genesis file without a block capacity.", success)
	}
}

func Test_Save(t *testing.T) {
	t.Log("Given the need to write a genesis file.")
	{
		path := filepath.Join(t.TempDir(), "genesis.json")

		gen := genesis.Genesis{
			ChainID:       1,
			TransPerBlock: 2,
			Difficulty:    1,
			Balances:      map[string]uint64{"0x02412ffaffb78f2931e193f1add952fcb84ceaa55c8491b3a71f25f89fbb482aaf": 50},
		}
		if err := genesis.Save(path, gen); err != nil {
			t.Fatalf("\t%s\tShould be able to save the genesis file: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to save the genesis file.", success)

		got, err := genesis.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the saved file: %v", failed, err)
		}

		if got.TransPerBlock != 2 || got.Balances["0x02412ffaffb78f2931e193f1add952fcb84ceaa55c8491b3a71f25f89fbb482aaf"] != 50 {
			t.Fatalf("\t%s\tShould load what was saved: %+v", failed, got)
		}
		t.Logf("\t%s\tShould load what was saved.", success)
	}
}
