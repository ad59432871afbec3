package public

import (
	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/ledgerlab/powchain/foundation/nameservice"
)

// submitTx is the signed transaction a wallet posts to the node.
type submitTx struct {
	FromID    accounts.AccountID `json:"from" validate:"required,address"`
	ToID      accounts.AccountID `json:"to" validate:"required,address"`
	Value     uint64             `json:"value"`
	Nonce     uint64             `json:"nonce"`
	Salt      string             `json:"salt"`
	Message   string             `json:"message" validate:"required"`
	PublicKey string             `json:"public_key"`
	Signature string             `json:"signature"`
}

func (st submitTx) toDatabaseTx() database.Tx {
	return database.Tx{
		FromID:    st.FromID,
		ToID:      st.ToID,
		Value:     st.Value,
		Nonce:     st.Nonce,
		Salt:      st.Salt,
		Message:   st.Message,
		PublicKey: st.PublicKey,
		Signature: st.Signature,
		Status:    database.TxPending,
	}
}

type account struct {
	Account accounts.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance uint64             `json:"balance"`
}

type actInfo struct {
	LatestBlock string    `json:"latest_block"`
	Height      uint64    `json:"height"`
	Accounts    []account `json:"accounts"`
}

type tx struct {
	FromAccount accounts.AccountID `json:"from"`
	FromName    string             `json:"from_name"`
	To          accounts.AccountID `json:"to"`
	ToName      string             `json:"to_name"`
	Value       uint64             `json:"value"`
	Nonce       uint64             `json:"nonce"`
	Message     string             `json:"message"`
	Sig         string             `json:"signature"`
	Status      string             `json:"status"`
}

type block struct {
	Number        uint64 `json:"number"`
	TimeStamp     uint64 `json:"timestamp"`
	PrevBlockHash string `json:"prev_block_hash"`
	Hash          string `json:"hash"`
	Nonce         uint64 `json:"nonce"`
	Capacity      uint16 `json:"capacity"`
	Mined         bool   `json:"mined"`
	Transactions  []tx   `json:"transactions"`
}

func toTx(ns *nameservice.NameService, tran database.Tx) tx {
	return tx{
		FromAccount: tran.FromID,
		FromName:    ns.Lookup(tran.FromID),
		To:          tran.ToID,
		ToName:      ns.Lookup(tran.ToID),
		Value:       tran.Value,
		Nonce:       tran.Nonce,
		Message:     tran.Message,
		Sig:         tran.Signature,
		Status:      string(tran.Status),
	}
}

func toBlock(ns *nameservice.NameService, number int, blk database.Block) block {
	trans := make([]tx, len(blk.Transactions))
	for i, tran := range blk.Transactions {
		trans[i] = toTx(ns, tran)
	}

	return block{
		Number:        uint64(number),
		TimeStamp:     blk.TimeStamp,
		PrevBlockHash: blk.PrevBlockHash,
		Hash:          blk.Hash,
		Nonce:         blk.Nonce,
		Capacity:      blk.Capacity,
		Mined:         blk.Mined,
		Transactions:  trans,
	}
}
