// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ledgerlab/powchain/business/sys/validate"
	"github.com/ledgerlab/powchain/business/web/errs"
	"github.com/ledgerlab/powchain/foundation/blockchain/accounts"
	"github.com/ledgerlab/powchain/foundation/blockchain/state"
	"github.com/ledgerlab/powchain/foundation/blockchain/worker"
	"github.com/ledgerlab/powchain/foundation/events"
	"github.com/ledgerlab/powchain/foundation/nameservice"
	"github.com/ledgerlab/powchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitWalletTransaction adds a signed wallet transaction to the open block.
// The sender must hold the value being sent at the time of submission.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var stx submitTx
	if err := web.Decode(r, &stx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(stx); err != nil {
		return err
	}

	h.Log.Infow("add user tran", "traceid", v.TraceID, "from", stx.FromID, "to", stx.ToID, "value", stx.Value, "nonce", stx.Nonce)

	balance, err := h.State.QueryBalance(stx.FromID)
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		return errs.NewTrusted(fmt.Errorf("account %s: %w", stx.FromID, accounts.ErrInsufficientFunds), http.StatusBadRequest)
	case err != nil:
		return err
	case balance < stx.Value:
		return errs.NewTrusted(fmt.Errorf("account %s: %w", stx.FromID, accounts.ErrInsufficientFunds), http.StatusBadRequest)
	}

	tran, err := h.State.SubmitWalletTransaction(ctx, stx.toDatabaseTx())
	if err != nil {
		switch {
		case errors.Is(err, state.ErrDuplicateMessage):
			return errs.NewTrusted(err, http.StatusConflict)
		case errors.Is(err, accounts.ErrInvalidAddress):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, worker.ErrShutdown):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return fmt.Errorf("submit: %w", err)
	}

	return web.Respond(ctx, w, toTx(h.NS, tran), http.StatusOK)
}

// ForceMining seals the open block even though it isn't full.
func (h Handlers) ForceMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.State.SubmitForceMining(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, worker.ErrShutdown):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return fmt.Errorf("force mining: %w", err)
	}

	height := h.State.QueryHeight()
	return web.Respond(ctx, w, toBlock(h.NS, int(height)-1, blk), http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Accounts returns the current balances for all accounts or the account
// specified in the path.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	var balances map[accounts.AccountID]uint64
	switch address {
	case "":
		balances = h.State.RetrieveAccounts()

	default:
		accountID, err := accounts.ToAccountID(address)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		balance, err := h.State.QueryBalance(accountID)
		if err != nil {
			if errors.Is(err, accounts.ErrNotFound) {
				return errs.NewTrusted(err, http.StatusNotFound)
			}
			return err
		}
		balances = map[accounts.AccountID]uint64{accountID: balance}
	}

	acts := make([]account, 0, len(balances))
	for accountID, balance := range balances {
		acts = append(acts, account{
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Balance: balance,
		})
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].Account < acts[j].Account })

	ai := actInfo{
		Height:   h.State.QueryHeight(),
		Accounts: acts,
	}
	if latest, err := h.State.RetrieveLatestBlock(); err == nil {
		ai.LatestBlock = latest.Hash
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}

// Blocks returns all the blocks in the chain, including the open block.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.RetrieveBlocks()
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(h.NS, i, blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Height returns the number wallets use as the nonce of new transactions.
func (h Handlers) Height(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Height uint64 `json:"height"`
	}{
		Height: h.State.QueryHeight(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transactions returns every transaction in chain order.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbTrans := h.State.RetrieveTransactions()

	trans := make([]tx, len(dbTrans))
	for i, tran := range dbTrans {
		trans[i] = toTx(h.NS, tran)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Transaction returns the transaction identified by its message digest.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tran, err := h.State.QueryTransaction(web.Param(r, "message"))
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return err
	}

	return web.Respond(ctx, w, toTx(h.NS, tran), http.StatusOK)
}

// ChainValid runs the chain integrity check.
func (h Handlers) ChainValid(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Valid bool `json:"valid"`
	}{
		Valid: h.State.IsChainValid(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
