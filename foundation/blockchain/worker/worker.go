// Package worker runs chain mutations, and the mining they trigger, on a
// dedicated goroutine so request goroutines only wait for the result.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ledgerlab/powchain/foundation/blockchain/database"
	"github.com/ledgerlab/powchain/foundation/blockchain/state"
)

// ErrShutdown is returned when work is submitted to a worker that is
// shutting down.
var ErrShutdown = errors.New("worker is shutting down")

// maxPendingJobs is the number of jobs that can be queued before a
// submission waits.
const maxPendingJobs = 100

// =============================================================================

// job represents a single mutation for the worker to run. A nil tx asks
// for the open block to be force mined.
type job struct {
	tx     *database.Tx
	result chan result
}

// result is what the worker hands back for a job.
type result struct {
	tx    database.Tx
	block database.Block
	err   error
}

// Worker manages the mutation workflow for the blockchain.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	shut      chan struct{}
	jobs      chan job
	ctx       context.Context
	cancel    context.CancelFunc
	evHandler state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up the background goroutine.
func Run(st *state.State, evHandler state.EventHandler) {
	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:     st,
		shut:      make(chan struct{}),
		jobs:      make(chan job, maxPendingJobs),
		ctx:       ctx,
		cancel:    cancel,
		evHandler: evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	w.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.miningOperations()
	}()

	<-hasStarted
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. A mining operation in
// progress is cancelled and its block is left open.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel mining")
	w.cancel()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SubmitTransaction queues the transaction and waits for the worker to
// add it to the chain. If ctx ends first the transaction may still be
// added, the caller just stops waiting.
func (w *Worker) SubmitTransaction(ctx context.Context, tx database.Tx) (database.Tx, error) {
	res, err := w.submit(ctx, job{tx: &tx, result: make(chan result, 1)})
	if err != nil {
		return database.Tx{}, err
	}

	return res.tx, res.err
}

// SignalForceMining queues a request to mine the open block and waits for
// the mined block.
func (w *Worker) SignalForceMining(ctx context.Context) (database.Block, error) {
	res, err := w.submit(ctx, job{result: make(chan result, 1)})
	if err != nil {
		return database.Block{}, err
	}

	return res.block, res.err
}

// =============================================================================

// submit hands the job to the worker goroutine and waits for the result.
func (w *Worker) submit(ctx context.Context, j job) (result, error) {
	if w.isShutdown() {
		return result{}, ErrShutdown
	}

	select {
	case w.jobs <- j:
		w.evHandler("worker: submit: job queued")
	case <-w.shut:
		return result{}, ErrShutdown
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	select {
	case res := <-j.result:
		return res, nil
	case <-w.shut:
		return result{}, ErrShutdown
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// miningOperations runs every job in the order it was received.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case j := <-w.jobs:
			if !w.isShutdown() {
				j.result <- w.runJob(j)
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runJob performs the mutation described by the job.
func (w *Worker) runJob(j job) result {
	if j.tx == nil {
		w.evHandler("worker: runJob: MINING: force mine")

		block, err := w.state.ForceMine(w.ctx)
		if err != nil {
			w.evHandler("worker: runJob: MINING: ERROR: %s", err)
		}
		return result{block: block, err: err}
	}

	w.evHandler("worker: runJob: add tx[%s]", j.tx)

	tx, err := w.state.AddTransaction(w.ctx, *j.tx)
	if err != nil {
		w.evHandler("worker: runJob: ERROR: %s", err)
	}
	return result{tx: tx, err: err}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
