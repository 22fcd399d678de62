package db

import (
	"context"
	"database/sql"
)

type TxFn func(ctx context.Context, tx *sql.Tx) error

type job struct {
	ctx    context.Context
	fn     TxFn
	result chan error
}

// Worker serializes every write transaction through a single goroutine.
// With sqlite on one connection this is the process's exclusive write lock:
// a caller's context deadline bounds how long it waits for its turn, which
// is how the ledger and journal get their bounded lock-wait semantics.
type Worker struct {
	db    *sql.DB
	queue chan job
	done  chan struct{}
}

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:    db,
		queue: make(chan job, 256),
		done:  make(chan struct{}),
	}
	go w.loop()
	return w
}

// Close drains the queue and stops the loop. Call after the HTTP server has
// shut down so no new jobs arrive.
func (w *Worker) Close() {
	close(w.queue)
	<-w.done
}

// Do runs fn inside a write transaction on the worker goroutine and returns
// its error. If ctx expires while the job is queued or running, Do returns
// ctx.Err(); the worker still finishes the transaction and the discarded
// result lands in the buffered channel.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case w.queue <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.done)
	for j := range w.queue {
		j.result <- w.run(j)
	}
}

func (w *Worker) run(j job) error {
	tx, err := w.db.BeginTx(j.ctx, nil)
	if err != nil {
		return err
	}
	if err := j.fn(j.ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
