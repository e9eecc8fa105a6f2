// Package persist writes shopping snapshots to a key-value store in the
// background and restores them at startup.
package persist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dukerupert/compras/internal/model"
	"github.com/dukerupert/compras/internal/shopping"
)

// Key is the fixed key the snapshot is stored under.
const Key = "compras-organizadas-data"

// KV is the string-keyed storage the snapshot lives in.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Writer persists every state the store emits. Writes are fire-and-forget:
// a newer snapshot replaces one that has not been written yet, and failures
// are logged without retry.
type Writer struct {
	kv     KV
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending *model.State
	queued  uint64
	written uint64
	closed  bool
	stopped bool

	done chan struct{}
}

// NewWriter starts the background writer.
func NewWriter(kv KV, logger *slog.Logger) *Writer {
	w := &Writer{
		kv:     kv,
		logger: logger,
		done:   make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Attach subscribes the writer to the store.
func (w *Writer) Attach(s *shopping.Store) {
	s.Subscribe(func(_ shopping.Event, st model.State) {
		w.Enqueue(st)
	})
}

// Enqueue schedules st to be written. It never blocks on I/O.
func (w *Writer) Enqueue(st model.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = &st
	w.queued++
	w.cond.Broadcast()
}

func (w *Writer) run() {
	defer close(w.done)

	for {
		w.mu.Lock()
		for w.pending == nil && !w.closed {
			w.cond.Wait()
		}
		if w.pending == nil && w.closed {
			w.stopped = true
			w.cond.Broadcast()
			w.mu.Unlock()
			return
		}
		st := *w.pending
		seq := w.queued
		w.pending = nil
		w.mu.Unlock()

		w.write(st)

		w.mu.Lock()
		w.written = seq
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

func (w *Writer) write(st model.State) {
	data, err := shopping.EncodeSnapshot(st)
	if err != nil {
		w.logger.Error("encode snapshot", "error", err)
		return
	}
	if err := w.kv.Set(Key, string(data)); err != nil {
		w.logger.Error("save snapshot", "error", err)
		return
	}
	w.logger.Debug("snapshot saved", "bytes", len(data))
}

// Flush waits until everything enqueued so far has been attempted, or ctx is
// done.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.queued
	w.mu.Unlock()

	reached := make(chan struct{})
	go func() {
		w.mu.Lock()
		for w.written < target && !w.stopped {
			w.cond.Wait()
		}
		w.mu.Unlock()
		close(reached)
	}()

	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the pending snapshot and stops the writer.
func (w *Writer) Close() {
	w.mu.Lock()
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()
	<-w.done
}

// Restore loads the persisted snapshot into the store. A missing key leaves
// the store empty; read and decode failures are logged and also leave it
// empty.
func Restore(kv KV, s *shopping.Store, logger *slog.Logger) {
	raw, ok, err := kv.Get(Key)
	if err != nil {
		logger.Error("load snapshot", "error", err)
		return
	}
	if !ok {
		logger.Info("no saved snapshot, starting empty")
		return
	}

	p, err := shopping.DecodeSnapshot([]byte(raw))
	if err != nil {
		logger.Error("decode snapshot, starting empty", "error", err)
		return
	}

	// Missing sequences load as empty.
	p.SetHistory = true
	p.SetWasteReports = true
	s.LoadData(p)
	logger.Info("snapshot restored",
		"history", len(p.ShoppingHistory),
		"waste_reports", len(p.WasteReports),
		"has_current_list", p.CurrentList != nil,
	)
}
