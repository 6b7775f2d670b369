// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chatlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/hangeul/services/tutor/observability"
)

// DefaultQueueSize is the default writer queue capacity.
const DefaultQueueSize = 256

// writeTimeout bounds a single record insert.
const writeTimeout = 10 * time.Second

// Writer drains enqueued records into the store from a background
// goroutine.
//
// # Description
//
// Enqueue never blocks the request path: when the queue is full the
// record is dropped, counted in metrics, and logged. Insert failures are
// logged and the record is lost; there is no retry. Chat responses never
// wait on, or fail because of, the interaction log.
//
// # Thread Safety
//
// All public methods are thread-safe. The writer uses a mutex to protect
// state transitions.
type Writer struct {
	store   *Store
	metrics *observability.TutorMetrics
	queue   chan Record
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewWriter creates a writer over the given store.
//
// # Inputs
//
//   - store: Open interaction log store. Must not be nil.
//   - queueSize: Queue capacity. Values < 1 use DefaultQueueSize.
//   - metrics: Tutor metrics for drop counting. May be nil.
func NewWriter(store *Store, queueSize int, metrics *observability.TutorMetrics) *Writer {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &Writer{
		store:   store,
		metrics: metrics,
		queue:   make(chan Record, queueSize),
		done:    make(chan struct{}),
	}
}

// Start begins the background drain goroutine.
//
// # Outputs
//
//   - error: Non-nil if the writer is already running.
func (w *Writer) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("chat log writer is already running")
	}
	w.running = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	slog.Info("Chat log writer starting", "queue_size", cap(w.queue))
	w.wg.Add(1)
	go w.runLoop(ctx)
	return nil
}

// Stop drains the queue and stops the writer. Safe to call multiple times.
func (w *Writer) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	w.wg.Wait()
	slog.Info("Chat log writer stopped")
	return nil
}

// Enqueue submits a record without blocking.
//
// # Outputs
//
//   - bool: False if the queue was full and the record was dropped.
func (w *Writer) Enqueue(rec Record) bool {
	select {
	case w.queue <- rec:
		return true
	default:
		slog.Warn("Chat log queue full, dropping record", "user_id", rec.UserID)
		if w.metrics != nil {
			w.metrics.RecordChatLogDrop()
		}
		return false
	}
}

// runLoop is the writer goroutine. On shutdown it drains whatever is
// already queued before returning.
func (w *Writer) runLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			w.drain()
			return
		case rec := <-w.queue:
			w.write(rec)
		}
	}
}

// drain writes queued records until the queue is empty.
func (w *Writer) drain() {
	for {
		select {
		case rec := <-w.queue:
			w.write(rec)
		default:
			return
		}
	}
}

// write inserts one record, logging failures.
func (w *Writer) write(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.store.Insert(ctx, rec); err != nil {
		slog.Error("Failed to write chat log record",
			"user_id", rec.UserID,
			"request_type", rec.RequestType,
			"error", err)
	}
}
