package main

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	telemetryQueueSize  = 1024
	telemetryBatchSize  = 50
	telemetryFlushEvery = 5 * time.Second
)

// Telemetry records finished runs with batched background writes. A nil
// *Telemetry discards everything.
type Telemetry struct {
	db   *DB
	runs chan RunRecord
	stop chan struct{}
	wg   sync.WaitGroup
	log  zerolog.Logger
}

// NewTelemetry creates and starts the telemetry background writer
func NewTelemetry(db *DB, log zerolog.Logger) *Telemetry {
	t := &Telemetry{
		db:   db,
		runs: make(chan RunRecord, telemetryQueueSize),
		stop: make(chan struct{}),
		log:  log,
	}
	t.wg.Add(1)
	go t.writer()
	return t
}

// Record enqueues a run for async persistence (non-blocking)
func (t *Telemetry) Record(r RunRecord) {
	if t == nil {
		return
	}
	select {
	case t.runs <- r:
	default:
		// Channel full, drop rather than block the caller
		t.log.Warn().Str("session", r.SessionID).Msg("telemetry queue full, run dropped")
	}
}

// Stop flushes pending runs and shuts down the writer
func (t *Telemetry) Stop() {
	if t == nil {
		return
	}
	close(t.stop)
	t.wg.Wait()
}

// writer is the background goroutine that batches and writes runs to DB
func (t *Telemetry) writer() {
	defer t.wg.Done()

	batch := make([]RunRecord, 0, telemetryBatchSize)
	ticker := time.NewTicker(telemetryFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case r := <-t.runs:
			batch = append(batch, r)
			if len(batch) >= telemetryBatchSize {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-t.stop:
			// Drain what is already queued
			for {
				select {
				case r := <-t.runs:
					batch = append(batch, r)
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of runs to the database
func (t *Telemetry) flush(runs []RunRecord) {
	if t.db == nil || len(runs) == 0 {
		return
	}
	if err := t.db.InsertRuns(runs); err != nil {
		t.log.Error().Err(err).Int("runs", len(runs)).Msg("telemetry flush")
		return
	}
	t.log.Debug().Int("runs", len(runs)).Msg("telemetry flushed")
}
