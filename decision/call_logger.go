// Copyright 2025 FlightDeck
// SPDX-License-Identifier: Apache-2.0

package decision

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const (
	callLogQueueSize  = 10000
	callLogBatchSize  = 100
	callLogFlushEvery = 5 * time.Second
)

// CallLogEntry records one decision's input/output pair. Observability
// only, never business state: the system of record for flights and
// passengers lives elsewhere.
type CallLogEntry struct {
	ID              string          `json:"id"`
	AgentName       string          `json:"agent_name"`
	RequestPayload  json.RawMessage `json:"request_payload"`
	ResponsePayload json.RawMessage `json:"response_payload"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CallLogger persists call log entries to PostgreSQL. Logging is
// fire-and-forget: enqueueing never blocks a response, and every
// persistence failure is swallowed. Without a database URL the logger
// runs in no-op mode.
type CallLogger struct {
	db           *sql.DB
	queue        chan *CallLogEntry
	wg           sync.WaitGroup
	shutdownChan chan struct{}
}

// NewCallLogger creates a call logger. An empty or unreachable database
// URL yields a no-op logger rather than an error.
func NewCallLogger(databaseURL string) *CallLogger {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set - call logging disabled")
		return &CallLogger{}
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Printf("Failed to open call log database: %v - call logging disabled", err)
		return &CallLogger{}
	}

	if err := createCallLogTable(db); err != nil {
		log.Printf("Failed to create call log table: %v", err)
	}

	logger := &CallLogger{
		db:           db,
		queue:        make(chan *CallLogEntry, callLogQueueSize),
		shutdownChan: make(chan struct{}),
	}

	logger.wg.Add(1)
	go logger.processQueue()

	return logger
}

// Log enqueues one entry. Marshaling problems and a full queue drop the
// entry; the caller's response is never affected.
func (l *CallLogger) Log(agentName string, request, response interface{}) {
	if l.db == nil {
		return
	}

	reqPayload, err := json.Marshal(request)
	if err != nil {
		log.Printf("Failed to marshal call log request for %s: %v", agentName, err)
		return
	}
	respPayload, err := json.Marshal(response)
	if err != nil {
		log.Printf("Failed to marshal call log response for %s: %v", agentName, err)
		return
	}

	entry := &CallLogEntry{
		ID:              uuid.New().String(),
		AgentName:       agentName,
		RequestPayload:  reqPayload,
		ResponsePayload: respPayload,
		CreatedAt:       time.Now().UTC(),
	}

	select {
	case l.queue <- entry:
	default:
		log.Printf("Call log queue full, dropping entry for %s", agentName)
	}
}

// processQueue batches entries and flushes them on size or interval.
func (l *CallLogger) processQueue() {
	defer l.wg.Done()

	ticker := time.NewTicker(callLogFlushEvery)
	defer ticker.Stop()

	var batch []*CallLogEntry

	flush := func() {
		if len(batch) == 0 {
			return
		}
		l.writeBatch(batch)
		batch = nil
	}

	for {
		select {
		case entry := <-l.queue:
			batch = append(batch, entry)
			if len(batch) >= callLogBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-l.shutdownChan:
			// Drain whatever is still queued before exiting
			for {
				select {
				case entry := <-l.queue:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

// writeBatch inserts entries in one transaction. Failures are logged
// and swallowed.
func (l *CallLogger) writeBatch(batch []*CallLogEntry) {
	tx, err := l.db.Begin()
	if err != nil {
		log.Printf("Failed to begin call log transaction: %v", err)
		return
	}

	for _, entry := range batch {
		_, err := tx.Exec(`
			INSERT INTO agent_call_logs (id, agent_name, request_payload, response_payload, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			entry.ID, entry.AgentName, entry.RequestPayload, entry.ResponsePayload, entry.CreatedAt,
		)
		if err != nil {
			log.Printf("Failed to insert call log entry for %s: %v", entry.AgentName, err)
			_ = tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Failed to commit call log batch: %v", err)
	}
}

// Recent returns the most recent entries, newest first. No-op mode
// returns an empty list.
func (l *CallLogger) Recent(ctx context.Context, limit int) ([]*CallLogEntry, error) {
	if l.db == nil {
		return []*CallLogEntry{}, nil
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, agent_name, request_payload, response_payload, created_at
		FROM agent_call_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []*CallLogEntry
	for rows.Next() {
		entry := &CallLogEntry{}
		if err := rows.Scan(&entry.ID, &entry.AgentName, &entry.RequestPayload, &entry.ResponsePayload, &entry.CreatedAt); err != nil {
			log.Printf("Error scanning call log entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}

	if entries == nil {
		entries = []*CallLogEntry{}
	}
	return entries, rows.Err()
}

// IsHealthy checks database reachability. No-op mode is always healthy.
func (l *CallLogger) IsHealthy() bool {
	if l.db == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	return l.db.PingContext(ctx) == nil
}

// Close flushes pending entries and releases the database connection.
func (l *CallLogger) Close() {
	if l.db == nil {
		return
	}

	close(l.shutdownChan)
	l.wg.Wait()
	_ = l.db.Close()
}

func createCallLogTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS agent_call_logs (
			id TEXT PRIMARY KEY,
			agent_name VARCHAR(100) NOT NULL,
			request_payload JSONB NOT NULL,
			response_payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_agent_call_logs_created_at ON agent_call_logs (created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_agent_call_logs_agent_name ON agent_call_logs (agent_name);
	`)
	return err
}
