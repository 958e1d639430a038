package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/menuvoice/menuvoice-rag/retrieval"
)

const createQueryLogTable = `
CREATE TABLE IF NOT EXISTS query_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	query_type TEXT NOT NULL,
	detected TEXT NOT NULL,
	context_length INTEGER NOT NULL,
	took_ms INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// QueryLog keeps a local record of every answered query for offline tuning
// of the keyword tables and rerank weights.
type QueryLog struct {
	db *sql.DB
}

func NewQueryLog(db *sql.DB) (*QueryLog, error) {
	if _, err := db.Exec(createQueryLogTable); err != nil {
		return nil, fmt.Errorf("failed to create query_log table: %w", err)
	}

	return &QueryLog{db: db}, nil
}

func (l *QueryLog) Insert(ctx context.Context, query string, result retrieval.Result, took time.Duration) error {
	detected, err := json.Marshal(result.DetectedRestaurants)
	if err != nil {
		return fmt.Errorf("failed to marshal detections: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO query_log (query, query_type, detected, context_length, took_ms) VALUES (?, ?, ?, ?, ?)`,
		query, result.QueryType, string(detected), len(result.Context), took.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query log row: %w", err)
	}

	return nil
}
