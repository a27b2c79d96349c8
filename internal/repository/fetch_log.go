package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FetchLogEntry is one archived upstream fetch.
type FetchLogEntry struct {
	ID         uuid.UUID `json:"id"`
	Provider   string    `json:"provider"`
	Operation  string    `json:"operation"`
	Base       string    `json:"base"`
	RangeStart string    `json:"range_start,omitempty"`
	RangeEnd   string    `json:"range_end,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// FetchLogRepository persists fetch audit entries in PostgreSQL.
type FetchLogRepository struct {
	db *sql.DB
}

// NewFetchLogRepository creates a FetchLogRepository backed by db.
func NewFetchLogRepository(db *sql.DB) *FetchLogRepository {
	return &FetchLogRepository{db: db}
}

// Insert stores one fetch entry. A zero ID is replaced with a fresh UUID.
func (r *FetchLogRepository) Insert(ctx context.Context, entry FetchLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	const query = `
		INSERT INTO fetch_log (id, provider, operation, base, range_start, range_end, duration_ms, outcome, error, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Provider, entry.Operation, entry.Base,
		entry.RangeStart, entry.RangeEnd, entry.DurationMs,
		entry.Outcome, entry.Error, entry.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert fetch log entry: %w", err)
	}
	return nil
}

// ListRecent returns the most recent entries, newest first.
func (r *FetchLogRepository) ListRecent(ctx context.Context, limit int) ([]FetchLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, provider, operation, base, range_start, range_end, duration_ms, outcome, error, fetched_at
		FROM fetch_log
		ORDER BY fetched_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query fetch log: %w", err)
	}
	defer rows.Close()

	entries := make([]FetchLogEntry, 0, limit)
	for rows.Next() {
		var e FetchLogEntry
		if err := rows.Scan(
			&e.ID, &e.Provider, &e.Operation, &e.Base,
			&e.RangeStart, &e.RangeEnd, &e.DurationMs,
			&e.Outcome, &e.Error, &e.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan fetch log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fetch log rows: %w", err)
	}
	return entries, nil
}
