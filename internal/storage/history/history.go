// Package history persists a queryable record of applied operations.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one applied operation as stored in the index.
type Record struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	Account   string          `json:"account"`
	Result    string          `json:"result"`
	Operation json.RawMessage `json:"operation"`
	Events    json.RawMessage `json:"events,omitempty"`
	AppliedAt time.Time       `json:"applied_at"`
}

// Index records applied operations in SQLite and answers history queries.
type Index struct {
	sqlDB *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	type       TEXT NOT NULL,
	account    TEXT NOT NULL,
	result     TEXT NOT NULL,
	operation  TEXT NOT NULL,
	events     TEXT,
	applied_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS item_events (
	seq        INTEGER NOT NULL REFERENCES operations(seq),
	collection TEXT NOT NULL,
	item       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_operations_account ON operations(account);
CREATE INDEX IF NOT EXISTS idx_item_events_item ON item_events(collection, item);
`

// Open opens the history index at path, creating the schema if needed.
func Open(path string) (*Index, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Index{sqlDB: sqlDB}, nil
}

// Close closes the underlying database handle.
func (i *Index) Close() error {
	if i == nil || i.sqlDB == nil {
		return nil
	}
	return i.sqlDB.Close()
}

// ItemRef ties a record to a specific item for per-item lookups.
type ItemRef struct {
	Collection string
	Item       uint32
}

// Append stores one applied operation together with the items it touched.
func (i *Index) Append(ctx context.Context, rec Record, items []ItemRef) (int64, error) {
	tx, err := i.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var events any
	if len(rec.Events) > 0 {
		events = string(rec.Events)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO operations (type, account, result, operation, events, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Type, rec.Account, rec.Result, string(rec.Operation), events,
		rec.AppliedAt.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("operation seq: %w", err)
	}
	for _, ref := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO item_events (seq, collection, item) VALUES (?, ?, ?)`,
			seq, ref.Collection, ref.Item); err != nil {
			return 0, fmt.Errorf("insert item ref: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit history tx: %w", err)
	}
	return seq, nil
}

// ItemHistory returns the records that touched one item, oldest first.
func (i *Index) ItemHistory(ctx context.Context, collection string, item uint32, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := i.sqlDB.QueryContext(ctx,
		`SELECT o.seq, o.type, o.account, o.result, o.operation, o.events, o.applied_at
		 FROM operations o
		 JOIN item_events e ON e.seq = o.seq
		 WHERE e.collection = ? AND e.item = ?
		 ORDER BY o.seq ASC LIMIT ?`,
		collection, item, limit)
	if err != nil {
		return nil, fmt.Errorf("query item history: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// AccountHistory returns the records submitted by one account, oldest first.
func (i *Index) AccountHistory(ctx context.Context, account string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := i.sqlDB.QueryContext(ctx,
		`SELECT seq, type, account, result, operation, events, applied_at
		 FROM operations WHERE account = ? ORDER BY seq ASC LIMIT ?`,
		account, limit)
	if err != nil {
		return nil, fmt.Errorf("query account history: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Count returns the total number of recorded operations.
func (i *Index) Count(ctx context.Context) (int64, error) {
	var n int64
	err := i.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM operations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count operations: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var (
			rec       Record
			operation string
			events    sql.NullString
			appliedAt int64
		)
		if err := rows.Scan(&rec.Seq, &rec.Type, &rec.Account, &rec.Result,
			&operation, &events, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Operation = json.RawMessage(operation)
		if events.Valid {
			rec.Events = json.RawMessage(events.String)
		}
		rec.AppliedAt = time.UnixMilli(appliedAt).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}
