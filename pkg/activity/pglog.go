package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgLog is a PostgreSQL-backed Log with hash-chained integrity.
type PgLog struct {
	pool *pgxpool.Pool
}

// NewPgLog creates a PgLog.
func NewPgLog(pool *pgxpool.Pool) *PgLog {
	return &PgLog{pool: pool}
}

// EnsureTable creates the activity table if it doesn't exist.
func (l *PgLog) EnsureTable(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS activity (
			id        TEXT PRIMARY KEY,
			type      TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			task_id   INTEGER NOT NULL DEFAULT 0,
			content   JSONB NOT NULL DEFAULT '{}',
			hash      TEXT NOT NULL,
			prev_hash TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_activity_timestamp_id ON activity(timestamp, id)`)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_activity_task ON activity(task_id)`)
	return err
}

// Append creates and stores a new event, computing the hash chain.
func (l *PgLog) Append(ctx context.Context, eventType string, taskID int, content map[string]any) (*Event, error) {
	if content == nil {
		content = map[string]any{}
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize appenders so two events never share a prev_hash.
	if _, err := tx.Exec(ctx, `LOCK TABLE activity IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, fmt.Errorf("lock activity: %w", err)
	}

	var prevHash string
	err = tx.QueryRow(ctx, `SELECT hash FROM activity ORDER BY timestamp DESC, id DESC LIMIT 1`).Scan(&prevHash)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("read chain head: %w", err)
	}

	e := &Event{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Type:      eventType,
		Timestamp: time.Now().Truncate(time.Microsecond),
		TaskID:    taskID,
		Content:   content,
		PrevHash:  prevHash,
	}
	e.Hash = computeHash(prevHash, e.ID, e.Type, e.TaskID, e.Timestamp, contentJSON)

	_, err = tx.Exec(ctx, `
		INSERT INTO activity (id, type, timestamp, task_id, content, hash, prev_hash)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`,
		e.ID, e.Type, e.Timestamp, e.TaskID, string(contentJSON), e.Hash, e.PrevHash)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit activity: %w", err)
	}
	return e, nil
}

// Recent returns the most recent events in reverse chronological order.
func (l *PgLog) Recent(ctx context.Context, limit int) ([]Event, error) {
	return l.scanMany(ctx, `
		SELECT id, type, timestamp, task_id, content, hash, prev_hash
		FROM activity ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
}

// Since returns events created after the given ID, for the live stream.
func (l *PgLog) Since(ctx context.Context, afterID string, limit int) ([]Event, error) {
	return l.scanMany(ctx, `
		SELECT id, type, timestamp, task_id, content, hash, prev_hash
		FROM activity WHERE (timestamp, id) > (SELECT timestamp, id FROM activity WHERE id = $1)
		ORDER BY timestamp ASC, id ASC LIMIT $2`, afterID, limit)
}

// Count returns the total number of events.
func (l *PgLog) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}

// VerifyChain walks the entire chain chronologically and verifies hash integrity.
func (l *PgLog) VerifyChain(ctx context.Context) error {
	events, err := l.scanMany(ctx, `
		SELECT id, type, timestamp, task_id, content, hash, prev_hash
		FROM activity ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("verify chain query: %w", err)
	}
	prevHash := ""
	for i, e := range events {
		if err := verifyEvent(i, e, prevHash); err != nil {
			return err
		}
		prevHash = e.Hash
	}
	return nil
}

func (l *PgLog) scanMany(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var contentJSON []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.Timestamp, &e.TaskID, &contentJSON, &e.Hash, &e.PrevHash); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(contentJSON, &e.Content); err != nil {
			return nil, fmt.Errorf("unmarshal content: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return events, nil
}
