package trail

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scoutline/scoutline/internal/db"
)

// Store persists query records, task records, and conversation entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// newID returns a short human-scannable identifier with the given prefix.
func newID(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

// CreateQuery inserts a fresh Query Record in the processing state.
// Identifiers are never reused, even for identical query text.
func (s *Store) CreateQuery(ctx context.Context, rawText string) (*QueryRecord, error) {
	id := newID("q")
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO queries (id, raw_text, status) VALUES (?, ?, ?)",
		id, rawText, string(QueryProcessing),
	)
	if err != nil {
		return nil, fmt.Errorf("creating query record: %w", err)
	}
	return s.GetQuery(ctx, id)
}

// CompleteQuery marks a query completed and attaches the ranked result ids.
func (s *Store) CompleteQuery(ctx context.Context, id string, resultIDs []string) error {
	ids, err := json.Marshal(resultIDs)
	if err != nil {
		return fmt.Errorf("marshalling result ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE queries SET status = ?, result_ids = ?, completed_at = datetime('now')
		WHERE id = ?`,
		string(QueryCompleted), string(ids), id,
	)
	if err != nil {
		return fmt.Errorf("completing query %s: %w", id, err)
	}
	return nil
}

// FailQuery marks a query failed.
func (s *Store) FailQuery(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE queries SET status = ?, completed_at = datetime('now')
		WHERE id = ?`,
		string(QueryFailed), id,
	)
	if err != nil {
		return fmt.Errorf("failing query %s: %w", id, err)
	}
	return nil
}

// GetQuery retrieves a single query record.
func (s *Store) GetQuery(ctx context.Context, id string) (*QueryRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, raw_text, status, result_ids, created_at, completed_at
		FROM queries WHERE id = ?`, id)

	q, err := scanQuery(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting query %s: %w", id, err)
	}
	return q, nil
}

// ListQueries returns recent query records, newest first.
func (s *Store) ListQueries(ctx context.Context, limit int) ([]QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, raw_text, status, result_ids, created_at, completed_at
		FROM queries ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing queries: %w", err)
	}
	defer rows.Close()

	var out []QueryRecord
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// CreateTask inserts a Task Record in the in_progress state.
func (s *Store) CreateTask(ctx context.Context, queryID string, stages []string) (*TaskRecord, error) {
	id := newID("t")
	stagesJSON, err := json.Marshal(stages)
	if err != nil {
		return nil, fmt.Errorf("marshalling stages: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO tasks (id, query_id, stages, status) VALUES (?, ?, ?, ?)",
		id, queryID, string(stagesJSON), string(TaskInProgress),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task record: %w", err)
	}
	return s.GetTask(ctx, id)
}

// CompleteTask marks a task completed.
func (s *Store) CompleteTask(ctx context.Context, id string) error {
	return s.setTaskStatus(ctx, id, TaskCompleted)
}

// FailTask marks a task failed.
func (s *Store) FailTask(ctx context.Context, id string) error {
	return s.setTaskStatus(ctx, id, TaskFailed)
}

func (s *Store) setTaskStatus(ctx context.Context, id string, status TaskStatus) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, completed_at = datetime('now')
		WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("setting task %s to %s: %w", id, status, err)
	}
	return nil
}

// GetTask retrieves a single task record.
func (s *Store) GetTask(ctx context.Context, id string) (*TaskRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, query_id, stages, status, started_at, completed_at
		FROM tasks WHERE id = ?`, id)

	var (
		t           TaskRecord
		stagesJSON  string
		status      string
		startedAt   string
		completedAt sql.NullString
	)
	err := row.Scan(&t.ID, &t.QueryID, &stagesJSON, &status, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	t.Status = TaskStatus(status)
	json.Unmarshal([]byte(stagesJSON), &t.Stages)
	t.StartedAt = parseDBTime(startedAt)
	if completedAt.Valid {
		ts := parseDBTime(completedAt.String)
		t.CompletedAt = &ts
	}
	return &t, nil
}

// GetTaskForQuery retrieves the task record for an invocation.
func (s *Store) GetTaskForQuery(ctx context.Context, queryID string) (*TaskRecord, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM tasks WHERE query_id = ?", queryID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up task for query %s: %w", queryID, err)
	}
	return s.GetTask(ctx, id)
}

// AppendEntry adds one conversation entry to a query's trail. Entries are
// never updated or deleted.
func (s *Store) AppendEntry(ctx context.Context, queryID, stage, message, payload string) error {
	var payloadArg any
	if payload != "" {
		payloadArg = payload
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversation_entries (query_id, stage, message, payload) VALUES (?, ?, ?, ?)",
		queryID, stage, message, payloadArg,
	)
	if err != nil {
		return fmt.Errorf("appending conversation entry: %w", err)
	}
	return nil
}

// Entries returns a query's conversation log in insertion order.
func (s *Store) Entries(ctx context.Context, queryID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, query_id, stage, message, payload, created_at
		FROM conversation_entries WHERE query_id = ? ORDER BY seq`, queryID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			payload   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.Seq, &e.QueryID, &e.Stage, &e.Message, &payload, &createdAt); err != nil {
			return nil, err
		}
		if payload.Valid {
			e.Payload = payload.String
		}
		e.CreatedAt = parseDBTime(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanQuery(sc interface{ Scan(...any) error }) (*QueryRecord, error) {
	var (
		q           QueryRecord
		status      string
		resultIDs   string
		createdAt   string
		completedAt sql.NullString
	)
	err := sc.Scan(&q.ID, &q.RawText, &status, &resultIDs, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}

	q.Status = QueryStatus(status)
	json.Unmarshal([]byte(resultIDs), &q.ResultIDs)
	q.CreatedAt = parseDBTime(createdAt)
	if completedAt.Valid {
		ts := parseDBTime(completedAt.String)
		q.CompletedAt = &ts
	}
	return &q, nil
}

func parseDBTime(s string) time.Time {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
