package trail

import "time"

// QueryStatus is the lifecycle state of a Query Record.
type QueryStatus string

const (
	QueryProcessing QueryStatus = "processing"
	QueryCompleted  QueryStatus = "completed"
	QueryFailed     QueryStatus = "failed"
)

// TaskStatus is the lifecycle state of a Task Record.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// QueryRecord is the audit record for one pipeline invocation. Records are
// never deleted automatically; they are the system's audit trail.
type QueryRecord struct {
	ID          string      `json:"id"`
	RawText     string      `json:"raw_text"`
	Status      QueryStatus `json:"status"`
	ResultIDs   []string    `json:"result_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// TaskRecord tracks which stages an invocation is expected to run.
// It exists purely for observability; no stage reads it.
type TaskRecord struct {
	ID          string     `json:"id"`
	QueryID     string     `json:"query_id"`
	Stages      []string   `json:"stages"`
	Status      TaskStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Entry is one immutable conversation log line. Entries are append-only and
// their insertion order reconstructs the causal trace of a pipeline run.
type Entry struct {
	Seq       int64     `json:"seq,omitempty"`
	QueryID   string    `json:"query_id,omitempty"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
