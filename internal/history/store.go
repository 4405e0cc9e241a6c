package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"headergen/internal/infra"
	"headergen/internal/sqlinline"
)

// StatusPending marks rows whose remote task has not reached a terminal state.
// Terminal rows carry the result statuses written by the service.
const StatusPending = "pending"

// Task is one recorded generation attempt.
type Task struct {
	ID        uuid.UUID `json:"id"`
	TaskID    string    `json:"task_id"`
	Prompt    string    `json:"prompt"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Status    string    `json:"status"`
	ImageURL  string    `json:"image_url"`
	ElapsedMS int64     `json:"elapsed_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists generation attempts. A nil Store is a no-op recorder, so
// callers stay oblivious to whether persistence is configured.
type Store struct {
	db infra.SQLExecutor
}

// NewStore wraps the given executor. Pass the SQLRunner so every query is
// marker-checked and logged.
func NewStore(db infra.SQLExecutor) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	if _, err := s.db.Exec(ctx, sqlinline.QHistoryEnsureTable); err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}

// RecordSubmission inserts a pending row and returns its id.
func (s *Store) RecordSubmission(ctx context.Context, taskID, prompt string, width, height int) (uuid.UUID, error) {
	if s == nil || s.db == nil {
		return uuid.Nil, nil
	}
	id := uuid.New()
	if _, err := s.db.Exec(ctx, sqlinline.QHistoryInsertTask, id, taskID, prompt, width, height, StatusPending); err != nil {
		return uuid.Nil, fmt.Errorf("history: record submission: %w", err)
	}
	return id, nil
}

// RecordOutcome stamps a row with the terminal state of its task.
func (s *Store) RecordOutcome(ctx context.Context, id uuid.UUID, status, imageURL string, elapsed time.Duration) error {
	if s == nil || s.db == nil || id == uuid.Nil {
		return nil
	}
	if _, err := s.db.Exec(ctx, sqlinline.QHistoryUpdateOutcome, id, status, imageURL, elapsed.Milliseconds()); err != nil {
		return fmt.Errorf("history: record outcome: %w", err)
	}
	return nil
}

// Recent returns the newest tasks, capped at limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Task, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.queryTasks(ctx, sqlinline.QHistoryRecent, limit)
}

// ListUnresolved returns tasks that never reached a final image, oldest first.
// Rows without a remote task id cannot be re-polled and are skipped.
func (s *Store) ListUnresolved(ctx context.Context, cutoff time.Time, limit int) ([]Task, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.queryTasks(ctx, sqlinline.QHistoryListUnresolved, cutoff, limit)
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var tk Task
		if err := rows.Scan(&tk.ID, &tk.TaskID, &tk.Prompt, &tk.Width, &tk.Height, &tk.Status, &tk.ImageURL, &tk.ElapsedMS, &tk.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		tasks = append(tasks, tk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return tasks, nil
}
