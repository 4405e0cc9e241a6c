package history

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeExecutor struct {
	execQueries  []string
	execArgs     [][]any
	execErr      error
	queryQueries []string
	queryArgs    [][]any
	queryRows    [][]any
	queryErr     error
}

func (f *fakeExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execQueries = append(f.execQueries, query)
	f.execArgs = append(f.execArgs, args)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return fakeRow{}
}

func (f *fakeExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	f.queryQueries = append(f.queryQueries, query)
	f.queryArgs = append(f.queryArgs, args)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.queryRows}, nil
}

type fakeRow struct{}

func (fakeRow) Scan(dest ...any) error { return pgx.ErrNoRows }

type fakeRows struct {
	noopRows
	rows [][]any
	idx  int
}

func (r *fakeRows) Close() {}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan arity %d, row has %d", len(dest), len(row))
	}
	for i, src := range row {
		switch d := dest[i].(type) {
		case *uuid.UUID:
			*d = src.(uuid.UUID)
		case *string:
			*d = src.(string)
		case *int:
			*d = src.(int)
		case *int64:
			*d = src.(int64)
		case *time.Time:
			*d = src.(time.Time)
		default:
			return fmt.Errorf("unsupported scan target %T", dest[i])
		}
	}
	return nil
}

type noopRows struct{}

func (noopRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (noopRows) Conn() *pgx.Conn { return nil }

func (noopRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (noopRows) Values() ([]any, error) { return nil, fmt.Errorf("values not supported") }

func (noopRows) RawValues() [][]byte { return nil }

func TestRecordSubmissionInsertsPendingRow(t *testing.T) {
	db := &fakeExecutor{}
	store := NewStore(db)

	id, err := store.RecordSubmission(context.Background(), "T1", "a quiet harbor", 2848, 1212)
	if err != nil {
		t.Fatalf("record submission: %v", err)
	}
	if id == uuid.Nil {
		t.Fatalf("expected a row id")
	}
	if len(db.execQueries) != 1 || !strings.Contains(db.execQueries[0], "insert into generation_tasks") {
		t.Fatalf("unexpected queries: %v", db.execQueries)
	}
	args := db.execArgs[0]
	if args[1] != "T1" || args[2] != "a quiet harbor" {
		t.Fatalf("unexpected args: %v", args)
	}
	if args[5] != StatusPending {
		t.Fatalf("status arg = %v, want %q", args[5], StatusPending)
	}
}

func TestRecordOutcomeStampsRow(t *testing.T) {
	db := &fakeExecutor{}
	store := NewStore(db)
	id := uuid.New()

	err := store.RecordOutcome(context.Background(), id, "success", "https://img.test/1.png", 15*time.Second)
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if len(db.execQueries) != 1 || !strings.Contains(db.execQueries[0], "update generation_tasks") {
		t.Fatalf("unexpected queries: %v", db.execQueries)
	}
	args := db.execArgs[0]
	if args[0] != id || args[1] != "success" {
		t.Fatalf("unexpected args: %v", args)
	}
	if args[3] != int64(15000) {
		t.Fatalf("elapsed arg = %v, want 15000", args[3])
	}
}

func TestRecordOutcomeSkipsNilID(t *testing.T) {
	db := &fakeExecutor{}
	store := NewStore(db)

	if err := store.RecordOutcome(context.Background(), uuid.Nil, "success", "", time.Second); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if len(db.execQueries) != 0 {
		t.Fatalf("expected no queries for nil id, got %v", db.execQueries)
	}
}

func TestNilStoreIsNoOp(t *testing.T) {
	var store *Store

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	id, err := store.RecordSubmission(context.Background(), "T1", "prompt", 1, 1)
	if err != nil {
		t.Fatalf("record submission: %v", err)
	}
	if id != uuid.Nil {
		t.Fatalf("nil store returned id %v", id)
	}
	if err := store.RecordOutcome(context.Background(), uuid.New(), "success", "", 0); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	tasks, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if tasks != nil {
		t.Fatalf("nil store returned tasks %v", tasks)
	}
}

func TestListUnresolvedQueriesOldRows(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	db := &fakeExecutor{queryRows: [][]any{
		{id, "T7", "city at night", 1024, 1024, "pending", "", int64(0), now.Add(-time.Hour)},
	}}
	store := NewStore(db)

	cutoff := now.Add(-time.Minute)
	tasks, err := store.ListUnresolved(context.Background(), cutoff, 0)
	if err != nil {
		t.Fatalf("list unresolved: %v", err)
	}
	if len(tasks) != 1 || tasks[0].TaskID != "T7" {
		t.Fatalf("tasks = %+v", tasks)
	}
	if len(db.queryQueries) != 1 || !strings.Contains(db.queryQueries[0], "status in ('pending', 'timeout')") {
		t.Fatalf("unexpected queries: %v", db.queryQueries)
	}
	args := db.queryArgs[0]
	if got, ok := args[0].(time.Time); !ok || !got.Equal(cutoff) {
		t.Fatalf("cutoff arg = %v, want %v", args[0], cutoff)
	}
	if args[1] != 20 {
		t.Fatalf("limit arg = %v, want default 20", args[1])
	}
}

func TestRecentScansRows(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	db := &fakeExecutor{queryRows: [][]any{
		{id, "T1", "harbor at dawn", 2848, 1212, "success", "https://img.test/1.png", int64(12000), now},
	}}
	store := NewStore(db)

	tasks, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("task count = %d, want 1", len(tasks))
	}
	tk := tasks[0]
	if tk.ID != id || tk.TaskID != "T1" || tk.Status != "success" {
		t.Fatalf("task = %+v", tk)
	}
	if tk.Width != 2848 || tk.Height != 1212 || tk.ElapsedMS != 12000 {
		t.Fatalf("task = %+v", tk)
	}
	if !tk.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", tk.CreatedAt, now)
	}
}
