package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	s := AttachDB(db, "sqlite")
	if _, err := s.Exec(context.Background(), `CREATE TABLE kv (k TEXT PRIMARY KEY, n INTEGER NOT NULL)`); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRebind(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"UPDATE counter SET value = value + 1 WHERE country = ? AND city = ?", "UPDATE counter SET value = value + 1 WHERE country = $1 AND city = $2"},
		{"INSERT INTO t VALUES (?, '?', ?)", "INSERT INTO t VALUES ($1, '?', $2)"},
	}
	for _, tc := range tests {
		if got := Rebind(tc.in); got != tc.want {
			t.Errorf("Rebind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRebindOnlyForPostgres(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ?"
	if got := (&Store{driver: "sqlite"}).rebind(q); got != q {
		t.Errorf("sqlite rebind = %q, want unchanged", got)
	}
	if got := (&Store{driver: "pgx"}).rebind(q); got != "SELECT * FROM t WHERE a = $1" {
		t.Errorf("pgx rebind = %q", got)
	}
}

func TestExecuteKeepsColumnOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Exec(ctx, `INSERT INTO kv (k, n) VALUES (?, ?)`, "a", 3); err != nil {
		t.Fatal(err)
	}
	rows, err := s.Execute(ctx, `SELECT n, k FROM kv`)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows.Columns) != 2 || rows.Columns[0] != "n" || rows.Columns[1] != "k" {
		t.Fatalf("Columns = %v, want [n k]", rows.Columns)
	}
	if rows.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rows.Len())
	}
	if got := rows.Values[0][1]; got != "a" {
		t.Errorf("k = %#v, want \"a\"", got)
	}
	if got := rows.Values[0][0]; got != int64(3) {
		t.Errorf("n = %#v, want int64(3)", got)
	}
	if rows.Index("K") != 1 || rows.Index("missing") != -1 {
		t.Errorf("Index lookups wrong: K=%d missing=%d", rows.Index("K"), rows.Index("missing"))
	}
}

func TestExecuteBatchCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.ExecuteBatch(ctx, []Statement{
		NewStatement(`INSERT INTO kv (k, n) VALUES (?, 0)`, "a"),
		NewStatement(`UPDATE kv SET n = n + 1 WHERE k = ?`, "a"),
	})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := s.Execute(ctx, `SELECT n FROM kv WHERE k = ?`, "a")
	if err != nil {
		t.Fatal(err)
	}
	if rows.Len() != 1 || rows.Values[0][0] != int64(1) {
		t.Errorf("rows = %v, want [[1]]", rows.Values)
	}
}

func TestExecuteBatchRollsBackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.ExecuteBatch(ctx, []Statement{
		NewStatement(`INSERT INTO kv (k, n) VALUES (?, 0)`, "a"),
		NewStatement(`UPDATE kv SET n = n + 1 WHERE k = ?`, "a"),
		NewStatement(`INSERT INTO missing_table VALUES (?)`, 1),
	})
	if err == nil {
		t.Fatal("ExecuteBatch succeeded, want error")
	}
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not *store.Error", err)
	}
	if se.Op != "batch[2]" {
		t.Errorf("Op = %q, want batch[2]", se.Op)
	}
	rows, err := s.Execute(ctx, `SELECT k FROM kv`)
	if err != nil {
		t.Fatal(err)
	}
	if rows.Len() != 0 {
		t.Errorf("rows after rollback = %v, want none", rows.Values)
	}
}

func TestExecuteReportsStoreError(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Execute(context.Background(), `SELECT * FROM nope`)
	var se *Error
	if !errors.As(err, &se) || se.Op != "query" {
		t.Fatalf("err = %v, want store query error", err)
	}
	if se.Unwrap() == nil {
		t.Error("Unwrap() = nil, want driver error")
	}
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.ExecuteBatch(ctx, []Statement{NewStatement(`INSERT INTO kv (k, n) VALUES (?, 0)`, "x")}); err == nil {
		t.Fatal("ExecuteBatch with cancelled context succeeded, want error")
	}
}
