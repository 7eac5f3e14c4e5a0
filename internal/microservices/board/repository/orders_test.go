package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRows struct {
	rows [][]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos-1], nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d columns, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

type fakeQuerier struct {
	rows *fakeRows
	err  error
	sql  string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.sql = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func intp(v int) *int { return &v }

func TestListActive(t *testing.T) {
	started := time.Date(2026, 3, 1, 14, 17, 0, 0, time.Local)
	q := &fakeQuerier{rows: &fakeRows{rows: [][]any{
		{"12", "5", "COOKING", intp(900), &started, intp(120)},
		{"13", "A2", "NEW", (*int)(nil), (*time.Time)(nil), (*int)(nil)},
	}}}

	orders, err := NewOrdersRepository(q).ListActive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(q.sql, "status <> 'READY'") || !strings.Contains(q.sql, "ORDER BY created_at, id") {
		t.Fatalf("unexpected query %s", q.sql)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	first := orders[0]
	if first.ID != "12" || first.Table != "5" || *first.ElapsedSeconds != 120 || first.StartedAtLabel != "14:17" {
		t.Fatalf("unexpected first order %+v", first)
	}
	second := orders[1]
	if second.InitialDuration != nil || second.ElapsedSeconds != nil || second.StartedAtLabel != "" {
		t.Fatalf("unexpected second order %+v", second)
	}
}

func TestListActiveErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := NewOrdersRepository(&fakeQuerier{err: boom}).ListActive(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected query error, got %v", err)
	}
	q := &fakeQuerier{rows: &fakeRows{err: boom}}
	if _, err := NewOrdersRepository(q).ListActive(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected iteration error, got %v", err)
	}
}
