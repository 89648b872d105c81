package infra

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type recordingSession struct {
	queries []string
	execErr error
}

func (s *recordingSession) Exec(_ context.Context, query string, _ ...any) (pgconn.CommandTag, error) {
	s.queries = append(s.queries, query)
	return pgconn.NewCommandTag("UPDATE 1"), s.execErr
}

func (s *recordingSession) QueryRow(_ context.Context, query string, _ ...any) pgx.Row {
	s.queries = append(s.queries, query)
	return errorRow{err: pgx.ErrNoRows}
}

func (s *recordingSession) Query(_ context.Context, query string, _ ...any) (pgx.Rows, error) {
	s.queries = append(s.queries, query)
	return nil, errors.New("not supported")
}

func (s *recordingSession) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("not supported")
}

func TestExtractMarker(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		marker  string
		body    string
		wantErr bool
	}{
		{
			name:   "valid",
			query:  "\n--sql 1e8bf72b-5f5b-4fa0-a7d9-2f6aed0ab4e9\nselect 1;\n",
			marker: "1e8bf72b-5f5b-4fa0-a7d9-2f6aed0ab4e9",
			body:   "select 1;",
		},
		{name: "missing marker", query: "select 1;", wantErr: true},
		{name: "uppercase uuid", query: "--sql 1E8BF72B-5F5B-4FA0-A7D9-2F6AED0AB4E9\nselect 1;", wantErr: true},
		{name: "empty", query: "   ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			marker, body, err := extractMarker(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got marker %q", marker)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if marker != tc.marker || body != tc.body {
				t.Fatalf("got (%q, %q), want (%q, %q)", marker, body, tc.marker, tc.body)
			}
		})
	}
}

func TestSQLRunnerStripsMarkerBeforeExecuting(t *testing.T) {
	sess := &recordingSession{}
	r := &SQLRunner{db: sess, Logger: zerolog.Nop()}

	tag, err := r.Exec(context.Background(), "--sql 7055d0fd-5b37-48ca-a575-771277a9c30b\nupdate pools set version = version + 1;")
	if err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("RowsAffected = %d, want 1", tag.RowsAffected())
	}
	if len(sess.queries) != 1 || sess.queries[0] != "update pools set version = version + 1;" {
		t.Fatalf("session saw %#v", sess.queries)
	}
}

func TestSQLRunnerRefusesUnmarkedQueries(t *testing.T) {
	sess := &recordingSession{}
	r := &SQLRunner{db: sess, Logger: zerolog.Nop()}

	if _, err := r.Exec(context.Background(), "delete from pools;"); err == nil {
		t.Fatal("expected marker error")
	}
	if err := r.QueryRow(context.Background(), "select 1;").Scan(); err == nil {
		t.Fatal("expected marker error from QueryRow")
	}
	if _, err := r.Query(context.Background(), "select 1;"); err == nil {
		t.Fatal("expected marker error from Query")
	}
	if len(sess.queries) != 0 {
		t.Fatalf("unmarked queries reached the session: %#v", sess.queries)
	}
}

func TestSQLRunnerPropagatesErrors(t *testing.T) {
	sess := &recordingSession{execErr: &pgconn.PgError{Code: "40001"}}
	r := &SQLRunner{db: sess, Logger: zerolog.Nop()}

	_, err := r.Exec(context.Background(), "--sql 7055d0fd-5b37-48ca-a575-771277a9c30b\nselect 1;")
	if PgErrorCode(err) != "40001" {
		t.Fatalf("PgErrorCode = %q, want 40001", PgErrorCode(err))
	}
	if !IsNoRows(r.QueryRow(context.Background(), "--sql 7055d0fd-5b37-48ca-a575-771277a9c30b\nselect 1;").Scan()) {
		t.Fatal("expected no rows")
	}
	if PgErrorCode(fmt.Errorf("wrapped: %w", errors.New("plain"))) != "" {
		t.Fatal("plain errors carry no SQLSTATE")
	}
}
