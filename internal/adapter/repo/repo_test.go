package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"donationhub/internal/domain"
	"donationhub/internal/sqlinline"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type call struct {
	query string
	args  []any
}

// stubExecutor answers QueryRow calls in order from rows.
type stubExecutor struct {
	calls []call
	rows  []simpleRow
}

func (s *stubExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, call{query, args})
	return pgconn.CommandTag{}, nil
}

func (s *stubExecutor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	s.calls = append(s.calls, call{query, args})
	if len(s.rows) == 0 {
		return simpleRow{}
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row
}

func (s *stubExecutor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	s.calls = append(s.calls, call{query, args})
	return nil, errors.New("query not supported in stub")
}

func statusRow(status string) simpleRow {
	return simpleRow{scan: func(dest ...any) error {
		*dest[0].(*string) = status
		return nil
	}}
}

func TestContributorGetByIDMapsNoRows(t *testing.T) {
	db := &stubExecutor{}
	_, err := NewContributorRepository(db).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if db.calls[0].query != sqlinline.QGetContributorByID {
		t.Fatalf("unexpected query %q", db.calls[0].query)
	}
}

func TestContributorCreateAssignsIDAndRole(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	db := &stubExecutor{rows: []simpleRow{{scan: func(dest ...any) error {
		*dest[0].(*time.Time) = now
		*dest[1].(*time.Time) = now
		return nil
	}}}}
	c := &domain.Contributor{Name: "Ayu", Email: "ayu@example.com", Locale: "id"}

	if err := NewContributorRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.ID == "" || c.Role != domain.RoleDonor || !c.CreatedAt.Equal(now) {
		t.Fatalf("unexpected contributor %+v", c)
	}
	args := db.calls[0].args
	if args[4] != "donor" || args[7] != "0" {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestContributionTransition(t *testing.T) {
	cases := []struct {
		name string
		rows []simpleRow
		want error
	}{
		{
			name: "applied",
			rows: []simpleRow{{scan: func(dest ...any) error {
				*dest[0].(*time.Time) = time.Now()
				return nil
			}}},
		},
		{name: "already decided", rows: []simpleRow{{}, statusRow("rejected")}, want: domain.ErrInvalidState},
		{name: "missing", rows: []simpleRow{{}, {}}, want: domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := &stubExecutor{rows: tc.rows}
			c := &domain.Contribution{ID: "c-1", Status: domain.ContributionConfirmed}
			err := NewContributionRepository(db).Transition(context.Background(), c, domain.ContributionProvisional)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if tc.want == domain.ErrInvalidState && !strings.Contains(err.Error(), "rejected") {
				t.Fatalf("error should name the stored status: %v", err)
			}
		})
	}
}

func TestContributionCreatePassesPoolReference(t *testing.T) {
	db := &stubExecutor{rows: []simpleRow{{scan: func(dest ...any) error { return nil }}}}
	pool := "p-1"
	c := &domain.Contribution{
		ContributorID: "u-1",
		PoolID:        &pool,
		Amount:        decimal.RequireFromString("250.50"),
		Method:        domain.PaymentManual,
		Status:        domain.ContributionProvisional,
	}
	if err := NewContributionRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	args := db.calls[0].args
	if args[3] != "p-1" || args[4] != "250.5" || args[6] != "provisional" {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestNotificationMarkReadRequiresVisibility(t *testing.T) {
	db := &stubExecutor{rows: []simpleRow{{scan: func(dest ...any) error {
		*dest[0].(*int) = 0
		return nil
	}}}}
	err := NewNotificationRepository(db).MarkRead(context.Background(), "n-1", "u-1", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if topics, ok := db.calls[0].args[2].([]string); !ok || topics == nil {
		t.Fatalf("topics must be a non-nil array, got %#v", db.calls[0].args[2])
	}
}

func TestMapErr(t *testing.T) {
	cases := []struct {
		in   error
		want error
	}{
		{pgx.ErrNoRows, domain.ErrNotFound},
		{&pgconn.PgError{Code: "22P02"}, domain.ErrNotFound},
		{&pgconn.PgError{Code: "23503"}, domain.ErrNotFound},
		{fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), domain.ErrConcurrencyConflict},
		{&pgconn.PgError{Code: "40P01"}, domain.ErrConcurrencyConflict},
		{domain.ErrInvalidState, domain.ErrInvalidState},
	}
	for _, tc := range cases {
		if got := mapErr(tc.in); !errors.Is(got, tc.want) {
			t.Errorf("mapErr(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if mapErr(nil) != nil {
		t.Fatal("mapErr(nil) must be nil")
	}
}
