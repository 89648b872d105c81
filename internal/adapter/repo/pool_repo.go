package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"donationhub/internal/domain"
	"donationhub/internal/infra"
	"donationhub/internal/sqlinline"
)

// PoolRepositoryPG implements domain.PoolRepository. Aggregate writes compare
// the version column and bump it.
type PoolRepositoryPG struct {
	runner *infra.SQLRunner
}

// NewPoolRepository creates a new pool repository backed by PostgreSQL.
func NewPoolRepository(runner *infra.SQLRunner) *PoolRepositoryPG {
	return &PoolRepositoryPG{runner: runner}
}

// Create inserts a pool together with any initial members.
func (r *PoolRepositoryPG) Create(ctx context.Context, p *domain.Pool) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = domain.PoolActive
	}
	if p.Version == 0 {
		p.Version = 1
	}
	if p.Members == nil {
		p.Members = []string{}
	}
	err := r.runner.InTx(ctx, func(ctx context.Context, tx *infra.SQLRunner) error {
		row := tx.QueryRow(ctx, sqlinline.QInsertPool,
			p.ID,
			p.Name,
			p.TargetAmount.String(),
			p.CurrentAmount.String(),
			string(p.Status),
			p.Version,
		)
		if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		if len(p.Members) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, sqlinline.QInsertPoolMembers, p.ID, p.Members)
		return err
	})
	return mapErr(err)
}

// GetByID fetches a pool with its members.
func (r *PoolRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Pool, error) {
	return scanPool(r.runner.QueryRow(ctx, sqlinline.QGetPool, id))
}

// List returns every pool in creation order.
func (r *PoolRepositoryPG) List(ctx context.Context) ([]domain.Pool, error) {
	return r.list(ctx, sqlinline.QListPools)
}

// ListActive returns active pools in creation order.
func (r *PoolRepositoryPG) ListActive(ctx context.Context) ([]domain.Pool, error) {
	return r.list(ctx, sqlinline.QListActivePools)
}

func (r *PoolRepositoryPG) list(ctx context.Context, query string) ([]domain.Pool, error) {
	rows, err := r.runner.Query(ctx, query)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var pools []domain.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return pools, nil
}

// Credit adds amount to the aggregate and memberID to the member set.
func (r *PoolRepositoryPG) Credit(ctx context.Context, poolID string, amount decimal.Decimal, memberID string, expectedVersion int) (*domain.Pool, error) {
	var updated int
	if err := r.runner.QueryRow(ctx, sqlinline.QCreditPool, poolID, amount.String(), memberID, expectedVersion).Scan(&updated); err != nil {
		return nil, mapErr(err)
	}
	if updated == 0 {
		return nil, versionMismatch(ctx, r.runner, poolID, expectedVersion)
	}
	return r.GetByID(ctx, poolID)
}

// Restate overwrites the aggregate and member set.
func (r *PoolRepositoryPG) Restate(ctx context.Context, poolID string, current decimal.Decimal, members []string, expectedVersion int) (*domain.Pool, error) {
	if members == nil {
		members = []string{}
	}
	var out *domain.Pool
	err := r.runner.InTx(ctx, func(ctx context.Context, tx *infra.SQLRunner) error {
		tag, err := tx.Exec(ctx, sqlinline.QRestatePool, poolID, current.String(), expectedVersion)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return versionMismatch(ctx, tx, poolID, expectedVersion)
		}
		if _, err := tx.Exec(ctx, sqlinline.QClearPoolMembers, poolID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sqlinline.QInsertPoolMembers, poolID, members); err != nil {
			return err
		}
		out, err = scanPool(tx.QueryRow(ctx, sqlinline.QGetPool, poolID))
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// SetStatus changes the administrative status.
func (r *PoolRepositoryPG) SetStatus(ctx context.Context, poolID string, status domain.PoolStatus, expectedVersion int) (*domain.Pool, error) {
	tag, err := r.runner.Exec(ctx, sqlinline.QSetPoolStatus, poolID, string(status), expectedVersion)
	if err != nil {
		return nil, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, versionMismatch(ctx, r.runner, poolID, expectedVersion)
	}
	return r.GetByID(ctx, poolID)
}

func versionMismatch(ctx context.Context, db infra.SQLExecutor, poolID string, expected int) error {
	var version int
	if err := db.QueryRow(ctx, sqlinline.QGetPoolVersion, poolID).Scan(&version); err != nil {
		return mapErr(err)
	}
	return fmt.Errorf("pool %s at version %d, expected %d: %w", poolID, version, expected, domain.ErrConcurrencyConflict)
}

func scanPool(row pgx.Row) (*domain.Pool, error) {
	var (
		p      domain.Pool
		status string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.TargetAmount, &p.CurrentAmount, &p.Members, &status, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if p.Members == nil {
		p.Members = []string{}
	}
	p.Status = domain.PoolStatus(status)
	return &p, nil
}
