package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"donationhub/internal/domain"
	"donationhub/internal/infra"
	"donationhub/internal/sqlinline"
)

// ContributionRepositoryPG implements domain.ContributionRepository using PostgreSQL.
type ContributionRepositoryPG struct {
	db infra.SQLExecutor
}

// NewContributionRepository creates a new contribution repo.
func NewContributionRepository(db infra.SQLExecutor) *ContributionRepositoryPG {
	return &ContributionRepositoryPG{db: db}
}

// Create inserts a new contribution record.
func (r *ContributionRepositoryPG) Create(ctx context.Context, c *domain.Contribution) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	var poolID string
	if c.Pooled() {
		poolID = *c.PoolID
	}
	row := r.db.QueryRow(ctx, sqlinline.QInsertContribution,
		c.ID,
		c.PublicID,
		c.ContributorID,
		poolID,
		c.Amount.String(),
		string(c.Method),
		string(c.Status),
		c.Note,
		c.Country,
	)
	return mapErr(row.Scan(&c.CreatedAt, &c.UpdatedAt))
}

// GetByID fetches a contribution by id.
func (r *ContributionRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Contribution, error) {
	return scanContribution(r.db.QueryRow(ctx, sqlinline.QGetContribution, id))
}

// Transition persists the decision fields while the stored status equals from.
func (r *ContributionRepositoryPG) Transition(ctx context.Context, c *domain.Contribution, from domain.ContributionStatus) error {
	err := r.db.QueryRow(ctx, sqlinline.QTransitionContribution,
		c.ID,
		string(c.Status),
		c.PublicID,
		c.DecidedBy,
		c.DecidedAt,
		string(from),
	).Scan(&c.UpdatedAt)
	if err == nil {
		return nil
	}
	if !infra.IsNoRows(err) {
		return mapErr(err)
	}

	var current string
	if err := r.db.QueryRow(ctx, sqlinline.QGetContributionStatus, c.ID).Scan(&current); err != nil {
		return mapErr(err)
	}
	return fmt.Errorf("contribution %s is %s: %w", c.ID, current, domain.ErrInvalidState)
}

// ListCountedByPool returns contributions counting toward the pool, oldest first.
func (r *ContributionRepositoryPG) ListCountedByPool(ctx context.Context, poolID string) ([]domain.Contribution, error) {
	statuses := make([]string, 0, len(domain.CountedStatuses))
	for _, s := range domain.CountedStatuses {
		statuses = append(statuses, string(s))
	}

	rows, err := r.db.Query(ctx, sqlinline.QListCountedContributionsByPool, poolID, statuses)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var items []domain.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return items, nil
}

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var (
		c         domain.Contribution
		poolID    string
		method    string
		status    string
		decidedAt *time.Time
	)
	if err := row.Scan(&c.ID, &c.PublicID, &c.ContributorID, &poolID, &c.Amount, &method, &status,
		&c.Note, &c.Country, &c.DecidedBy, &decidedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if poolID != "" {
		c.PoolID = &poolID
	}
	c.Method = domain.PaymentMethod(method)
	c.Status = domain.ContributionStatus(status)
	c.DecidedAt = decidedAt
	return &c, nil
}
