package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"donationhub/internal/domain"
	"donationhub/internal/infra"
	"donationhub/internal/sqlinline"
)

// ContributorRepositoryPG implements domain.ContributorRepository backed by PostgreSQL.
type ContributorRepositoryPG struct {
	db infra.SQLExecutor
}

// NewContributorRepository creates a new ContributorRepositoryPG.
func NewContributorRepository(db infra.SQLExecutor) *ContributorRepositoryPG {
	return &ContributorRepositoryPG{db: db}
}

// Create inserts a contributor, assigning an id when none is set.
func (r *ContributorRepositoryPG) Create(ctx context.Context, c *domain.Contributor) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Role == "" {
		c.Role = domain.RoleDonor
	}
	row := r.db.QueryRow(ctx, sqlinline.QInsertContributor,
		c.ID,
		c.PublicID,
		c.Name,
		c.Email,
		string(c.Role),
		c.Locale,
		c.DonationCount,
		c.TotalDonated.String(),
	)
	return mapErr(row.Scan(&c.CreatedAt, &c.UpdatedAt))
}

// GetByID fetches a contributor by id.
func (r *ContributorRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Contributor, error) {
	return scanContributor(r.db.QueryRow(ctx, sqlinline.QGetContributorByID, id))
}

// GetByEmail fetches a contributor by case-insensitive email.
func (r *ContributorRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.Contributor, error) {
	return scanContributor(r.db.QueryRow(ctx, sqlinline.QGetContributorByEmail, email))
}

// UpdateLedger persists the public id and running totals.
func (r *ContributorRepositoryPG) UpdateLedger(ctx context.Context, c *domain.Contributor) error {
	row := r.db.QueryRow(ctx, sqlinline.QUpdateContributorLedger,
		c.ID,
		c.PublicID,
		c.DonationCount,
		c.TotalDonated.String(),
	)
	return mapErr(row.Scan(&c.UpdatedAt))
}

func scanContributor(row pgx.Row) (*domain.Contributor, error) {
	var (
		c    domain.Contributor
		role string
	)
	if err := row.Scan(&c.ID, &c.PublicID, &c.Name, &c.Email, &role, &c.Locale, &c.DonationCount, &c.TotalDonated, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	c.Role = domain.Role(role)
	return &c, nil
}
